package supervisor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// LogParser parses a subprocess output line and returns the log level and
// message. Used to lift structured log info out of worker output.
type LogParser func(line string) (level, msg string)

// Worker manages the lifecycle of a single subprocess described by a Spec.
type Worker struct {
	spec            Spec
	cmd             *exec.Cmd
	logger          logging.Logger
	outputLogger    logging.Logger // logger for subprocess output (nil = use logger)
	logParser       LogParser      // parses subprocess output (nil = no parsing)
	gracefulTimeout time.Duration
	killTimeout     time.Duration

	mu  sync.Mutex
	pid int
}

// NewWorker creates a worker for the given spec.
func NewWorker(spec Spec, logger logging.Logger) *Worker {
	return &Worker{
		spec:            spec,
		logger:          logger,
		gracefulTimeout: 5 * time.Second,
		killTimeout:     5 * time.Second,
	}
}

// SetLogParser sets a custom logger and log parser for subprocess output.
func (w *Worker) SetLogParser(logger logging.Logger, parser LogParser) {
	w.outputLogger = logger
	w.logParser = parser
}

// PID returns the process id, or 0 if the process has not started.
func (w *Worker) PID() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pid
}

// runningWorker holds channels for monitoring a started subprocess.
type runningWorker struct {
	processDone <-chan error
	outputDone  chan struct{} // receives twice, once per output stream
}

// start launches the subprocess and returns channels for monitoring it.
func (w *Worker) start() (*runningWorker, error) {
	argv := w.spec.Command()
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	// New process group so the whole worker tree can be signalled at once.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if w.spec.Cwd != "" {
		cmd.Dir = w.spec.Cwd
	}
	if len(w.spec.Env) > 0 {
		cmd.Env = append(os.Environ(), w.spec.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		w.logger.Error("Failed to start worker", "name", w.spec.Name, "error", err)
		return nil, err
	}

	w.mu.Lock()
	w.cmd = cmd
	w.pid = cmd.Process.Pid
	w.mu.Unlock()

	w.logger.Info("Worker started", "name", w.spec.Name, "pid", cmd.Process.Pid)

	outputDone := make(chan struct{}, 2)
	go func() {
		w.streamOutput(stdout, "stdout")
		outputDone <- struct{}{}
	}()
	go func() {
		w.streamOutput(stderr, "stderr")
		outputDone <- struct{}{}
	}()

	processDone := make(chan error, 1)
	go func() {
		processDone <- cmd.Wait()
	}()

	return &runningWorker{processDone: processDone, outputDone: outputDone}, nil
}

// Run starts the subprocess and blocks until it exits or ctx is cancelled.
// On cancellation the process receives SIGINT, then SIGKILL after the
// graceful timeout. Returns the subprocess exit code.
func (w *Worker) Run(ctx context.Context) int {
	rw, err := w.start()
	if err != nil {
		return 1
	}
	defer func() {
		<-rw.outputDone
		<-rw.outputDone
	}()

	select {
	case <-ctx.Done():
		w.sendStopSignal()
		return w.waitForExit(rw.processDone)
	case processErr := <-rw.processDone:
		exitCode := exitCodeFromError(processErr)
		w.logger.Info("Worker exited", "name", w.spec.Name, "exit_code", exitCode)
		return exitCode
	}
}

// sendStopSignal sends SIGINT to the worker's process group without waiting.
func (w *Worker) sendStopSignal() {
	w.mu.Lock()
	pid := w.pid
	w.mu.Unlock()
	if pid == 0 {
		return
	}
	w.logger.Info("Sending SIGINT to worker", "name", w.spec.Name, "pid", pid)
	if err := syscall.Kill(-pid, syscall.SIGINT); err != nil && !errors.Is(err, syscall.ESRCH) {
		w.logger.Warn("Failed to send SIGINT", "name", w.spec.Name, "error", err)
	}
}

// waitForExit waits for the process to exit, force-killing the process
// group after the graceful timeout.
func (w *Worker) waitForExit(processDone <-chan error) int {
	select {
	case err := <-processDone:
		return exitCodeFromError(err)
	case <-time.After(w.gracefulTimeout):
		w.logger.Warn("Graceful shutdown timeout, forcing kill",
			"name", w.spec.Name, "timeout", w.gracefulTimeout)

		w.mu.Lock()
		pid := w.pid
		w.mu.Unlock()
		if pid != 0 {
			if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
				w.logger.Error("Failed to kill worker", "name", w.spec.Name, "error", err)
			}
		}

		select {
		case <-processDone:
		case <-time.After(w.killTimeout):
			w.logger.Error("Worker did not exit after kill signal", "name", w.spec.Name)
		}
		// 128 + SIGKILL by convention
		return 137
	}
}

// exitCodeFromError extracts the exit code from a Wait error.
// Returns 0 for nil, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// streamOutput forwards subprocess output lines to the configured logger,
// running each line through the log parser when one is set.
func (w *Worker) streamOutput(reader io.Reader, source string) {
	scanner := bufio.NewScanner(reader)

	logger := w.outputLogger
	if logger == nil {
		logger = w.logger
	}

	for scanner.Scan() {
		line := scanner.Text()

		level, msg := "info", line
		if w.logParser != nil {
			level, msg = w.logParser(line)
		}

		switch level {
		case "fatal", "error":
			logger.Error(msg)
		case "warning", "warn":
			logger.Warn(msg)
		case "debug", "trace":
			logger.Debug(msg)
		default:
			logger.Info(msg)
		}
	}

	if err := scanner.Err(); err != nil {
		w.logger.Warn("Error reading worker output",
			"name", w.spec.Name, "source", source, "error", err)
	}
}
