package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/events"
)

// Configurer customizes a Worker before it starts, e.g. to attach an
// output log parser.
type Configurer func(name string, w *Worker)

// Options configures a new Supervisor.
type Options struct {
	// Specs are the processes to manage, keyed by name (required).
	Specs map[string]Spec

	// EventBus receives WorkerStateChangedEvent on transitions (optional).
	EventBus *events.Bus

	// ConfigureWorker allows customization of a Worker before start (optional).
	ConfigureWorker Configurer

	// Logger for supervisor operations. If nil, uses slog.Default().
	Logger *slog.Logger
}

// managedWorker tracks one supervised process.
type managedWorker struct {
	spec          Spec
	worker        *Worker
	state         State
	startedAt     time.Time
	restartCount  int
	lastError     error
	stopRequested bool
	cancel        context.CancelFunc
	done          chan struct{}
}

// Supervisor spawns the declared workers and applies the restart policy.
type Supervisor struct {
	opts    Options
	workers map[string]*managedWorker
	mu      sync.RWMutex
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a Supervisor for the given options.
func New(opts Options) *Supervisor {
	if len(opts.Specs) == 0 {
		panic("supervisor.Options with Specs is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Supervisor{
		opts:    opts,
		workers: make(map[string]*managedWorker),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// StartAll starts every declared worker.
func (s *Supervisor) StartAll() error {
	names := make([]string, 0, len(s.opts.Specs))
	for name := range s.opts.Specs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.Start(name); err != nil {
			return err
		}
	}
	return nil
}

// Start starts one worker by name. Returns an error if it is already
// running or the name is unknown.
func (s *Supervisor) Start(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, ok := s.opts.Specs[name]
	if !ok {
		return fmt.Errorf("unknown worker %q", name)
	}

	if mw, exists := s.workers[name]; exists {
		if mw.state == StateRunning || mw.state == StateStarting {
			return fmt.Errorf("worker %s already running", name)
		}
	}

	ctx, cancel := context.WithCancel(s.ctx)
	mw := &managedWorker{
		spec:   spec,
		state:  StateStarting,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.workers[name] = mw

	s.notifyStateChange(name, StateIdle, StateStarting, nil)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(mw.done)
		s.superviseLoop(ctx, mw)
	}()

	return nil
}

// superviseLoop runs the worker and applies the restart policy: respawn
// after the fixed delay on any exit that was not requested.
func (s *Supervisor) superviseLoop(ctx context.Context, mw *managedWorker) {
	for {
		worker := NewWorker(mw.spec, s.logger)
		if s.opts.ConfigureWorker != nil {
			s.opts.ConfigureWorker(mw.spec.Name, worker)
		}

		s.mu.Lock()
		oldState := mw.state
		mw.worker = worker
		mw.state = StateRunning
		mw.startedAt = time.Now()
		s.mu.Unlock()
		s.notifyStateChange(mw.spec.Name, oldState, StateRunning, nil)

		exitCode := worker.Run(ctx)

		s.mu.Lock()
		requested := mw.stopRequested || ctx.Err() != nil
		oldState = mw.state
		if requested {
			mw.state = StateIdle
			mw.lastError = nil
		} else {
			mw.state = StateError
			mw.lastError = fmt.Errorf("worker exited with code %d", exitCode)
		}
		newState := mw.state
		lastErr := mw.lastError
		s.mu.Unlock()

		s.notifyStateChange(mw.spec.Name, oldState, newState, lastErr)

		if requested {
			s.logger.Info("Worker stopped", "name", mw.spec.Name, "exit_code", exitCode)
			return
		}

		s.logger.Warn("Worker exited unexpectedly",
			"name", mw.spec.Name, "exit_code", exitCode)

		if !mw.spec.Autorestart {
			return
		}

		// Fixed delay, no backoff, no retry cap. Restart happens for any
		// exit code, clean exits included.
		s.mu.Lock()
		mw.restartCount++
		attempt := mw.restartCount
		s.mu.Unlock()

		s.logger.Info("Restarting worker",
			"name", mw.spec.Name,
			"attempt", attempt,
			"delay", mw.spec.RestartDelay)

		select {
		case <-ctx.Done():
			s.setIdle(mw)
			return
		case <-time.After(mw.spec.RestartDelay):
		}

		s.mu.Lock()
		stop := mw.stopRequested
		s.mu.Unlock()
		if stop {
			s.setIdle(mw)
			return
		}
	}
}

// setIdle marks a worker idle after its loop ends during shutdown.
func (s *Supervisor) setIdle(mw *managedWorker) {
	s.mu.Lock()
	old := mw.state
	mw.state = StateIdle
	s.mu.Unlock()
	if old != StateIdle {
		s.notifyStateChange(mw.spec.Name, old, StateIdle, nil)
	}
}

// Stop gracefully stops one worker and suppresses its restart.
func (s *Supervisor) Stop(name string) error {
	s.mu.Lock()
	mw, exists := s.workers[name]
	if !exists {
		s.mu.Unlock()
		return nil
	}
	if mw.state != StateRunning && mw.state != StateStarting && mw.state != StateError {
		s.mu.Unlock()
		return nil
	}
	oldState := mw.state
	mw.stopRequested = true
	mw.state = StateStopping
	s.mu.Unlock()

	s.notifyStateChange(name, oldState, StateStopping, nil)
	s.logger.Info("Stopping worker", "name", name)

	mw.cancel()

	select {
	case <-mw.done:
	case <-time.After(15 * time.Second):
		s.logger.Warn("Timeout waiting for worker to stop", "name", name)
	}

	return nil
}

// Restart stops a worker and starts it again without the restart delay.
func (s *Supervisor) Restart(name string) error {
	s.mu.RLock()
	_, known := s.opts.Specs[name]
	s.mu.RUnlock()
	if !known {
		return fmt.Errorf("unknown worker %q", name)
	}

	if err := s.Stop(name); err != nil {
		return err
	}
	return s.Start(name)
}

// StopAll gracefully stops all workers.
func (s *Supervisor) StopAll() {
	s.logger.Info("Stopping all workers")
	s.mu.Lock()
	for _, mw := range s.workers {
		mw.stopRequested = true
	}
	names := make([]string, 0, len(s.workers))
	for name := range s.workers {
		names = append(names, name)
	}
	s.mu.Unlock()

	s.cancel()

	for _, name := range names {
		_ = s.Stop(name)
	}

	s.wg.Wait()
	s.logger.Info("All workers stopped")
}

// Status returns info for one worker. Unknown or never-started workers
// report the idle state.
func (s *Supervisor) Status(name string) Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mw, exists := s.workers[name]
	if !exists {
		return Info{Name: name, State: StateIdle}
	}
	return s.infoLocked(name, mw)
}

// List returns info for every declared worker, sorted by name.
func (s *Supervisor) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.opts.Specs))
	for name := range s.opts.Specs {
		if mw, exists := s.workers[name]; exists {
			infos = append(infos, s.infoLocked(name, mw))
		} else {
			infos = append(infos, Info{Name: name, State: StateIdle})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// infoLocked builds an Info snapshot. Caller holds at least a read lock.
func (s *Supervisor) infoLocked(name string, mw *managedWorker) Info {
	info := Info{
		Name:         name,
		State:        mw.state,
		StartedAt:    mw.startedAt,
		RestartCount: mw.restartCount,
	}
	if mw.worker != nil {
		info.PID = mw.worker.PID()
	}
	if mw.lastError != nil {
		info.LastError = mw.lastError.Error()
	}
	return info
}

// notifyStateChange publishes a state transition on the event bus.
func (s *Supervisor) notifyStateChange(name string, oldState, newState State, err error) {
	if s.opts.EventBus == nil {
		return
	}
	ev := events.WorkerStateChangedEvent{
		Worker:    name,
		OldState:  string(oldState),
		NewState:  string(newState),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	s.opts.EventBus.Publish(ev)
}
