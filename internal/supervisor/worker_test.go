package supervisor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// shSpec builds a spec that runs a shell snippet.
func shSpec(name, script string) Spec {
	return Spec{
		Name:        name,
		Interpreter: "sh",
		Entry:       "-c",
		Args:        []string{script},
	}
}

// newTestWorker creates a Worker with short timeouts for testing.
func newTestWorker(spec Spec) *Worker {
	w := NewWorker(spec, testLogger())
	w.gracefulTimeout = 100 * time.Millisecond
	w.killTimeout = 100 * time.Millisecond
	return w
}

// runAsync runs the worker in a goroutine and returns an exit code channel.
func runAsync(ctx context.Context, w *Worker) <-chan int {
	done := make(chan int, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	return done
}

// waitForExit waits for an exit code with timeout, fails the test on timeout.
func waitForExit(t *testing.T, done <-chan int, timeout time.Duration) int {
	t.Helper()
	select {
	case exitCode := <-done:
		return exitCode
	case <-time.After(timeout):
		t.Fatal("timeout waiting for worker to exit")
		return -1
	}
}

func TestSpecCommand(t *testing.T) {
	spec := Spec{
		Interpreter: "/usr/local/bin/charbot",
		Entry:       "collector",
		Args:        []string{"--download-dir", "/srv/download", "--headless"},
	}
	got := spec.Command()
	want := []string{"/usr/local/bin/charbot", "collector", "--download-dir", "/srv/download", "--headless"}
	if len(got) != len(want) {
		t.Fatalf("Command() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Command()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSpecCommandNoEntry(t *testing.T) {
	spec := Spec{Interpreter: "sleep", Args: []string{"1"}}
	got := spec.Command()
	if len(got) != 2 || got[0] != "sleep" || got[1] != "1" {
		t.Errorf("Command() = %v, want [sleep 1]", got)
	}
}

func TestWorkerCleanExit(t *testing.T) {
	w := newTestWorker(shSpec("clean", "exit 0"))
	done := runAsync(context.Background(), w)

	if exitCode := waitForExit(t, done, time.Second); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
}

func TestWorkerExitCode(t *testing.T) {
	w := newTestWorker(shSpec("fail", "exit 3"))
	done := runAsync(context.Background(), w)

	if exitCode := waitForExit(t, done, time.Second); exitCode != 3 {
		t.Errorf("expected exit code 3, got %d", exitCode)
	}
}

func TestWorkerGracefulShutdown(t *testing.T) {
	// Worker that handles SIGINT
	w := newTestWorker(shSpec("graceful", "trap 'exit 0' INT TERM; while :; do sleep 0.1; done"))
	w.gracefulTimeout = 500 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, w)
	time.Sleep(100 * time.Millisecond)
	cancel()

	if exitCode := waitForExit(t, done, time.Second); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
}

func TestWorkerForceKillOnTimeout(t *testing.T) {
	// Worker that ignores SIGINT
	w := newTestWorker(shSpec("stubborn", "trap '' INT; sleep 10"))
	w.gracefulTimeout = 50 * time.Millisecond
	w.killTimeout = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, w)
	time.Sleep(50 * time.Millisecond)
	cancel()

	// Process was killed, expect 137 (128 + 9 for SIGKILL)
	if exitCode := waitForExit(t, done, time.Second); exitCode != 137 {
		t.Errorf("expected exit code 137, got %d", exitCode)
	}
}

func TestWorkerEmptyCommand(t *testing.T) {
	w := newTestWorker(Spec{Name: "empty"})
	done := runAsync(context.Background(), w)

	if exitCode := waitForExit(t, done, time.Second); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
}

func TestWorkerPID(t *testing.T) {
	w := newTestWorker(shSpec("pid", "sleep 1"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, w)
	time.Sleep(100 * time.Millisecond)

	if w.PID() == 0 {
		t.Error("PID() = 0 for a running worker")
	}
	cancel()
	waitForExit(t, done, time.Second)
}
