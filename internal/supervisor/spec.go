package supervisor

import "time"

// Spec declares a managed worker process. Specs are constructed once when
// configuration is loaded and are read-only afterward.
type Spec struct {
	// Name uniquely identifies the worker.
	Name string

	// Interpreter is the path of the executable to launch.
	Interpreter string

	// Entry is the first argument passed to the interpreter (the worker
	// subcommand). May be empty for bare commands.
	Entry string

	// Args are additional command-line arguments, in order.
	Args []string

	// Cwd is the working directory for the process.
	Cwd string

	// Env holds resolved KEY=VALUE pairs appended to the parent environment.
	Env []string

	// Autorestart respawns the process after any exit, regardless of exit
	// code or reason.
	Autorestart bool

	// RestartDelay is the fixed wait before a respawn.
	RestartDelay time.Duration
}

// Command returns the full argv for the process.
func (s Spec) Command() []string {
	argv := make([]string, 0, 2+len(s.Args))
	argv = append(argv, s.Interpreter)
	if s.Entry != "" {
		argv = append(argv, s.Entry)
	}
	return append(argv, s.Args...)
}

// State represents the current state of a managed worker.
type State string

// Worker states.
const (
	StateIdle     State = "idle"     // Not running
	StateStarting State = "starting" // Being started
	StateRunning  State = "running"  // Active
	StateStopping State = "stopping" // Being stopped
	StateError    State = "error"    // Crashed, pending restart
)

// Info contains information about a managed worker.
type Info struct {
	Name         string    `json:"name"`
	State        State     `json:"state"`
	PID          int       `json:"pid,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	RestartCount int       `json:"restart_count"`
	LastError    string    `json:"last_error,omitempty"`
}
