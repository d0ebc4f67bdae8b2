// Package supervisor spawns and monitors the worker processes.
//
// A Spec is a read-only process declaration: entry point, interpreter,
// arguments, resolved environment, and restart policy. Specs are built once
// at configuration-load time and never mutated afterward.
//
// A Worker wraps a single subprocess: it streams stdout/stderr into the
// logging system line by line, shuts down gracefully with SIGINT, and
// force-kills after a timeout.
//
// The Supervisor owns one Worker per Spec and applies the restart policy:
// whenever a worker exits for any reason other than a requested stop, it is
// respawned after the Spec's fixed delay. There is no backoff and no retry
// cap.
package supervisor
