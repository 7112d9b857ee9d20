package process

import "time"

// Result holds the outcome of a child run to completion.
type Result struct {
	PID int64
	// ExitCode is the exit code, the negated signal number when the child
	// was killed by a signal, or -1 when it could not be reaped.
	ExitCode int
	// Duration is how long the child ran.
	Duration time.Duration
}
