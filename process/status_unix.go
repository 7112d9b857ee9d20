//go:build unix

package process

import (
	"os"
	"syscall"
)

// exitCode returns the exit code, or the negated signal number for a child
// killed by a signal.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}

func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
