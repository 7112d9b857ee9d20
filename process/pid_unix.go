//go:build unix

package process

import "os"

// nativePID returns the kernel pid of p. syscall.ForkExec always reports a
// positive pid, so anything else means the handle is not usable.
func nativePID(p *os.Process) int64 {
	if p == nil || p.Pid <= 0 {
		return InvalidPID
	}
	return int64(p.Pid)
}
