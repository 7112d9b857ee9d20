//go:build !unix

package process

import "os"

// nativePID returns the identifier os.StartProcess recorded for p. Platforms
// that track children by handle may leave it unset.
func nativePID(p *os.Process) int64 {
	if p == nil || p.Pid <= 0 {
		return InvalidPID
	}
	return int64(p.Pid)
}
