//go:build !unix

package process

import "os"

func exitCode(state *os.ProcessState) int {
	return state.ExitCode()
}

// terminate has no graceful variant here.
func terminate(p *os.Process) error {
	return p.Kill()
}
