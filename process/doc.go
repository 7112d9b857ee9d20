// Package process creates child processes with POSIX fork/exec semantics.
//
// A spawn request carries argv, an optional executable search list, a
// working directory, an environment override and a descriptor policy.
// Descriptors can be inherited, closed or redirected per stream, and every
// spawned child is tracked by pid in a Registry until it is reaped.
//
//	sp := process.NewSpawner(process.DefaultConfig())
//	req := process.NewRequest("/bin/sh", "-c", "exit 3")
//	h, err := sp.Spawn(ctx, req)
//	status, err := sp.Wait(ctx, h.PID)
//
// ForkExec accepts the loosely typed argument set used by interpreter
// bindings and reports failures the way they expect: contract violations
// and unknown input shapes as errors, launch failures as InvalidPID.
package process
