//go:build unix

package process

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// closedFD marks a child descriptor slot that is closed before exec.
const closedFD = ^uintptr(0)

func probeExecutable(path string) error {
	return unix.Access(path, unix.X_OK)
}

// startProcess forks and execs path. The child descriptor table is built
// from the request; syscall.ForkExec applies it in the child, where entry i
// becomes descriptor i.
func startProcess(req *Request, plan RedirectionPlan, path string, env []string) (*os.Process, error) {
	files, err := childFiles(req, plan)
	if err != nil {
		return nil, err
	}

	attr := &syscall.ProcAttr{
		Dir:   req.Cwd,
		Env:   env,
		Files: files,
		Sys:   &syscall.SysProcAttr{Setsid: req.CallSetsid},
	}
	pid, err := syscall.ForkExec(path, req.Args, attr)
	if err != nil {
		return nil, &os.PathError{Op: "fork/exec", Path: path, Err: err}
	}
	return os.FindProcess(pid)
}

// childFiles lays out the child descriptor table:
//
//   - descriptors in FDsToKeep stay open at the same number
//   - the parent ends of the stream pipes and the error pipe are closed;
//     ends that are already closed are skipped
//   - with CloseFDs every other open descriptor >= 3 is closed; without it,
//     descriptors pass through when they are open and inheritable
//   - the standard streams are set last and win over everything above
func childFiles(req *Request, plan RedirectionPlan) ([]uintptr, error) {
	size := 3
	for _, fd := range req.FDsToKeep {
		if open, _ := fdState(fd); !open {
			return nil, os.NewSyscallError("fcntl", syscall.EBADF)
		}
		size = max(size, fd+1)
	}
	var parentEnds []int
	for _, fd := range req.parentEnds() {
		if open, _ := fdState(fd); !open {
			continue
		}
		parentEnds = append(parentEnds, fd)
		size = max(size, fd+1)
	}
	if req.CloseFDs {
		open, err := openDescriptors()
		if err != nil {
			return nil, err
		}
		if len(open) > 0 {
			size = max(size, open[len(open)-1]+1)
		}
	}

	files := make([]uintptr, size)
	for fd := range files {
		files[fd] = closedFD
		if fd < 3 || req.CloseFDs {
			continue
		}
		if _, inheritable := fdState(fd); inheritable {
			files[fd] = uintptr(fd)
		}
	}
	for _, fd := range req.FDsToKeep {
		files[fd] = uintptr(fd)
	}
	for _, fd := range parentEnds {
		files[fd] = closedFD
	}
	for s := Stdin; s <= Stderr; s++ {
		if fd := plan[s].ChildFD(s); fd >= 0 {
			files[s] = uintptr(fd)
			continue
		}
		files[s] = closedFD
		if _, inheritable := fdState(int(s)); inheritable {
			files[s] = uintptr(s)
		}
	}
	return files, nil
}

// reportErrpipe writes a failure report to the caller's error pipe.
func reportErrpipe(fd int, msg []byte) error {
	for len(msg) > 0 {
		n, err := unix.Write(fd, msg)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		msg = msg[n:]
	}
	return nil
}
