//go:build !unix

package process

import (
	"errors"
	"os"
)

var errRedirectUnsupported = errors.New("descriptor redirection is not supported on this platform")

func probeExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.ErrPermission
	}
	return nil
}

// startProcess starts path with the parent's standard streams. Descriptor
// keep and close policies and setsid have no meaning here and are ignored.
func startProcess(req *Request, plan RedirectionPlan, path string, env []string) (*os.Process, error) {
	if plan.Redirected() {
		return nil, errRedirectUnsupported
	}
	return os.StartProcess(path, req.Args, &os.ProcAttr{
		Dir:   req.Cwd,
		Env:   env,
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
}

func reportErrpipe(int, []byte) error {
	return nil
}
