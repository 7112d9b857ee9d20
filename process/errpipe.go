package process

import (
	stderrors "errors"
	"fmt"
	"syscall"
)

const preExecMessage = "Exception occurred in preexec_fn."

// preflightError marks a failure that happened before exec was attempted.
type preflightError struct {
	err error
}

func (e *preflightError) Error() string { return "child setup failed: " + e.err.Error() }
func (e *preflightError) Unwrap() error { return e.err }

// preExecError wraps the error returned by a pre-exec hook.
type preExecError struct {
	err error
}

func (e *preExecError) Error() string { return preExecMessage }
func (e *preExecError) Unwrap() error { return e.err }

// errpipeReport encodes a launch failure for the error pipe:
//
//	OSError:<hex errno>:<noexec or empty>
//	SubprocessError:0:<message>
func errpipeReport(err error) []byte {
	if pe := (*preExecError)(nil); stderrors.As(err, &pe) {
		return []byte("SubprocessError:0:" + preExecMessage)
	}
	var errno syscall.Errno
	if !stderrors.As(err, &errno) {
		return []byte("SubprocessError:0:" + err.Error())
	}
	marker := ""
	if pf := (*preflightError)(nil); stderrors.As(err, &pf) {
		marker = "noexec"
	}
	return fmt.Appendf(nil, "OSError:%x:%s", uint64(errno), marker)
}
