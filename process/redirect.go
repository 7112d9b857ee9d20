package process

import "fmt"

// Stream identifies a standard stream of the child.
type Stream int

const (
	Stdin Stream = iota
	Stdout
	Stderr
)

var streamNames = [...]string{"stdin", "stdout", "stderr"}

func (s Stream) String() string {
	if s < Stdin || s > Stderr {
		return fmt.Sprintf("stream(%d)", int(s))
	}
	return streamNames[s]
}

// RedirectMode says what happens to one standard stream.
type RedirectMode int

const (
	// ModeInherit passes the parent's stream through.
	ModeInherit RedirectMode = iota
	// ModeRedirect connects the stream to a caller supplied descriptor.
	ModeRedirect
)

func (m RedirectMode) String() string {
	if m == ModeRedirect {
		return "redirect"
	}
	return "inherit"
}

// Redirection is the plan for one standard stream.
type Redirection struct {
	Mode  RedirectMode
	Read  int
	Write int
}

// PlanStream decides how one stream is set up from its descriptor pair.
// A half-set pair or a value below -1 is a programming error and panics;
// request validation rejects such pairs before a plan is built.
func PlanStream(read, write int) Redirection {
	switch {
	case read == -1 && write == -1:
		return Redirection{Mode: ModeInherit, Read: -1, Write: -1}
	case read >= 0 && write >= 0:
		return Redirection{Mode: ModeRedirect, Read: read, Write: write}
	default:
		panic(fmt.Sprintf("process: invalid descriptor pair (%d, %d)", read, write))
	}
}

// ChildFD returns the descriptor that becomes the child's stream, or -1
// when the stream is inherited. Stdin reads from the read end; stdout and
// stderr write to the write end.
func (r Redirection) ChildFD(s Stream) int {
	if r.Mode != ModeRedirect {
		return -1
	}
	if s == Stdin {
		return r.Read
	}
	return r.Write
}

// RedirectionPlan holds the plan for all three standard streams.
type RedirectionPlan [3]Redirection

// Plan builds the redirection plan of a request.
func Plan(req *Request) RedirectionPlan {
	return RedirectionPlan{
		Stdin:  PlanStream(req.Stdin.Read, req.Stdin.Write),
		Stdout: PlanStream(req.Stdout.Read, req.Stdout.Write),
		Stderr: PlanStream(req.Stderr.Read, req.Stderr.Write),
	}
}

// Redirected reports whether any stream is redirected.
func (p RedirectionPlan) Redirected() bool {
	for _, r := range p {
		if r.Mode == ModeRedirect {
			return true
		}
	}
	return false
}
