package process

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/subprocess/validation"
)

// Pair is a (read, write) descriptor pair for one standard stream.
// (-1, -1) means inherit the parent's stream.
type Pair struct {
	Read  int
	Write int
}

// InheritPair leaves a standard stream untouched.
var InheritPair = Pair{Read: -1, Write: -1}

// Inherit reports whether the pair asks for the parent's stream.
func (p Pair) Inherit() bool {
	return p.Read == -1 && p.Write == -1
}

// valid reports whether the pair is fully unset or fully set.
func (p Pair) valid() bool {
	if p.Inherit() {
		return true
	}
	return p.Read >= 0 && p.Write >= 0
}

// Request is a fully marshaled spawn request.
type Request struct {
	Args           []string `validate:"min=1"`
	ExecutableList []string
	CloseFDs       bool
	// FDsToKeep must be sorted ascending; duplicates are allowed.
	FDsToKeep []int
	Cwd       string
	// Env nil means inherit the parent environment unchanged.
	Env map[string]string

	Stdin  Pair
	Stdout Pair
	Stderr Pair

	ErrpipeRead  int
	ErrpipeWrite int

	RestoreSignals bool
	CallSetsid     bool
	PreExec        func() error
}

// NewRequest returns a request for argv with every stream inherited and no
// error pipe.
func NewRequest(argv ...string) *Request {
	return &Request{
		Args:         argv,
		Stdin:        InheritPair,
		Stdout:       InheritPair,
		Stderr:       InheritPair,
		ErrpipeRead:  -1,
		ErrpipeWrite: -1,
	}
}

// Validate checks the request contract. It touches no OS state.
func (r *Request) Validate(maxFD int64) error {
	if r == nil {
		return validation.New().Custom(false, "request", "request is required").Validate()
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	if err := CheckFDsToKeep(r.FDsToKeep, maxFD); err != nil {
		return err
	}

	v := validation.New()
	for i, pair := range []Pair{r.Stdin, r.Stdout, r.Stderr} {
		name := streamNames[i]
		v.Custom(pair.valid(), name, fmt.Sprintf("%s pair (%d, %d) must be both -1 or both >= 0", name, pair.Read, pair.Write))
	}
	v.Custom(!anyNUL(r.Args), "args", nulMessage)
	v.Custom(!anyNUL(r.ExecutableList), "executable_list", nulMessage)
	v.Custom(!strings.ContainsRune(r.Cwd, 0), "cwd", nulMessage)
	for key, value := range r.Env {
		if strings.ContainsRune(key, 0) || strings.ContainsRune(value, 0) {
			v.Custom(false, "env", nulMessage)
			break
		}
	}
	for _, d := range r.descriptors() {
		v.Range(d.name, int64(d.fd), -1, maxFD)
	}
	v.Custom(!r.CloseFDs || r.ErrpipeWrite >= 3, "errpipe_write", "errpipe_write must be >= 3")
	return v.Validate()
}

const nulMessage = "embedded null byte"

func anyNUL(values []string) bool {
	return slices.ContainsFunc(values, func(s string) bool { return strings.ContainsRune(s, 0) })
}

type namedFD struct {
	name string
	fd   int
}

// descriptors lists the stream and error pipe descriptors by argument name.
func (r *Request) descriptors() []namedFD {
	return []namedFD{
		{"p2cread", r.Stdin.Read}, {"p2cwrite", r.Stdin.Write},
		{"c2pread", r.Stdout.Read}, {"c2pwrite", r.Stdout.Write},
		{"erread", r.Stderr.Read}, {"errwrite", r.Stderr.Write},
		{"errpipe_read", r.ErrpipeRead}, {"errpipe_write", r.ErrpipeWrite},
	}
}

// parentEnds returns the descriptors that belong to the parent side of the
// stream pipes. They are closed in the child.
func (r *Request) parentEnds() []int {
	ends := []int{r.Stdin.Write, r.Stdout.Read, r.Stderr.Read, r.ErrpipeRead}
	return slices.DeleteFunc(ends, func(fd int) bool { return fd < 0 })
}

// ForkExecArgs is the loosely typed argument set of fork_exec as it arrives
// from an interpreter binding.
type ForkExecArgs struct {
	Args           []any
	ExecutableList []any
	CloseFDs       bool
	FDsToKeep      []any
	// Cwd is nil or a string.
	Cwd any
	// Env is nil or one of map[string]string, []string, [][]byte or []any
	// holding strings and byte slices.
	Env any

	P2CRead, P2CWrite int
	C2PRead, C2PWrite int
	ErrRead, ErrWrite int

	ErrpipeRead, ErrpipeWrite int

	RestoreSignals bool
	CallSetsid     bool
	PreExec        func() error
}
