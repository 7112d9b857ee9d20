package process

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExitStatus describes how a child ended.
type ExitStatus struct {
	PID int64
	// Code is the exit code, or the negated signal number when the child
	// was killed by a signal.
	Code  int
	State *os.ProcessState
}

// Success reports whether the child exited with code 0.
func (s *ExitStatus) Success() bool {
	return s != nil && s.Code == 0
}

// Handle is the parent's reference to a spawned child.
type Handle struct {
	ID        uuid.UUID
	PID       int64
	Argv      []string
	StartedAt time.Time

	proc   *os.Process
	onExit func(*ExitStatus)

	once    sync.Once
	done    chan struct{}
	status  *ExitStatus
	waitErr error
}

func newHandle(proc *os.Process, argv []string, onExit func(*ExitStatus)) *Handle {
	return &Handle{
		ID:        uuid.New(),
		PID:       nativePID(proc),
		Argv:      argv,
		StartedAt: time.Now(),
		proc:      proc,
		onExit:    onExit,
		done:      make(chan struct{}),
	}
}

// Process returns the underlying OS process.
func (h *Handle) Process() *os.Process {
	return h.proc
}

// Wait blocks until the child exits. The first call reaps the child; later
// calls return the same result.
func (h *Handle) Wait() (*ExitStatus, error) {
	h.once.Do(func() {
		defer close(h.done)
		state, err := h.proc.Wait()
		if err != nil {
			h.waitErr = err
			return
		}
		h.status = &ExitStatus{PID: h.PID, Code: exitCode(state), State: state}
		if h.onExit != nil {
			h.onExit(h.status)
		}
	})
	<-h.done
	return h.status, h.waitErr
}

// Done is closed once the child has been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Exited reports whether the child has been reaped.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Signal sends sig to the child.
func (h *Handle) Signal(sig os.Signal) error {
	return h.proc.Signal(sig)
}
