package process

import (
	"cmp"
	"slices"
	"sync"
)

// DefaultRegistry tracks every child spawned through a Spawner that was not
// given its own registry.
var DefaultRegistry = NewRegistry()

// Registry maps pids to live handles. Handles whose pid is unknown are kept
// in a separate list.
type Registry struct {
	mu           sync.RWMutex
	byPID        map[int64]*Handle
	unidentified []*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byPID: make(map[int64]*Handle)}
}

// Register adds h. A handle with the same pid replaces the previous one.
func (r *Registry) Register(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.PID == InvalidPID {
		r.unidentified = append(r.unidentified, h)
		return
	}
	r.byPID[h.PID] = h
}

// Lookup returns the handle registered under pid.
func (r *Registry) Lookup(pid int64) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byPID[pid]
	return h, ok
}

// RemoveByPid drops the entry for pid and reports whether one existed.
func (r *Registry) RemoveByPid(pid int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPID[pid]; !ok {
		return false
	}
	delete(r.byPID, pid)
	return true
}

// remove drops h only if it is still the entry for its pid.
func (r *Registry) remove(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.PID == InvalidPID {
		r.unidentified = slices.DeleteFunc(r.unidentified, func(u *Handle) bool { return u == h })
		return
	}
	if r.byPID[h.PID] == h {
		delete(r.byPID, h.PID)
	}
}

// Len returns the number of handles with a known pid.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPID)
}

// Snapshot returns the handles with a known pid sorted by pid.
func (r *Registry) Snapshot() []*Handle {
	r.mu.RLock()
	out := make([]*Handle, 0, len(r.byPID))
	for _, h := range r.byPID {
		out = append(out, h)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Handle) int { return cmp.Compare(a.PID, b.PID) })
	return out
}

// Unidentified returns the handles whose pid could not be determined.
func (r *Registry) Unidentified() []*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.unidentified)
}
