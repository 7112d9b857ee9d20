package process

import (
	"sync"
	"testing"
)

func fakeHandle(pid int64) *Handle {
	return &Handle{PID: pid, done: make(chan struct{})}
}

func TestRegistry_RegisterLookupRemove(t *testing.T) {
	r := NewRegistry()
	h := fakeHandle(100)
	r.Register(h)

	got, ok := r.Lookup(100)
	if !ok || got != h {
		t.Fatalf("expected handle for pid 100, got %v %v", got, ok)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}
	if !r.RemoveByPid(100) {
		t.Error("expected removal to report an entry")
	}
	if r.RemoveByPid(100) {
		t.Error("second removal should report nothing")
	}
	if _, ok := r.Lookup(100); ok {
		t.Error("expected lookup to fail after removal")
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	if _, ok := NewRegistry().Lookup(424242); ok {
		t.Error("expected no handle for unknown pid")
	}
}

func TestRegistry_ReplaceSamePID(t *testing.T) {
	r := NewRegistry()
	first, second := fakeHandle(7), fakeHandle(7)
	r.Register(first)
	r.Register(second)

	got, _ := r.Lookup(7)
	if got != second {
		t.Error("expected the later handle to replace the earlier one")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}

	r.remove(first)
	if _, ok := r.Lookup(7); !ok {
		t.Error("removing a stale handle must keep the current entry")
	}
	r.remove(second)
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistry_Unidentified(t *testing.T) {
	r := NewRegistry()
	h := fakeHandle(InvalidPID)
	r.Register(h)

	if r.Len() != 0 {
		t.Errorf("unknown pid must not enter the pid map, got %d", r.Len())
	}
	if got := r.Unidentified(); len(got) != 1 || got[0] != h {
		t.Fatalf("expected the handle in the unidentified list, got %v", got)
	}
	r.remove(h)
	if len(r.Unidentified()) != 0 {
		t.Error("expected unidentified list to be empty after remove")
	}
}

func TestRegistry_SnapshotSorted(t *testing.T) {
	r := NewRegistry()
	for _, pid := range []int64{30, 10, 20} {
		r.Register(fakeHandle(pid))
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 handles, got %d", len(snap))
	}
	for i, want := range []int64{10, 20, 30} {
		if snap[i].PID != want {
			t.Errorf("snapshot[%d] = %d, want %d", i, snap[i].PID, want)
		}
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(pid int64) {
			defer wg.Done()
			r.Register(fakeHandle(pid))
			if _, ok := r.Lookup(pid); !ok {
				t.Errorf("pid %d not visible after register", pid)
			}
			_ = r.Snapshot()
			r.RemoveByPid(pid)
		}(int64(i + 1))
	}
	wg.Wait()
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}
