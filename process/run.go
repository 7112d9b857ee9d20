package process

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var defaultSpawner = sync.OnceValue(func() *Spawner {
	return NewSpawner(DefaultConfig())
})

// Run spawns req with a default Spawner and waits for it to complete.
// If ctx is canceled, SIGTERM is sent first, then SIGKILL after the grace
// period.
func Run(ctx context.Context, req *Request) (*Result, error) {
	return defaultSpawner().Run(ctx, req)
}

// Run spawns req and waits for it to complete. If ctx is canceled, SIGTERM
// is sent first, then SIGKILL after the configured grace period.
func (s *Spawner) Run(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	h, err := s.Spawn(ctx, req)
	if err != nil {
		return nil, err
	}

	go h.Wait() //nolint:errcheck // result is read below through Done
	killed := false
	select {
	case <-h.Done():
	case <-ctx.Done():
		killed = true
		_ = terminate(h.proc)
		grace := time.NewTimer(s.cfg.GracePeriod)
		select {
		case <-h.Done():
		case <-grace.C:
			_ = h.proc.Kill()
			<-h.Done()
		}
		grace.Stop()
	}

	status, err := h.Wait()
	s.registry.remove(h)
	result := &Result{PID: h.PID, ExitCode: -1, Duration: time.Since(start)}
	if err != nil {
		return result, fmt.Errorf("process: wait: %w", err)
	}
	result.ExitCode = status.Code

	if killed {
		return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
	}
	if status.Code != 0 {
		return result, fmt.Errorf("process: exit code %d", status.Code)
	}
	return result, nil
}
