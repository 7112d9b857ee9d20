package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_Unlimited(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "launch"})
	if b.MaxConcurrent() != 0 {
		t.Errorf("expected unlimited bulkhead, got %d", b.MaxConcurrent())
	}
	if err := b.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBulkhead_FailsFastWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "launch", MaxConcurrent: 1})

	hold := make(chan struct{})
	entered := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Execute(context.Background(), func() error {
			close(entered)
			<-hold
			return nil
		})
	}()
	<-entered

	if b.InUse() != 1 {
		t.Errorf("expected 1 slot in use, got %d", b.InUse())
	}
	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}

	close(hold)
	wg.Wait()
	if b.InUse() != 0 {
		t.Errorf("expected slot released, got %d in use", b.InUse())
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 5 * time.Millisecond})
	hold := make(chan struct{})
	entered := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(entered)
			<-hold
			return nil
		})
	}()
	<-entered
	defer close(hold)

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestExecuteWithResult(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	got, err := ExecuteWithResult(b, context.Background(), func() (int, error) { return 1234, nil })
	if err != nil || got != 1234 {
		t.Errorf("expected 1234, got %d (%v)", got, err)
	}
}
