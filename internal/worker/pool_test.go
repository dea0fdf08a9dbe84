package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := NewPool(3, 10)
	results := p.Run(context.Background())

	var ran atomic.Int64
	for i := 0; i < 10; i++ {
		p.Submit(func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	p.Close()

	got := 0
	for r := range results {
		if r.Err != nil {
			t.Fatalf("unexpected task error: %v", r.Err)
		}
		got++
	}
	if got != 10 || ran.Load() != 10 {
		t.Fatalf("results = %d, ran = %d, want 10", got, ran.Load())
	}
}

func TestPoolReportsTaskErrors(t *testing.T) {
	p := NewPool(2, 4)
	results := p.Run(context.Background())

	boom := errors.New("boom")
	p.Submit(func(context.Context) error { return boom })
	p.Submit(func(context.Context) error { return nil })
	p.Close()

	failed := 0
	for r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
}

func TestPoolStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPool(2, 4)
	results := p.Run(ctx)
	p.Close()

	for range results {
		t.Fatalf("no results expected after cancellation")
	}
}
