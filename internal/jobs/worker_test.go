package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorker_RunsOnTicker(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	task := func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}

	worker := NewWorker("test-ticker", 5*time.Millisecond, task, WithRunAtStart())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}

	if got := runs.Load(); got < 2 {
		t.Fatalf("expected at least 2 runs, got %d", got)
	}
}

func TestWorker_KeepsRunningAfterTaskError(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	task := func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}

	worker := NewWorker("test-errors", 5*time.Millisecond, task)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	worker.Run(ctx)

	if got := runs.Load(); got < 2 {
		t.Fatalf("expected worker to keep running after errors, got %d runs", got)
	}
}

func TestWorker_DisabledWithoutTask(t *testing.T) {
	t.Parallel()

	worker := NewWorker("test-disabled", time.Second, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker with nil task should return immediately")
	}
}
