package jobs

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewPoolRejectsBadArguments(t *testing.T) {
	if _, err := NewPool(0, 10); err != ErrNoWorkers {
		t.Errorf("zero workers: got %v, want ErrNoWorkers", err)
	}
	if _, err := NewPool(2, -1); err != ErrNegativeQueueSize {
		t.Errorf("negative queue: got %v, want ErrNegativeQueueSize", err)
	}
}

func TestPoolRunsAllTasks(t *testing.T) {
	p, err := NewPool(4, 16)
	if err != nil {
		t.Fatal(err)
	}

	var ran int64
	for i := 0; i < 50; i++ {
		p.Submit(Task{
			Name: fmt.Sprintf("task-%d", i),
			Run: func() error {
				atomic.AddInt64(&ran, 1)
				return nil
			},
		})
	}
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if ran != 50 {
		t.Errorf("ran %d tasks, want 50", ran)
	}
}

func TestPoolFailureInvokesOnFailureNotOnComplete(t *testing.T) {
	p, err := NewPool(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var failed error
	completed := false

	p.Submit(Task{
		Name: "broken",
		Run:  func() error { return fmt.Errorf("boom") },
		OnFailure: func(err error) {
			mu.Lock()
			failed = err
			mu.Unlock()
		},
		OnComplete: func() {
			mu.Lock()
			completed = true
			mu.Unlock()
		},
	})
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}

	if failed == nil {
		t.Error("OnFailure was not invoked")
	}
	if completed {
		t.Error("OnComplete must not run for a failed task")
	}
}
