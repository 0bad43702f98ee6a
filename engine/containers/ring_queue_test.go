package containers

import (
	"errors"
	"sync"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](4)
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	for want := 1; want <= 3; want++ {
		got, err := rq.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if got != want {
			t.Errorf("Dequeue = %d, want %d", got, want)
		}
	}
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Dequeue on empty = %v, want ErrQueueEmpty", err)
	}
}

func TestRingQueueFullAndWrap(t *testing.T) {
	rq := NewRingQueue[string](2)
	rq.Enqueue("a")
	rq.Enqueue("b")
	if err := rq.Enqueue("c"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue on full = %v, want ErrQueueFull", err)
	}
	rq.Dequeue()
	if err := rq.Enqueue("c"); err != nil {
		t.Fatalf("Enqueue after wrap: %v", err)
	}
	got := rq.Drain()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("Drain = %v, want [b c]", got)
	}
}

func TestRingQueueDrainEmpty(t *testing.T) {
	rq := NewRingQueue[int](2)
	if got := rq.Drain(); got != nil {
		t.Errorf("Drain on empty = %v, want nil", got)
	}
}

func TestRingQueueConcurrentProducers(t *testing.T) {
	rq := NewRingQueue[int](128)
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 16; i++ {
				if err := rq.Enqueue(i); err != nil {
					t.Errorf("Enqueue: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	if got := len(rq.Drain()); got != 128 {
		t.Errorf("drained %d elements, want 128", got)
	}
}
