package jobs

import (
	"fmt"
	"sync"

	"github.com/vesper3d/vesper/engine/core"
)

// Task is a unit of background work. OnComplete and OnFailure are optional
// and run on the worker goroutine that executed the task.
type Task struct {
	Name       string
	Run        func() error
	OnComplete func()
	OnFailure  func(err error)
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeQueueSize = fmt.Errorf("attempting to create worker pool with a negative queue size")

// Pool is a bounded worker pool. Tasks that fail log their error; failures
// never crash the submitting caller.
type Pool struct {
	numWorkers int
	queue      chan Task
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, queueSize int) (*Pool, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, ErrNegativeQueueSize
	}

	p := &Pool{
		numWorkers: numWorkers,
		queue:      make(chan Task, queueSize),
	}
	p.start()
	return p, nil
}

func (p *Pool) start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.queue {
				if err := task.Run(); err != nil {
					core.LogError("job %s failed: %s", task.Name, err.Error())
					if task.OnFailure != nil {
						task.OnFailure(err)
					}
					continue
				}
				if task.OnComplete != nil {
					task.OnComplete()
				}
			}
		}()
	}
}

// Submit queues the task, blocking when the queue is full.
func (p *Pool) Submit(task Task) {
	p.queue <- task
}

// SubmitNonBlocking queues the task from a fresh goroutine and returns
// immediately, even when the queue is full.
func (p *Pool) SubmitNonBlocking(task Task) {
	go p.Submit(task)
}

// Shutdown stops accepting work and waits for in-flight tasks to finish.
func (p *Pool) Shutdown() error {
	close(p.queue)
	p.wg.Wait()
	return nil
}
