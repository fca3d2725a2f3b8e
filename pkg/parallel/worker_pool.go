// Package parallel runs independent read-only jobs, such as checking the
// snapshots of a finished run, on a fixed set of goroutines.
package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrPanic wraps a panic recovered from a job.
var ErrPanic = errors.New("job panicked")

// WorkerPool runs submitted jobs on a fixed number of goroutines.
type WorkerPool struct {
	workers int
	jobs    chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // Guards jobs against close during send
	closed  bool
}

// NewWorkerPool starts workers goroutines. A non-positive count uses
// GOMAXPROCS.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	wp := &WorkerPool{
		workers: workers,
		jobs:    make(chan func(), workers*2),
	}
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for job := range wp.jobs {
		job()
	}
}

// Submit queues job. It returns false once the pool is closed.
func (wp *WorkerPool) Submit(job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.jobs <- job
	return true
}

// Close stops accepting jobs and waits for queued ones to finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.jobs)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Map applies fn to every item on a pool of the given size (GOMAXPROCS
// when non-positive) and returns the results in item order. A panicking
// call yields its item's zero result and an error wrapping ErrPanic.
func Map[T, R any](workers int, items []T, fn func(T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	wp := NewWorkerPool(min(workers, max(len(items), 1)))
	for i, item := range items {
		wp.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%w: %v", ErrPanic, r)
				}
			}()
			results[i], errs[i] = fn(item)
		})
	}
	wp.Close()

	return results, errs
}
