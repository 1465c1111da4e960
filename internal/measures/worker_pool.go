package measures

import (
	"runtime"
	"sync"
)

// WorkerPool runs module computations on a fixed set of goroutines.
type WorkerPool struct {
	workers   int
	jobQueue  chan func()
	wg        sync.WaitGroup
	once      sync.Once
	closeOnce sync.Once
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		job()
	}
}

// Submit adds a job to the queue. Wait returns once every submitted job has
// finished.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.jobQueue <- func() {
		defer wp.wg.Done()
		job()
	}
}

// Wait waits for all submitted jobs to complete
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Close drains outstanding jobs and stops the workers. It is safe to call
// more than once.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		wp.wg.Wait()
		close(wp.jobQueue)
	})
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int { return wp.workers }
