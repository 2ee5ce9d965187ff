// Package tasks runs capture pipelines off the key event path.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Submit after Close
var ErrClosed = errors.New("executor closed")

// ErrQueueFull is returned when the queue cannot accept more work
var ErrQueueFull = errors.New("executor queue full")

// Task is a unit of work; ctx is cancelled when the executor shuts down
type Task func(ctx context.Context)

// Executor is a bounded work queue drained by a fixed set of workers
type Executor struct {
	queue  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts an executor with the given number of workers and queue capacity
func New(workers, capacity int) *Executor {
	if workers <= 0 {
		workers = 1
	}
	if capacity < 0 {
		capacity = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{
		queue:  make(chan Task, capacity),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	return e
}

// Submit enqueues a task without blocking the caller
func (e *Executor) Submit(t Task) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}

	select {
	case e.queue <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting work, cancels running tasks and waits for workers to exit
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

func (e *Executor) worker() {
	defer e.wg.Done()
	for t := range e.queue {
		e.run(t)
	}
}

func (e *Executor) run(t Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Task panicked", "panic", r)
		}
	}()
	t(e.ctx)
}
