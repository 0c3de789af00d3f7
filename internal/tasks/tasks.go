// Package tasks runs blocking work off the tick goroutine and lets the
// caller poll for completion without waiting.
package tasks

import (
	"runtime"

	"github.com/alitto/pond/v2"
)

// Pool is a fixed-size worker pool.
type Pool struct {
	pool    pond.Pool
	workers int
}

// NewPool creates a pool with the given number of workers.
// Zero or negative means one worker per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{pool: pond.NewPool(workers), workers: workers}
}

// Workers returns the maximum number of tasks running at once.
func (p *Pool) Workers() int {
	return p.workers
}

// Waiting returns the number of submitted tasks not yet started.
func (p *Pool) Waiting() uint64 {
	return p.pool.WaitingTasks()
}

// StopAndWait stops accepting tasks and waits for the submitted ones to finish.
func (p *Pool) StopAndWait() {
	p.pool.StopAndWait()
}

// Task is the handle of a spawned computation producing a T.
type Task[T any] struct {
	handle pond.Task
	value  T
}

// Spawn submits fn to the pool.
func Spawn[T any](p *Pool, fn func() T) *Task[T] {
	t := &Task[T]{}
	t.handle = p.pool.Submit(func() {
		t.value = fn()
	})
	return t
}

// Poll returns the result and true once the task has finished, without blocking.
// A task that panicked reports done with the zero value; Err returns the cause.
func (t *Task[T]) Poll() (T, bool) {
	select {
	case <-t.handle.Done():
		return t.value, true
	default:
		var zero T
		return zero, false
	}
}

// Wait blocks until the task has finished.
func (t *Task[T]) Wait() (T, error) {
	err := t.handle.Wait()
	return t.value, err
}

// Err returns the panic recovered from the task, if any. Call it after Poll reported done.
func (t *Task[T]) Err() error {
	select {
	case <-t.handle.Done():
		return t.handle.Wait()
	default:
		return nil
	}
}
