// Package task provides the cooperative deferred-task queue that replaces a
// host event loop: work scheduled in cycle N runs, in scheduling order, when
// the frame driver drains cycle N+1.
package task

import (
	"errors"
	"fmt"
)

// ErrReentrantDrain is returned when a task calls Drain on its own queue.
var ErrReentrantDrain = errors.New("task: drain called from a running task")

// PanicError reports a task that panicked. Value is what it panicked with.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("task: panic: %v", e.Value) }

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Func is a deferred unit of work. A non-nil error is collected by Drain.
type Func func() error

// Queue is double-buffered: Schedule writes to the pending buffer, Drain
// swaps it in and runs it to completion. Tasks scheduled while a drain is
// running land in the fresh pending buffer and wait for the next Drain,
// which gives strict breadth-first ordering.
type Queue struct {
	pending  []Func
	running  []Func
	cycle    uint64
	draining bool
}

func NewQueue() *Queue {
	return &Queue{
		pending: make([]Func, 0, 64),
		running: make([]Func, 0, 64),
	}
}

// Schedule appends fn to the next cycle.
func (q *Queue) Schedule(fn Func) {
	q.pending = append(q.pending, fn)
}

// Drain runs every task scheduled before the call, in order. Errors and
// panics do not stop the batch; they are joined and returned once all tasks
// have run, a panic as a *PanicError.
func (q *Queue) Drain() error {
	if q.draining {
		return ErrReentrantDrain
	}
	q.cycle++
	if len(q.pending) == 0 {
		return nil
	}
	q.running, q.pending = q.pending, q.running[:0]
	batch := q.running
	q.draining = true
	defer func() { q.draining = false }()

	var errs []error
	for i, fn := range batch {
		batch[i] = nil
		if err := run(fn); err != nil {
			errs = append(errs, err)
		}
	}
	q.running = batch[:0]
	return errors.Join(errs...)
}

func run(fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}

// Pending returns the number of tasks waiting for the next Drain.
func (q *Queue) Pending() int { return len(q.pending) }

// Cycle returns how many times Drain has been called.
func (q *Queue) Cycle() uint64 { return q.cycle }

// Clear discards pending tasks without running them.
func (q *Queue) Clear() {
	for i := range q.pending {
		q.pending[i] = nil
	}
	q.pending = q.pending[:0]
}
