package snapshot

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Task is the handle of an operation running in the background.
// It resolves exactly once.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// start runs fn on its own goroutine. A panic inside fn resolves the task
// with an error instead of crashing the process.
func start[T any](fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		var pc panics.Catcher
		pc.Try(func() {
			t.value, t.err = fn()
		})
		if r := pc.Recovered(); r != nil {
			var zero T
			t.value = zero
			t.err = fmt.Errorf("operation panicked: %w", r.AsError())
		}
	}()
	return t
}

// Resolved returns a task that is already complete
func Resolved[T any](value T, err error) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), value: value, err: err}
	close(t.done)
	return t
}

// Done is closed once the task has a result
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.value, t.err
}

// Await is Wait bounded by ctx. Giving up does not stop the operation;
// only the backend timeouts bound it.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
