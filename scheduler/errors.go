package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrReentrantRun is returned when a slice is started from inside a task
	// running on the same scheduler.
	ErrReentrantRun = errors.New("scheduler: cannot run tasks from within a task")

	// ErrConcurrentRun is returned when a slice is started while another
	// goroutine is already running one.
	ErrConcurrentRun = errors.New("scheduler: tasks are already running on another goroutine")

	ErrInvalidConfig    = errors.New("scheduler: invalid config")
	ErrInvalidFrameRate = errors.New("scheduler: frame rate must be between 0 and 125 fps")
)

// TaskError wraps a panic recovered from a task callback.
type TaskError struct {
	TaskID   uint64
	Priority Priority
	Value    any
	Stack    []byte
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("scheduler: task %d (%s) panicked: %v", e.TaskID, e.Priority, e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *TaskError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
