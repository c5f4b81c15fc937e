package internal

import (
	"errors"
	"fmt"
)

var (
	ErrHookOrder         = errors.New("fiber: hooks must be called in the same order on every render")
	ErrHookOutsideRender = errors.New("fiber: hooks can only be called while their component renders")
	ErrRootUnmounted     = errors.New("fiber: root is unmounted")
	ErrTooManyUpdates    = errors.New("fiber: maximum update depth exceeded")
	ErrInvalidElement    = errors.New("fiber: invalid element type")
)

func hookOrderError(f *Fiber, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrHookOrder, f.name(), msg)
}

// RenderError is a panic recovered while building a node.
type RenderError struct {
	Component string
	Value     any
	Stack     []byte
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("fiber: error rendering %s: %v", e.Component, e.Value)
}

func (e *RenderError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// CommitError is a failure while applying a finished tree. A failure in the
// mutation stage leaves the host tree in an unknown state and the root is
// remounted by its next render.
type CommitError struct {
	Stage string
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("fiber: commit failed during %s: %v", e.Stage, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// suspendSignal is thrown by a read of a resource that is not settled yet.
type suspendSignal struct {
	wakeable Wakeable
}

func toError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
