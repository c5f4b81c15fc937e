package scheduler

import "time"

// YieldFunc reports whether the running task should hand control back to
// the scheduler at its next safe point.
type YieldFunc func() bool

// Callback is a unit of work. Returning a non-nil Callback keeps the task
// queued with the returned continuation in place of the original callback.
type Callback func(didTimeout bool, shouldYield YieldFunc) Callback

// Task is the handle returned by ScheduleTask.
type Task struct {
	id       uint64
	seq      uint64
	priority Priority
	callback Callback

	startTime      time.Duration
	expirationTime time.Duration

	// sortIndex is the start time while delayed, the expiration time once ready
	sortIndex time.Duration

	canceled bool
	index    int // position in its queue, -1 when not queued
}

func (t *Task) ID() uint64                    { return t.id }
func (t *Task) Priority() Priority            { return t.priority }
func (t *Task) ExpirationTime() time.Duration { return t.expirationTime }
func (t *Task) Canceled() bool                { return t.canceled }

// TaskOption customizes a single ScheduleTask call.
type TaskOption func(*taskOptions)

type taskOptions struct {
	delay time.Duration
}

// WithDelay parks the task in the timer queue until delay has elapsed.
func WithDelay(delay time.Duration) TaskOption {
	return func(o *taskOptions) { o.delay = delay }
}
