// Package scheduler implements a cooperative, single-threaded task
// scheduler. Tasks run in deadline order inside bounded slices; between
// slices control returns to the host event loop so it can paint and handle
// input.
package scheduler

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/petermattis/goid"
)

// Scheduler owns the task queues and the slice state. It is not safe for
// concurrent use: every method must be called from the host thread.
type Scheduler struct {
	clock     Clock
	host      Host
	logger    *logiface.Logger[logiface.Event]
	onError   func(error)
	yieldFunc func() bool

	// consult the host's InputPender between the budget and the hard cap
	inputSignal bool

	frameBudget time.Duration
	maxSlice    time.Duration
	timeouts    Timeouts

	taskQueue  *TaskQueue
	timerQueue *TaskQueue

	nextID  uint64
	nextSeq uint64

	currentTask     *Task
	currentPriority Priority

	isPerformingWork      bool
	hostCallbackScheduled bool
	hostTimeoutScheduled  bool

	// per slice
	sliceStart   time.Duration
	sliceExpired bool
	needsPaint   bool

	// goroutine running a slice, read by callers on any goroutine
	runningOn atomic.Int64
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		frameBudget:     DefaultFrameBudget,
		maxSlice:        DefaultMaxSliceDuration,
		timeouts:        DefaultTimeouts(),
		taskQueue:       NewTaskQueue(),
		timerQueue:      NewTaskQueue(),
		currentPriority: NormalPriority,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.clock == nil {
		s.clock = NewSystemClock()
	}
	if s.host == nil {
		s.host = NewManualHost()
	}

	// a slice must be able to run at least one task
	if s.frameBudget <= 0 {
		s.logger.Warning().Dur("frameBudget", s.frameBudget).Log("non-positive frame budget, using the default")
		s.frameBudget = DefaultFrameBudget
	}
	if s.maxSlice < s.frameBudget {
		s.logger.Warning().
			Dur("maxSliceDuration", s.maxSlice).
			Dur("frameBudget", s.frameBudget).
			Log("max slice duration shorter than the frame budget, using the frame budget")
		s.maxSlice = s.frameBudget
	}

	return s
}

func (s *Scheduler) Now() time.Duration { return s.clock.Now() }
func (s *Scheduler) Host() Host         { return s.host }

// CurrentTask is the task whose callback is running, nil between tasks.
func (s *Scheduler) CurrentTask() *Task { return s.currentTask }

// CurrentPriority is the priority of the running task, or the priority set
// by RunWithPriority.
func (s *Scheduler) CurrentPriority() Priority { return s.currentPriority }

// Pending counts queued tasks, tombstones included.
func (s *Scheduler) Pending() int {
	return s.taskQueue.Len() + s.timerQueue.Len()
}

// ScheduleTask queues callback at the given priority and makes sure the
// host will call back into the scheduler.
func (s *Scheduler) ScheduleTask(priority Priority, callback Callback, opts ...TaskOption) *Task {
	var o taskOptions
	for _, opt := range opts {
		opt(&o)
	}

	now := s.clock.Now()
	start := now
	if o.delay > 0 {
		start += o.delay
	}

	s.nextID++
	s.nextSeq++
	t := &Task{
		id:             s.nextID,
		seq:            s.nextSeq,
		priority:       priority,
		callback:       callback,
		startTime:      start,
		expirationTime: start + s.timeouts.timeout(priority),
		index:          -1,
	}

	if start > now {
		t.sortIndex = start
		s.timerQueue.Push(t)

		// the new timer is the earliest one and nothing is ready to run
		if s.taskQueue.IsEmpty() && s.timerQueue.Peek() == t {
			s.requestHostTimeout(start - now)
		}
	} else {
		t.sortIndex = t.expirationTime
		s.taskQueue.Push(t)
		s.requestHostCallback()
	}

	s.logger.Trace().
		Uint64("task", t.id).
		Str("priority", priority.String()).
		Dur("delay", o.delay).
		Log("task scheduled")

	return t
}

// CancelTask tombstones t. A canceled task is dropped when it reaches the
// top of its queue and its callback is never invoked again.
func (s *Scheduler) CancelTask(t *Task) {
	if t == nil || t.canceled {
		return
	}
	t.canceled = true

	s.logger.Trace().Uint64("task", t.id).Log("task canceled")
}

// RunWithPriority runs fn with CurrentPriority reporting p.
func (s *Scheduler) RunWithPriority(p Priority, fn func()) {
	prev := s.currentPriority
	s.currentPriority = p
	defer func() { s.currentPriority = prev }()

	fn()
}

// RequestPaint asks the running slice to yield at the next probe so the host
// can present a frame.
func (s *Scheduler) RequestPaint() {
	s.needsPaint = true
}

// ForceFrameRate derives the frame budget from a target frame rate. Zero
// restores the default budget.
func (s *Scheduler) ForceFrameRate(fps int) error {
	if fps < 0 || fps > 125 {
		return fmt.Errorf("%w: got %d", ErrInvalidFrameRate, fps)
	}
	if fps == 0 {
		s.frameBudget = DefaultFrameBudget
		return nil
	}
	s.frameBudget = time.Second / time.Duration(fps)
	if s.maxSlice < s.frameBudget {
		s.maxSlice = s.frameBudget
	}
	return nil
}

// ShouldYield is the probe handed to every task. Once it returns true the
// slice ends after the running task returns.
func (s *Scheduler) ShouldYield() bool {
	var y bool
	if s.yieldFunc != nil {
		y = s.yieldFunc()
	} else {
		y = s.shouldYieldToHost(s.clock.Now())
	}

	if y {
		s.sliceExpired = true
	}
	return y
}

func (s *Scheduler) shouldYieldToHost(now time.Duration) bool {
	if s.sliceExpired || s.needsPaint {
		return true
	}

	elapsed := now - s.sliceStart
	if elapsed < s.frameBudget {
		return false
	}

	// with an input signal, keep going until input arrives or the slice
	// reaches its hard cap
	if ip, ok := s.host.(InputPender); ok && s.inputSignal && elapsed < s.maxSlice {
		return ip.InputPending()
	}

	return true
}

// RunTasksUntilBlocked runs one slice: ready tasks in order until the queue
// is empty or the slice has to yield. Task panics are recovered, reported to
// the error handler once the queues are consistent again, and returned
// joined together.
func (s *Scheduler) RunTasksUntilBlocked() error {
	gid := goid.Get()
	if !s.runningOn.CompareAndSwap(0, gid) {
		if s.runningOn.Load() == gid {
			return ErrReentrantRun
		}
		return ErrConcurrentRun
	}

	s.hostCallbackScheduled = false
	if s.hostTimeoutScheduled {
		s.hostTimeoutScheduled = false
		s.host.CancelTimeout()
	}

	s.isPerformingWork = true
	s.sliceStart = s.clock.Now()
	s.sliceExpired = false
	s.needsPaint = false
	prevPriority := s.currentPriority

	var errs []error
	hasMore := s.workLoop(&errs)

	s.currentTask = nil
	s.currentPriority = prevPriority
	s.isPerformingWork = false
	s.runningOn.Store(0)

	if hasMore {
		s.requestHostCallback()
	} else if t := s.firstTimer(); t != nil {
		s.requestHostTimeout(t.startTime - s.clock.Now())
	}

	s.logger.Trace().
		Dur("elapsed", s.clock.Now()-s.sliceStart).
		Bool("more", hasMore).
		Log("slice finished")

	for _, err := range errs {
		s.reportError(err)
	}

	return errors.Join(errs...)
}

func (s *Scheduler) workLoop(errs *[]error) bool {
	now := s.clock.Now()
	s.advanceTimers(now)

	ran := false
	for t := s.taskQueue.Peek(); t != nil; t = s.taskQueue.Peek() {
		if t.canceled {
			s.taskQueue.Pop()
			continue
		}

		// every slice runs at least one task. After that the hard cap applies
		// even to expired tasks so that a task that never yields cannot hang
		// the host
		if ran && now-s.sliceStart >= s.maxSlice {
			break
		}
		if ran && t.expirationTime > now && s.shouldYieldToHost(now) {
			break
		}
		ran = true

		s.taskQueue.Pop()
		s.currentTask = t
		s.currentPriority = t.priority

		callback := t.callback
		t.callback = nil
		didTimeout := t.expirationTime <= now

		next, err := s.invoke(t, callback, didTimeout)
		now = s.clock.Now()

		switch {
		case err != nil:
			*errs = append(*errs, err)
		case next != nil && !t.canceled:
			// same priority, deadline and sequence: a continuation is not new work
			t.callback = next
			s.taskQueue.Push(t)
		}

		s.currentTask = nil
		s.advanceTimers(now)
	}

	return !s.taskQueue.IsEmpty()
}

func (s *Scheduler) invoke(t *Task, callback Callback, didTimeout bool) (next Callback, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskError{
				TaskID:   t.id,
				Priority: t.priority,
				Value:    r,
				Stack:    debug.Stack(),
			}
		}
	}()

	return callback(didTimeout, s.ShouldYield), nil
}

// advanceTimers moves delayed tasks whose start time has come into the
// ready queue.
func (s *Scheduler) advanceTimers(now time.Duration) {
	for t := s.timerQueue.Peek(); t != nil; t = s.timerQueue.Peek() {
		switch {
		case t.canceled:
			s.timerQueue.Pop()
		case t.startTime <= now:
			s.timerQueue.Pop()
			t.sortIndex = t.expirationTime
			s.taskQueue.Push(t)
		default:
			return
		}
	}
}

func (s *Scheduler) firstTimer() *Task {
	for t := s.timerQueue.Peek(); t != nil; t = s.timerQueue.Peek() {
		if !t.canceled {
			return t
		}
		s.timerQueue.Pop()
	}
	return nil
}

func (s *Scheduler) handleTimeout() {
	s.hostTimeoutScheduled = false
	s.advanceTimers(s.clock.Now())

	if s.hostCallbackScheduled {
		return
	}
	if !s.taskQueue.IsEmpty() {
		s.requestHostCallback()
	} else if t := s.firstTimer(); t != nil {
		s.requestHostTimeout(t.startTime - s.clock.Now())
	}
}

func (s *Scheduler) requestHostCallback() {
	if s.hostCallbackScheduled || s.isPerformingWork {
		return
	}
	s.hostCallbackScheduled = true
	s.host.RequestCallback(s.performWorkUntilDeadline)
}

func (s *Scheduler) requestHostTimeout(d time.Duration) {
	if s.hostTimeoutScheduled {
		s.host.CancelTimeout()
	}
	s.hostTimeoutScheduled = true
	s.host.RequestTimeout(s.handleTimeout, d)
}

func (s *Scheduler) performWorkUntilDeadline() {
	// errors already went through the error handler
	_ = s.RunTasksUntilBlocked()
}

func (s *Scheduler) reportError(err error) {
	if s.onError != nil {
		s.onError(err)
		return
	}

	s.logger.Err().Err(err).Log("task failed")
}
