package scheduler

import (
	"sync"
	"time"
)

// Host is the event loop the scheduler yields to between slices. All methods
// except Post are called from the host thread.
type Host interface {
	// RequestCallback arranges for fn to run on a later host tick, replacing
	// any callback already requested.
	RequestCallback(fn func())
	CancelCallback()

	// RequestTimeout arranges for fn to run once d has elapsed, replacing any
	// timeout already requested.
	RequestTimeout(fn func(), d time.Duration)
	CancelTimeout()

	// Post enqueues fn to run on the host thread. Safe from any goroutine.
	Post(fn func())
}

// InputPender is implemented by hosts that can tell whether user input is
// waiting. It is only consulted when the scheduler is built with
// WithInputSignal; otherwise slices yield on elapsed time alone.
type InputPender interface {
	InputPending() bool
}

// ManualHost is a Host driven explicitly by the caller, one tick at a time.
// Everything runs on the goroutine that calls Tick.
type ManualHost struct {
	mu sync.Mutex

	callback func()
	timeout  func()
	delay    time.Duration
	posted   []func()

	slices       int
	inputPending bool
}

func NewManualHost() *ManualHost {
	return &ManualHost{}
}

func (h *ManualHost) RequestCallback(fn func()) {
	h.mu.Lock()
	h.callback = fn
	h.mu.Unlock()
}

func (h *ManualHost) CancelCallback() {
	h.mu.Lock()
	h.callback = nil
	h.mu.Unlock()
}

func (h *ManualHost) RequestTimeout(fn func(), d time.Duration) {
	h.mu.Lock()
	h.timeout = fn
	h.delay = d
	h.mu.Unlock()
}

func (h *ManualHost) CancelTimeout() {
	h.mu.Lock()
	h.timeout = nil
	h.delay = 0
	h.mu.Unlock()
}

func (h *ManualHost) Post(fn func()) {
	h.mu.Lock()
	h.posted = append(h.posted, fn)
	h.mu.Unlock()
}

func (h *ManualHost) InputPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inputPending
}

// SetInputPending simulates user input waiting in the host queue.
func (h *ManualHost) SetInputPending(pending bool) {
	h.mu.Lock()
	h.inputPending = pending
	h.mu.Unlock()
}

// HasPendingCallback reports whether the scheduler asked for another tick.
func (h *ManualHost) HasPendingCallback() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.callback != nil
}

// PendingTimeout returns the delay of the requested timeout, if any.
func (h *ManualHost) PendingTimeout() (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.delay, h.timeout != nil
}

// Slices counts the scheduler callbacks run so far.
func (h *ManualHost) Slices() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.slices
}

// Tick runs posted functions, then the requested callback, if any. It
// reports whether anything ran.
func (h *ManualHost) Tick() bool {
	h.mu.Lock()
	posted := h.posted
	h.posted = nil
	h.mu.Unlock()

	for _, fn := range posted {
		fn()
	}

	h.mu.Lock()
	cb := h.callback
	h.callback = nil
	if cb != nil {
		h.slices++
	}
	h.mu.Unlock()

	if cb != nil {
		cb()
	}

	return cb != nil || len(posted) > 0
}

// FireTimeout runs the requested timeout callback, if any.
func (h *ManualHost) FireTimeout() bool {
	h.mu.Lock()
	fn := h.timeout
	h.timeout = nil
	h.delay = 0
	h.mu.Unlock()

	if fn != nil {
		fn()
	}
	return fn != nil
}

// RunUntilIdle ticks until there is nothing left to run and returns the
// number of ticks. Timeouts are not fired.
func (h *ManualHost) RunUntilIdle() int {
	n := 0
	for h.Tick() {
		n++
	}
	return n
}
