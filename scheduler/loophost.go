package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

var ErrLoopNotRunning = errors.New("scheduler: loop host is not running")

// LoopHost is a Host backed by a goroutine message loop: every callback,
// timeout and posted function runs, one at a time, on the goroutine that
// called Run.
type LoopHost struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	timer  *time.Timer
	gen    uint64 // bumped to invalidate a requested callback
	tgen   uint64 // bumped to invalidate a requested timeout
	owner  atomic.Int64
	closed atomic.Bool
}

func NewLoopHost() *LoopHost {
	return &LoopHost{
		wake: make(chan struct{}, 1),
	}
}

// Run processes host work until ctx is done.
func (h *LoopHost) Run(ctx context.Context) error {
	if !h.owner.CompareAndSwap(0, goid.Get()) {
		return ErrConcurrentRun
	}
	defer h.owner.Store(0)

	for {
		for {
			fn := h.next()
			if fn == nil {
				break
			}
			fn()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.wake:
		}
	}
}

// OnLoop reports whether the caller is running on the loop goroutine.
func (h *LoopHost) OnLoop() bool {
	return h.owner.Load() == goid.Get()
}

// Do runs fn on the loop and waits for it to return. Called from the loop
// itself, fn runs inline.
func (h *LoopHost) Do(ctx context.Context, fn func()) error {
	if h.OnLoop() {
		fn()
		return nil
	}
	if h.closed.Load() {
		return ErrLoopNotRunning
	}

	done := make(chan struct{})
	h.Post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops pending work and stops accepting posts.
func (h *LoopHost) Close() {
	h.closed.Store(true)
	h.mu.Lock()
	h.queue = nil
	if h.timer != nil {
		h.timer.Stop()
	}
	h.mu.Unlock()
}

func (h *LoopHost) Post(fn func()) {
	if h.closed.Load() {
		return
	}

	h.mu.Lock()
	h.queue = append(h.queue, fn)
	h.mu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *LoopHost) RequestCallback(fn func()) {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.mu.Unlock()

	h.Post(func() {
		h.mu.Lock()
		live := gen == h.gen
		h.mu.Unlock()
		if live {
			fn()
		}
	})
}

func (h *LoopHost) CancelCallback() {
	h.mu.Lock()
	h.gen++
	h.mu.Unlock()
}

func (h *LoopHost) RequestTimeout(fn func(), d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tgen++
	gen := h.tgen
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(d, func() {
		h.Post(func() {
			h.mu.Lock()
			live := gen == h.tgen
			h.mu.Unlock()
			if live {
				fn()
			}
		})
	})
}

func (h *LoopHost) CancelTimeout() {
	h.mu.Lock()
	h.tgen++
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mu.Unlock()
}

func (h *LoopHost) next() func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.queue) == 0 {
		return nil
	}
	fn := h.queue[0]
	h.queue[0] = nil
	h.queue = h.queue[1:]
	return fn
}
