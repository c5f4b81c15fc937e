package scheduler

import (
	"time"

	"github.com/joeycumines/logiface"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithClock(clock Clock) Option {
	return func(s *Scheduler) { s.clock = clock }
}

func WithHost(host Host) Option {
	return func(s *Scheduler) { s.host = host }
}

func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithErrorHandler receives every task error after the slice that produced
// it has restored the queues.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// WithFrameBudget sets how long a slice may run before yielding. This is an
// environment-specific tunable; 5ms suits a 60Hz display with headroom.
func WithFrameBudget(d time.Duration) Option {
	return func(s *Scheduler) { s.frameBudget = d }
}

// WithMaxSliceDuration caps every slice, including slices that only run
// expired tasks.
func WithMaxSliceDuration(d time.Duration) Option {
	return func(s *Scheduler) { s.maxSlice = d }
}

func WithTimeouts(t Timeouts) Option {
	return func(s *Scheduler) { s.timeouts = t }
}

// WithYieldFunc replaces the elapsed-time heuristic behind the probe handed
// to tasks, e.g. with a host specific "is input pending" signal.
func WithYieldFunc(fn func() bool) Option {
	return func(s *Scheduler) { s.yieldFunc = fn }
}

// WithInputSignal lets a slice run past the frame budget, up to the max
// slice duration, as long as the host reports no pending input. The host
// must implement InputPender.
func WithInputSignal() Option {
	return func(s *Scheduler) { s.inputSignal = true }
}

// WithConfig applies every field of cfg.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) {
		s.frameBudget = cfg.FrameBudget
		s.maxSlice = cfg.MaxSliceDuration
		s.timeouts = cfg.Timeouts
	}
}
