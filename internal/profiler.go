package internal

import (
	"sync"
	"time"
)

type MarkKind int

const (
	BuildStarted MarkKind = iota
	BuildYielded
	BuildResumed
	BuildDiscarded
	CommitStarted
	CommitStopped
)

func (k MarkKind) String() string {
	switch k {
	case BuildStarted:
		return "build-started"
	case BuildYielded:
		return "build-yielded"
	case BuildResumed:
		return "build-resumed"
	case BuildDiscarded:
		return "build-discarded"
	case CommitStarted:
		return "commit-started"
	case CommitStopped:
		return "commit-stopped"
	}
	return "unknown"
}

// Profiler receives the lifecycle marks of builds and commits.
type Profiler interface {
	Mark(kind MarkKind, lanes Lanes, at time.Duration)
}

type Mark struct {
	Kind  MarkKind
	Lanes Lanes
	At    time.Duration
}

// Recorder is a Profiler keeping every mark in memory.
type Recorder struct {
	mu    sync.Mutex
	marks []Mark
}

func (p *Recorder) Mark(kind MarkKind, lanes Lanes, at time.Duration) {
	p.mu.Lock()
	p.marks = append(p.marks, Mark{Kind: kind, Lanes: lanes, At: at})
	p.mu.Unlock()
}

func (p *Recorder) Marks() []Mark {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Mark(nil), p.marks...)
}

func (p *Recorder) Count(kind MarkKind) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, m := range p.marks {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

func (p *Recorder) Reset() {
	p.mu.Lock()
	p.marks = nil
	p.mu.Unlock()
}

// mark never lets a profiler failure reach the work loop.
func (r *Runtime) mark(kind MarkKind, lanes Lanes) {
	if r.profiler == nil {
		return
	}

	defer func() {
		if v := recover(); v != nil {
			r.logger.Warning().
				Str("mark", kind.String()).
				Err(toError(v)).
				Log("profiler panicked")
		}
	}()

	r.profiler.Mark(kind, lanes, r.sched.Now())
}
