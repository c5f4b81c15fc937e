package internal

import (
	"github.com/joeycumines/logiface"

	"github.com/AnatoleLucet/fiber/scheduler"
)

// Runtime renders trees of elements into a host. It owns the scheduler and
// every root created from it. Like the scheduler, it is bound to the host
// thread: updates from other goroutines go through Post.
type Runtime struct {
	sched    *scheduler.Scheduler
	host     HostConfig
	logger   *logiface.Logger[logiface.Event]
	profiler Profiler

	onUncaughtError func(error)
	onCaughtError   func(error)

	ctx     *ExecutionContext
	batcher *Batcher
	tracker *Tracker
	lanes   laneAllocator

	// forced lane for updates, set by FlushSync and WithLane
	updateLane     Lane
	transitionLane Lane

	roots []*FiberRoot

	// build in progress
	wipRoot          *FiberRoot
	wip              *Fiber
	wipLanes         Lanes
	exitStatus       exitStatus
	fatalErr         error
	interleavedLanes Lanes
	didReceiveUpdate bool

	// last commit, until its passive effects ran
	pendingPassive     *Fiber
	pendingPassiveRoot *FiberRoot
	passiveTask        *scheduler.Task

	nestedUpdates int
	nestedRoot    *FiberRoot
}

type Option func(*Runtime)

func WithScheduler(s *scheduler.Scheduler) Option {
	return func(r *Runtime) { r.sched = s }
}

func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(r *Runtime) { r.logger = logger }
}

// WithProfiler receives a mark at every build and commit boundary.
func WithProfiler(p Profiler) Option {
	return func(r *Runtime) { r.profiler = p }
}

// WithUncaughtErrorHandler receives render errors no boundary caught. The
// tree of the root they came from is unmounted.
func WithUncaughtErrorHandler(fn func(error)) Option {
	return func(r *Runtime) { r.onUncaughtError = fn }
}

// WithCaughtErrorHandler receives render errors caught by a boundary.
func WithCaughtErrorHandler(fn func(error)) Option {
	return func(r *Runtime) { r.onCaughtError = fn }
}

func NewRuntime(host HostConfig, opts ...Option) *Runtime {
	r := &Runtime{
		host:    host,
		ctx:     NewContext(),
		batcher: NewBatcher(),
		tracker: NewTracker(),
		lanes:   newLaneAllocator(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.sched == nil {
		r.sched = scheduler.New(scheduler.WithLogger(r.logger))
	}

	return r
}

func (r *Runtime) Scheduler() *scheduler.Scheduler { return r.sched }
func (r *Runtime) Host() HostConfig                { return r.host }

// Post runs fn on the host thread. Safe from any goroutine.
func (r *Runtime) Post(fn func()) {
	r.post(fn)
}

func (r *Runtime) post(fn func()) {
	r.sched.Host().Post(fn)
}

// requestUpdateLane picks the lane of a new update from where it was made.
func (r *Runtime) requestUpdateLane() Lane {
	switch {
	case r.ctx.Is(renderContext) && r.wipLanes != NoLanes:
		return HighestPriorityLane(r.wipLanes)
	case r.transitionLane != NoLane:
		return r.transitionLane
	case r.updateLane != NoLane:
		return r.updateLane
	}
	return DefaultLane
}

// StartTransition runs fn with its updates on a transition lane. Nested
// transitions share the lane of the outermost one.
func (r *Runtime) StartTransition(fn func()) {
	if r.transitionLane != NoLane {
		fn()
		return
	}

	r.transitionLane = r.lanes.claimTransition()
	defer func() { r.transitionLane = NoLane }()

	fn()
}

// WithLane runs fn with its updates on lane.
func (r *Runtime) WithLane(lane Lane, fn func()) {
	prev := r.updateLane
	r.updateLane = lane
	defer func() { r.updateLane = prev }()

	fn()
}

// FlushSync runs fn with its updates on the sync lane, then renders and
// commits them before returning. Called during a build or a commit, the
// work is left to the scheduled task.
func (r *Runtime) FlushSync(fn func()) error {
	var err error
	r.WithLane(SyncLane, func() {
		err = r.Batch(fn)
	})
	if err != nil {
		return err
	}

	if r.batcher.IsBatching() || r.ctx.Working() {
		return nil
	}
	return r.flushSyncWork()
}

// flushSyncWork renders every root with pending sync work, until none is
// left. Effects of a sync commit that schedule more sync work are bounded by
// the nested update limit.
func (r *Runtime) flushSyncWork() error {
	if r.ctx.Working() {
		return nil
	}

	for {
		var root *FiberRoot
		for _, candidate := range r.roots {
			if r.nextLanes(candidate)&SyncLane != 0 {
				root = candidate
				break
			}
		}
		if root == nil {
			return nil
		}

		if err := r.performSyncWorkOnRoot(root); err != nil {
			return err
		}
	}
}

func (r *Runtime) reportUncaught(err error) {
	if r.onUncaughtError != nil {
		r.onUncaughtError(err)
		return
	}

	r.logger.Err().Err(err).Log("uncaught render error")
}

func (r *Runtime) reportCaught(err error) {
	if r.onCaughtError != nil {
		r.onCaughtError(err)
		return
	}

	r.logger.Warning().Err(err).Log("render error caught by a boundary")
}
