package fiber

import (
	"errors"

	"github.com/joeycumines/logiface"

	"github.com/AnatoleLucet/fiber/internal"
	"github.com/AnatoleLucet/fiber/scheduler"
)

// Runtime owns a scheduler and the roots rendering through it. Its methods
// must be called from the host thread; use Post from other goroutines.
type Runtime struct {
	rt *internal.Runtime
}

type Option = internal.Option

func WithScheduler(s *scheduler.Scheduler) Option {
	return internal.WithScheduler(s)
}

func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return internal.WithLogger(logger)
}

func WithProfiler(p Profiler) Option {
	return internal.WithProfiler(p)
}

// WithUncaughtErrorHandler receives render errors no boundary caught. The
// root they came from renders nothing afterwards.
func WithUncaughtErrorHandler(fn func(error)) Option {
	return internal.WithUncaughtErrorHandler(fn)
}

func WithCaughtErrorHandler(fn func(error)) Option {
	return internal.WithCaughtErrorHandler(fn)
}

// New creates a runtime rendering into host. Without WithScheduler it gets
// a scheduler driven by a scheduler.ManualHost.
func New(host HostConfig, opts ...Option) *Runtime {
	return &Runtime{rt: internal.NewRuntime(host, opts...)}
}

func (rt *Runtime) Scheduler() *scheduler.Scheduler {
	return rt.rt.Scheduler()
}

// CreateRoot prepares an empty tree rendering into container.
func (rt *Runtime) CreateRoot(container any) *Root {
	return &Root{rt: rt, root: rt.rt.CreateRoot(container)}
}

// FlushSync renders and commits the updates made by fn before returning.
func (rt *Runtime) FlushSync(fn func()) error {
	return rt.rt.FlushSync(fn)
}

// Batch groups the updates made by fn into one render.
func (rt *Runtime) Batch(fn func()) error {
	return rt.rt.Batch(fn)
}

// StartTransition marks the updates made by fn as interruptible, lower
// priority work.
func (rt *Runtime) StartTransition(fn func()) {
	rt.rt.StartTransition(fn)
}

// WithLane runs fn with its updates on lane.
func (rt *Runtime) WithLane(lane Lane, fn func()) {
	rt.rt.WithLane(lane, fn)
}

// RequestPaint ends the running slice at its next yield check.
func (rt *Runtime) RequestPaint() {
	rt.rt.Scheduler().RequestPaint()
}

// Post runs fn on the host thread. Safe from any goroutine.
func (rt *Runtime) Post(fn func()) {
	rt.rt.Post(fn)
}

// Root is one mounted tree.
type Root struct {
	rt   *Runtime
	root *internal.FiberRoot
}

func (r *Root) Container() any { return r.root.Container() }

// Render schedules el as the content of the root. The lane depends on the
// caller: default priority, or the lane of an enclosing FlushSync,
// StartTransition or WithLane.
func (r *Root) Render(el *Element) error {
	_, err := r.rt.rt.UpdateContainer(r.root, el)
	return err
}

// RenderSync renders and commits el before returning. A root that was
// unmounted returns ErrRootUnmounted.
func (r *Root) RenderSync(el *Element) error {
	var renderErr error
	err := r.rt.FlushSync(func() { renderErr = r.Render(el) })
	return errors.Join(renderErr, err)
}

// ScheduleUpdate asks for a pass over the root at lane.
func (r *Root) ScheduleUpdate(lane Lane) error {
	return r.rt.rt.ScheduleUpdateOnRoot(r.root, lane)
}

// PendingLanes are the lanes with uncommitted work.
func (r *Root) PendingLanes() Lanes {
	return r.root.PendingLanes()
}

// Unmount synchronously removes the tree. The root cannot be reused.
func (r *Root) Unmount() error {
	return r.rt.rt.Unmount(r.root)
}
