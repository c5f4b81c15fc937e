package internal

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/AnatoleLucet/fiber/scheduler"
)

const nestedUpdateLimit = 50

// FiberRoot is the shared state of one mounted tree.
type FiberRoot struct {
	container any
	current   *Fiber

	pendingLanes   Lanes
	suspendedLanes Lanes
	pingedLanes    Lanes
	expiredLanes   Lanes

	expirationTimes [TotalLanes]time.Duration

	callbackNode          *scheduler.Task
	callbackPriority      Lane
	callbackSchedPriority scheduler.Priority

	finishedWork  *Fiber
	finishedLanes Lanes

	pingCache mapset.Set[pingKey]

	// set by a failed mutation stage, the next build starts from scratch
	remount   bool
	unmounted bool
}

func (root *FiberRoot) Container() any       { return root.container }
func (root *FiberRoot) Current() *Fiber      { return root.current }
func (root *FiberRoot) PendingLanes() Lanes  { return root.pendingLanes }
func (root *FiberRoot) SuspendedLanes() Lanes { return root.suspendedLanes }

// CreateRoot prepares an empty tree rendering into container.
func (r *Runtime) CreateRoot(container any) *FiberRoot {
	root := &FiberRoot{
		container: container,
		pingCache: mapset.NewThreadUnsafeSet[pingKey](),
	}
	for i := range root.expirationTimes {
		root.expirationTimes[i] = NoTimestamp
	}

	f := newFiber(HostRoot, nil, "")
	f.stateNode = root
	f.memoizedState = &hook{kind: rootHook, queue: &UpdateQueue{}}
	root.current = f

	r.roots = append(r.roots, root)

	return root
}

// UpdateContainer schedules el as the new content of root and returns the
// lane of the update.
func (r *Runtime) UpdateContainer(root *FiberRoot, el *Element) (Lane, error) {
	if root.unmounted {
		return NoLane, ErrRootUnmounted
	}

	lane := r.requestUpdateLane()
	state := root.current.memoizedState.(*hook)
	state.queue.enqueue(&update{lane: lane, action: el})

	r.scheduleUpdateOnFiber(root.current, lane)

	return lane, nil
}

// Unmount synchronously removes the tree of root. The root cannot be reused.
func (r *Runtime) Unmount(root *FiberRoot) error {
	if root.unmounted {
		return ErrRootUnmounted
	}

	err := r.FlushSync(func() {
		_, _ = r.UpdateContainer(root, nil)
	})

	root.unmounted = true
	if root.callbackNode != nil {
		r.sched.CancelTask(root.callbackNode)
		root.callbackNode = nil
	}
	for i, other := range r.roots {
		if other == root {
			r.roots = append(r.roots[:i], r.roots[i+1:]...)
			break
		}
	}

	return err
}

// ScheduleUpdateOnRoot schedules a pass over root at lane without a new
// element. Only nodes with pending work are rebuilt.
func (r *Runtime) ScheduleUpdateOnRoot(root *FiberRoot, lane Lane) error {
	if root.unmounted {
		return ErrRootUnmounted
	}
	r.scheduleUpdateOnFiber(root.current, lane)
	return nil
}

func (r *Runtime) dispatchAction(f *Fiber, queue *UpdateQueue, action any) {
	lane := r.requestUpdateLane()
	queue.enqueue(&update{lane: lane, action: action})
	r.scheduleUpdateOnFiber(f, lane)
}

func (r *Runtime) scheduleUpdateOnFiber(f *Fiber, lane Lane) {
	if r.nestedUpdates > nestedUpdateLimit {
		r.nestedUpdates = 0
		r.nestedRoot = nil
		panic(ErrTooManyUpdates)
	}

	root := markUpdateLaneFromFiberToRoot(f, lane)
	if root == nil || root.unmounted {
		r.logger.Debug().Str("component", f.name()).Log("update on an unmounted node ignored")
		return
	}

	r.markRootUpdated(root, lane)
	if root == r.wipRoot {
		// keeps the lane pending if the build in progress already passed f
		r.interleavedLanes |= lane
	}
	r.batcher.Track(lane)

	r.ensureRootIsScheduled(root)
}

// markUpdateLaneFromFiberToRoot marks f and the child lanes of its
// ancestors, on both trees, and returns the root or nil when f is detached.
func markUpdateLaneFromFiberToRoot(f *Fiber, lane Lane) *FiberRoot {
	f.lanes |= lane
	if f.alternate != nil {
		f.alternate.lanes |= lane
	}

	node := f
	for parent := f.parent; parent != nil; parent = parent.parent {
		parent.childLanes |= lane
		if parent.alternate != nil {
			parent.alternate.childLanes |= lane
		}
		node = parent
	}

	if node.tag != HostRoot {
		return nil
	}
	return node.stateNode.(*FiberRoot)
}

func (r *Runtime) markRootUpdated(root *FiberRoot, lane Lane) {
	root.pendingLanes |= lane

	// an update may unblock suspended work
	if lane != IdleLane {
		root.suspendedLanes = NoLanes
		root.pingedLanes = NoLanes
	}
}

func (r *Runtime) markRootSuspended(root *FiberRoot, lanes Lanes) {
	root.suspendedLanes |= lanes
	root.pingedLanes &^= lanes

	for l := lanes; l != NoLanes; {
		i := laneToIndex(l)
		root.expirationTimes[i] = NoTimestamp
		l &^= 1 << i
	}
}

func (r *Runtime) markRootFinished(root *FiberRoot, remaining Lanes) {
	done := root.pendingLanes &^ remaining

	root.pendingLanes = remaining
	root.suspendedLanes = NoLanes
	root.pingedLanes = NoLanes
	root.expiredLanes &= remaining

	for l := done; l != NoLanes; {
		i := laneToIndex(l)
		root.expirationTimes[i] = NoTimestamp
		l &^= 1 << i
	}
}

// markStarvedLanesAsExpired gives pending lanes an expiration time and marks
// the overdue ones as expired, which renders them without yielding.
func (r *Runtime) markStarvedLanesAsExpired(root *FiberRoot, now time.Duration) {
	for l := root.pendingLanes; l != NoLanes; {
		i := laneToIndex(l)
		lane := Lane(1) << i
		l &^= lane

		exp := root.expirationTimes[i]
		switch {
		case exp == NoTimestamp:
			if lane&root.suspendedLanes == 0 || lane&root.pingedLanes != 0 {
				root.expirationTimes[i] = computeExpirationTime(lane, now)
			}
		case exp <= now:
			root.expiredLanes |= lane
		}
	}
}

// ensureRootIsScheduled makes sure root has exactly one task, at the
// priority of its most urgent pending work.
func (r *Runtime) ensureRootIsScheduled(root *FiberRoot) {
	existing := root.callbackNode

	r.markStarvedLanesAsExpired(root, r.sched.Now())

	next := NoLanes
	if !root.unmounted {
		next = r.nextLanes(root)
	}

	if next == NoLanes {
		if existing != nil {
			r.sched.CancelTask(existing)
		}
		root.callbackNode = nil
		root.callbackPriority = NoLane
		root.callbackSchedPriority = scheduler.NoPriority
		return
	}

	lane := HighestPriorityLane(next)
	priority := LanesToPriority(next)
	if next&root.expiredLanes != 0 {
		priority = scheduler.ImmediatePriority
	}

	if existing != nil && root.callbackPriority == lane && root.callbackSchedPriority == priority {
		return
	}
	if existing != nil {
		r.sched.CancelTask(existing)
	}

	var cb scheduler.Callback
	if lane == SyncLane {
		cb = r.syncCallback(root)
	} else {
		cb = r.concurrentCallback(root)
	}

	root.callbackNode = r.sched.ScheduleTask(priority, cb)
	root.callbackPriority = lane
	root.callbackSchedPriority = priority
}
