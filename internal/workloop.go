package internal

import (
	"errors"
	"runtime/debug"

	"github.com/AnatoleLucet/fiber/scheduler"
)

type exitStatus int

const (
	rootInProgress exitStatus = iota
	rootCompleted
	rootDidNotComplete
	rootFatalErrored
)

// prepareFreshStack starts a build of root for lanes, discarding the build
// in progress if any.
func (r *Runtime) prepareFreshStack(root *FiberRoot, lanes Lanes) {
	if r.wipRoot != nil {
		r.logger.Debug().
			Str("lanes", r.wipLanes.String()).
			Str("next", lanes.String()).
			Log("build discarded")
		r.mark(BuildDiscarded, r.wipLanes)
	}

	root.finishedWork = nil
	root.finishedLanes = NoLanes

	r.wipRoot = root
	r.wip = createWorkInProgress(root.current, nil)
	r.wipLanes = lanes
	r.exitStatus = rootInProgress
	r.fatalErr = nil
	r.interleavedLanes = NoLanes

	r.logger.Debug().Str("lanes", lanes.String()).Log("build started")
	r.mark(BuildStarted, lanes)
}

// renderRoot builds root for lanes until the tree is complete or, with a
// non-nil shouldYield, until it asks to yield.
func (r *Runtime) renderRoot(root *FiberRoot, lanes Lanes, shouldYield scheduler.YieldFunc) exitStatus {
	if r.wipRoot != root || r.wipLanes != lanes {
		r.prepareFreshStack(root, lanes)
	} else {
		r.mark(BuildResumed, lanes)
	}

	r.ctx.RunWith(renderContext, func() {
		for {
			thrown, stack, threw := r.workLoop(shouldYield)
			if !threw {
				return
			}
			r.handleThrow(root, thrown, stack)
		}
	})

	if r.wip != nil {
		r.mark(BuildYielded, lanes)
		return rootInProgress
	}

	r.wipRoot = nil
	r.wipLanes = NoLanes

	return r.exitStatus
}

func (r *Runtime) workLoop(shouldYield scheduler.YieldFunc) (thrown any, stack []byte, threw bool) {
	defer func() {
		if v := recover(); v != nil {
			thrown, threw = v, true
			if _, ok := v.(suspendSignal); !ok {
				stack = debug.Stack()
			}
		}
	}()

	for r.wip != nil && (shouldYield == nil || !shouldYield()) {
		r.performUnitOfWork(r.wip)
	}

	return nil, nil, false
}

func (r *Runtime) performUnitOfWork(unit *Fiber) {
	next := r.beginWork(unit.alternate, unit, r.wipLanes)
	unit.memoizedProps = unit.pendingProps

	if next == nil {
		r.completeUnitOfWork(unit)
	} else {
		r.wip = next
	}
}

func (r *Runtime) nextLanes(root *FiberRoot) Lanes {
	wip := NoLanes
	if root == r.wipRoot {
		wip = r.wipLanes
	}
	return PickNextLanes(root.pendingLanes, wip, root.suspendedLanes, root.pingedLanes)
}

func (r *Runtime) concurrentCallback(root *FiberRoot) scheduler.Callback {
	return func(didTimeout bool, shouldYield scheduler.YieldFunc) scheduler.Callback {
		return r.performConcurrentWorkOnRoot(root, didTimeout, shouldYield)
	}
}

func (r *Runtime) syncCallback(root *FiberRoot) scheduler.Callback {
	return func(bool, scheduler.YieldFunc) scheduler.Callback {
		if err := r.performSyncWorkOnRoot(root); err != nil {
			r.releaseTask(root, r.sched.CurrentTask())
			panic(err)
		}
		return nil
	}
}

// releaseTask is called when task, the running task of root, ends without a
// continuation. If root still counts on it, a new task takes over.
func (r *Runtime) releaseTask(root *FiberRoot, task *scheduler.Task) {
	if task == nil || root.callbackNode != task {
		return
	}

	root.callbackNode = nil
	root.callbackPriority = NoLane
	root.callbackSchedPriority = scheduler.NoPriority
	r.ensureRootIsScheduled(root)
}

// performConcurrentWorkOnRoot is the scheduler task of a root. It returns
// itself as a continuation while the build yielded and the root still wants
// this task.
func (r *Runtime) performConcurrentWorkOnRoot(root *FiberRoot, didTimeout bool, shouldYield scheduler.YieldFunc) scheduler.Callback {
	original := root.callbackNode

	flushed, passiveErr := r.flushPassiveEffects()
	if flushed && root.callbackNode != original {
		// effects scheduled something more urgent
		if passiveErr != nil {
			panic(passiveErr)
		}
		return nil
	}

	lanes := r.nextLanes(root)
	if lanes == NoLanes {
		r.releaseTask(root, original)
		if passiveErr != nil {
			panic(passiveErr)
		}
		return nil
	}

	var yield scheduler.YieldFunc
	if !includesBlockingLane(lanes) && lanes&root.expiredLanes == 0 && !didTimeout {
		yield = shouldYield
	}

	status := r.renderRoot(root, lanes, yield)
	err := r.finishBuild(root, lanes, status)

	r.ensureRootIsScheduled(root)

	if err := errors.Join(passiveErr, err); err != nil {
		r.releaseTask(root, original)
		panic(err)
	}

	if original != nil && root.callbackNode == original {
		return r.concurrentCallback(root)
	}
	return nil
}

func (r *Runtime) performSyncWorkOnRoot(root *FiberRoot) error {
	_, passiveErr := r.flushPassiveEffects()

	lanes := r.nextLanes(root)
	if lanes&(SyncLane|root.expiredLanes) == 0 {
		r.ensureRootIsScheduled(root)
		return passiveErr
	}

	status := r.renderRoot(root, lanes, nil)
	err := r.finishBuild(root, lanes, status)

	r.ensureRootIsScheduled(root)

	return errors.Join(passiveErr, err)
}

func (r *Runtime) finishBuild(root *FiberRoot, lanes Lanes, status exitStatus) error {
	switch status {
	case rootCompleted:
		root.finishedWork = root.current.alternate
		root.finishedLanes = lanes
		return r.commitRoot(root)

	case rootDidNotComplete:
		r.markRootSuspended(root, lanes)

	case rootFatalErrored:
		err := r.fatalErr
		r.fatalErr = nil
		r.markRootSuspended(root, lanes)
		return err
	}

	return nil
}
