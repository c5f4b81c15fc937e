package internal

import (
	mapset "github.com/deckarep/golang-set/v2"
)

type pingKey struct {
	wakeable Wakeable
	lanes    Lanes
}

// handleThrow turns a panic recovered from the unit of work in progress into
// a capture by the nearest boundary, then unwinds towards it.
func (r *Runtime) handleThrow(root *FiberRoot, thrown any, stack []byte) {
	failed := r.wip

	if failed == nil || failed.parent == nil {
		r.exitStatus = rootFatalErrored
		r.fatalErr = &RenderError{Component: "root", Value: thrown, Stack: stack}
		r.wip = nil
		return
	}

	r.throwException(root, failed, thrown, stack, r.wipLanes)
	r.completeUnitOfWork(failed)
}

func (r *Runtime) throwException(root *FiberRoot, source *Fiber, thrown any, stack []byte, lanes Lanes) {
	source.flags |= Incomplete

	if sig, ok := thrown.(suspendSignal); ok {
		if boundary := findSuspenseBoundary(source); boundary != nil {
			set := wakeablesOf(boundary)
			if set == nil {
				set = mapset.NewThreadUnsafeSet[Wakeable]()
				boundary.updateQueue = set
			}
			set.Add(sig.wakeable)
			boundary.flags |= ShouldCapture

			r.logger.Debug().
				Str("component", source.name()).
				Log("suspended, showing fallback")
			return
		}

		// without a boundary the root keeps showing what it has until the
		// wakeable pings it
		r.attachPingListener(root, sig.wakeable, lanes)
		r.logger.Debug().
			Str("component", source.name()).
			Str("lanes", lanes.String()).
			Log("root suspended")
		return
	}

	err := &RenderError{Component: source.name(), Value: thrown, Stack: stack}

	for node := source.parent; node != nil; node = node.parent {
		switch node.tag {
		case ErrorBoundaryComponent:
			if node.flags&DidCapture != 0 {
				// its fallback is what failed
				continue
			}
		case HostRoot:
		default:
			continue
		}

		node.flags |= ShouldCapture
		node.updateQueue = &capturedError{err: err, source: source}
		return
	}
}

// findSuspenseBoundary skips boundaries whose fallback is the one that
// suspended.
func findSuspenseBoundary(source *Fiber) *Fiber {
	prev := source
	for node := source.parent; node != nil; prev, node = node, node.parent {
		if node.tag != SuspenseComponent {
			continue
		}
		if prev.tag == Fragment && prev.key == suspenseFallbackKey {
			continue
		}
		return node
	}
	return nil
}

func (r *Runtime) attachPingListener(root *FiberRoot, w Wakeable, lanes Lanes) {
	key := pingKey{wakeable: w, lanes: lanes}
	if !root.pingCache.Add(key) {
		return
	}

	w.Then(func() {
		r.post(func() { r.pingSuspendedRoot(root, key) })
	})
}

func (r *Runtime) pingSuspendedRoot(root *FiberRoot, key pingKey) {
	root.pingCache.Remove(key)
	if root.unmounted {
		return
	}

	root.pingedLanes |= root.suspendedLanes & key.lanes
	r.ensureRootIsScheduled(root)
}

// attachRetryListeners schedules a retry of boundary, on a retry lane, for
// every wakeable its last build suspended on.
func (r *Runtime) attachRetryListeners(boundary *Fiber) {
	set := wakeablesOf(boundary)
	boundary.updateQueue = nil
	if set == nil {
		return
	}

	cache, _ := boundary.stateNode.(mapset.Set[Wakeable])
	if cache == nil {
		cache = mapset.NewThreadUnsafeSet[Wakeable]()
		boundary.stateNode = cache
		if boundary.alternate != nil {
			boundary.alternate.stateNode = cache
		}
	}

	set.Each(func(w Wakeable) bool {
		if !cache.Add(w) {
			return false
		}
		w.Then(func() {
			r.post(func() {
				cache.Remove(w)
				r.retryTimedOutBoundary(boundary)
			})
		})
		return false
	})
}

func (r *Runtime) retryTimedOutBoundary(boundary *Fiber) {
	lane := r.lanes.claimRetry()

	root := markUpdateLaneFromFiberToRoot(boundary, lane)
	if root == nil || root.unmounted {
		return
	}

	r.markRootUpdated(root, lane)
	r.ensureRootIsScheduled(root)
}
