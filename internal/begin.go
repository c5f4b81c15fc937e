package internal

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// keys of the fragments a suspense boundary wraps its two branches in, so
// that switching branches remounts instead of reusing nodes
const (
	suspensePrimaryKey  = "\x00primary"
	suspenseFallbackKey = "\x00fallback"
)

type suspenseState struct{}

type capturedError struct {
	err    error
	source *Fiber
}

func single(el *Element) []*Element {
	if el == nil {
		return nil
	}
	return []*Element{el}
}

// beginWork builds the children of wip and returns the first one to work on
// next, or nil when the subtree needs no further work.
func (r *Runtime) beginWork(current, wip *Fiber, lanes Lanes) *Fiber {
	r.didReceiveUpdate = false

	if current != nil {
		switch {
		case current.memoizedProps != wip.pendingProps:
			r.didReceiveUpdate = true
		case !IncludesSomeLane(current.lanes, lanes) && wip.flags&DidCapture == 0:
			return r.bailoutOnAlreadyFinishedWork(current, wip, lanes)
		}
	}

	wip.lanes = NoLanes

	switch wip.tag {
	case HostRoot:
		return r.updateHostRoot(current, wip, lanes)
	case HostComponent:
		return r.updateHostComponent(current, wip)
	case HostText:
		return nil
	case FunctionComponent:
		return r.updateFunctionComponent(current, wip, lanes)
	case Fragment:
		r.reconcileChildren(current, wip, wip.pendingProps.Children)
		return wip.child
	case SuspenseComponent:
		return r.updateSuspenseComponent(current, wip)
	case ErrorBoundaryComponent:
		return r.updateErrorBoundary(current, wip, lanes)
	}

	panic("fiber: unknown work tag " + wip.tag.String())
}

func (r *Runtime) bailoutOnAlreadyFinishedWork(current, wip *Fiber, lanes Lanes) *Fiber {
	if !IncludesSomeLane(lanes, wip.childLanes) {
		// nothing pending below, skip the whole subtree
		return nil
	}

	cloneChildFibers(current, wip)
	return wip.child
}

func cloneChildFibers(current, wip *Fiber) {
	if wip.child == nil {
		return
	}

	currentChild := wip.child
	next := createWorkInProgress(currentChild, currentChild.pendingProps)
	wip.child = next
	next.parent = wip

	for currentChild.sibling != nil {
		currentChild = currentChild.sibling
		next.sibling = createWorkInProgress(currentChild, currentChild.pendingProps)
		next = next.sibling
		next.parent = wip
	}
	next.sibling = nil
}

func (r *Runtime) updateHostRoot(current, wip *Fiber, lanes Lanes) *Fiber {
	root := wip.stateNode.(*FiberRoot)

	state := current.memoizedState.(*hook)
	next := state.clone()
	wip.memoizedState = next
	wip.lanes |= processUpdates(state, next, lanes, replaceReducer)

	if wip.flags&DidCapture != 0 {
		// no boundary caught the error: unmount everything
		next.memoizedState = nil
		next.baseState = nil
		wip.flags |= Callback
		forceUnmountCurrentAndReconcile(current, wip, nil)
		return wip.child
	}

	el, _ := next.memoizedState.(*Element)

	if root.remount {
		wip.flags |= Snapshot
		forceUnmountCurrentAndReconcile(current, wip, single(el))
		return wip.child
	}

	prev, _ := state.memoizedState.(*Element)
	if el == prev && current.child != nil {
		return r.bailoutOnAlreadyFinishedWork(current, wip, lanes)
	}

	r.reconcileChildren(current, wip, single(el))
	return wip.child
}

func (r *Runtime) updateHostComponent(current, wip *Fiber) *Fiber {
	markRef(current, wip)
	r.reconcileChildren(current, wip, wip.pendingProps.Children)
	return wip.child
}

func markRef(current, wip *Fiber) {
	if (current == nil && wip.ref != nil) || (current != nil && current.ref != wip.ref) {
		wip.flags |= Ref | LayoutStatic
	}
}

func (r *Runtime) updateFunctionComponent(current, wip *Fiber, lanes Lanes) *Fiber {
	el := wip.pendingProps
	out := r.renderWithHooks(current, wip, wip.typ.(*Component), el, lanes)

	if current != nil && !r.didReceiveUpdate {
		wip.updateQueue = current.updateQueue
		wip.flags &^= Passive | Update
		current.lanes &^= lanes
		return r.bailoutOnAlreadyFinishedWork(current, wip, lanes)
	}

	r.reconcileChildren(current, wip, single(out))
	return wip.child
}

func (r *Runtime) renderWithHooks(current, wip *Fiber, c *Component, el *Element, lanes Lanes) (out *Element) {
	wip.memoizedState = nil
	wip.updateQueue = nil

	r.tracker.RunWithFiber(current, wip, lanes, func() {
		out = c.Render(&Hooks{r: r, fiber: wip}, el.Props, el.Children)
		if r.tracker.DidUpdate() {
			r.didReceiveUpdate = true
		}
	})

	return out
}

func (r *Runtime) updateSuspenseComponent(current, wip *Fiber) *Fiber {
	el := wip.pendingProps

	var next *Element
	if wip.flags&DidCapture != 0 {
		wip.flags &^= DidCapture
		wip.memoizedState = &suspenseState{}
		next = &Element{Type: FragmentElement, Key: suspenseFallbackKey, Children: single(el.Fallback)}
	} else {
		wip.memoizedState = nil
		next = &Element{Type: FragmentElement, Key: suspensePrimaryKey, Children: el.Children}
	}

	r.reconcileChildren(current, wip, single(next))
	return wip.child
}

func (r *Runtime) updateErrorBoundary(current, wip *Fiber, lanes Lanes) *Fiber {
	el := wip.pendingProps

	var state *hook
	if current != nil {
		state, _ = current.memoizedState.(*hook)
	}

	var next *hook
	if state == nil {
		next = &hook{kind: boundaryHook, queue: &UpdateQueue{}}
		queue, fiber := next.queue, wip
		queue.dispatch = func(action any) {
			r.dispatchAction(fiber, queue, action)
		}
	} else {
		next = state.clone()
		wip.lanes |= processUpdates(state, next, lanes, replaceReducer)
	}
	wip.memoizedState = next

	didCapture := wip.flags&DidCapture != 0
	if didCapture {
		captured := wip.updateQueue.(*capturedError)
		next.memoizedState = captured.err
		next.baseState = captured.err
		wip.flags |= Callback
	}

	var children []*Element
	if err, _ := next.memoizedState.(error); err != nil {
		if el.ErrorFallback != nil {
			dispatch := next.queue.dispatch
			children = single(el.ErrorFallback(err, func() { dispatch(nil) }))
		}
	} else {
		children = el.Children
	}

	if current != nil && didCapture {
		forceUnmountCurrentAndReconcile(current, wip, children)
	} else {
		r.reconcileChildren(current, wip, children)
	}
	return wip.child
}

func wakeablesOf(f *Fiber) mapset.Set[Wakeable] {
	set, _ := f.updateQueue.(mapset.Set[Wakeable])
	return set
}
