package internal

// update is one queued state transition. Lists are circular and point at
// their last entry.
type update struct {
	lane   Lane
	action any
	next   *update
}

// UpdateQueue holds updates not yet folded into a state cell. It is shared by
// both fibers of a node, so updates survive a discarded build.
type UpdateQueue struct {
	pending *update

	// stable for the lifetime of the node
	dispatch func(action any)
}

func (q *UpdateQueue) enqueue(u *update) {
	if q.pending == nil {
		u.next = u
	} else {
		u.next = q.pending.next
		q.pending.next = u
	}
	q.pending = u
}

// hook is one state cell of a fiber: a component hook, the root element or an
// error boundary's captured error.
type hook struct {
	kind hookKind

	memoizedState any
	baseState     any
	baseQueue     *update
	queue         *UpdateQueue

	next *hook
}

func (h *hook) clone() *hook {
	return &hook{
		kind:          h.kind,
		memoizedState: h.memoizedState,
		baseState:     h.baseState,
		baseQueue:     h.baseQueue,
		queue:         h.queue,
	}
}

// processUpdates folds the updates of current's queue whose lane is in
// renderLanes into next. A skipped update stays queued together with every
// update after it, so rebasing replays them in enqueue order. It returns the
// lanes of the skipped updates.
func processUpdates(current, next *hook, renderLanes Lanes, reduce func(state, action any) any) Lanes {
	queue := next.queue
	baseQueue := current.baseQueue

	if pending := queue.pending; pending != nil {
		if baseQueue != nil {
			baseFirst := baseQueue.next
			pendingFirst := pending.next
			baseQueue.next = pendingFirst
			pending.next = baseFirst
		}
		// kept on current so a discarded build does not lose them
		current.baseQueue = pending
		baseQueue = pending
		queue.pending = nil
	}

	if baseQueue == nil {
		next.baseQueue = nil
		return NoLanes
	}

	var skipped Lanes
	var newBaseState any
	var newBaseFirst, newBaseLast *update

	state := current.baseState
	first := baseQueue.next
	u := first

	for {
		if !IsSubsetOfLanes(renderLanes, u.lane) {
			clone := &update{lane: u.lane, action: u.action}
			if newBaseLast == nil {
				newBaseFirst, newBaseLast = clone, clone
				newBaseState = state
			} else {
				newBaseLast.next = clone
				newBaseLast = clone
			}
			skipped |= u.lane
		} else {
			if newBaseLast != nil {
				// NoLane is part of every render, so it is always replayed
				clone := &update{lane: NoLane, action: u.action}
				newBaseLast.next = clone
				newBaseLast = clone
			}
			state = reduce(state, u.action)
		}

		u = u.next
		if u == nil || u == first {
			break
		}
	}

	if newBaseLast == nil {
		newBaseState = state
	} else {
		newBaseLast.next = newBaseFirst
	}

	next.memoizedState = state
	next.baseState = newBaseState
	next.baseQueue = newBaseLast

	return skipped
}

type effectTag uint8

const (
	hookHasEffect effectTag = 1 << iota
	hookInsertion
	hookLayout
	hookPassive
)

// effectInstance is shared by every render of the same effect hook so the
// cleanup of the committed render is always the one that runs.
type effectInstance struct {
	destroy func()
}

type effect struct {
	tag    effectTag
	create func() func()
	inst   *effectInstance
	deps   []any
}

// functionQueue is the updateQueue of a function component: the effects its
// last render produced, in hook order.
type functionQueue struct {
	effects []*effect
}

func effectsOf(f *Fiber) []*effect {
	if q, ok := f.updateQueue.(*functionQueue); ok {
		return q.effects
	}
	return nil
}

func basicStateReducer(state, action any) any {
	if fn, ok := action.(func(any) any); ok {
		return fn(state)
	}
	return action
}

func replaceReducer(_, action any) any {
	return action
}
