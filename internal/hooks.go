package internal

// Hooks gives a component access to its state cells. It is only valid during
// the render it was passed to.
type Hooks struct {
	r     *Runtime
	fiber *Fiber
}

// RefObject is a mutable box that keeps its identity across renders.
type RefObject struct {
	Current any
}

type memoState struct {
	value any
	deps  []any
}

func (h *Hooks) tracker() *Tracker {
	t := h.r.tracker
	if t.fiber != h.fiber {
		panic(ErrHookOutsideRender)
	}
	return t
}

// Runtime returns the runtime rendering this component.
func (h *Hooks) Runtime() *Runtime {
	return h.r
}

// Reducer returns the current state and a dispatch func. Dispatched actions
// are queued on the update lane of the caller and folded with reducer, in
// enqueue order, by the next render that includes that lane.
func (h *Hooks) Reducer(reducer func(state, action any) any, initial any) (any, func(action any)) {
	t := h.tracker()
	current, hk := t.nextHook(stateHook)

	if current == nil {
		hk.memoizedState = initial
		hk.baseState = initial
		hk.queue = &UpdateQueue{}

		r, fiber, queue := h.r, t.fiber, hk.queue
		queue.dispatch = func(action any) {
			r.dispatchAction(fiber, queue, action)
		}

		return hk.memoizedState, queue.dispatch
	}

	skipped := processUpdates(current, hk, t.renderLanes, reducer)
	t.fiber.lanes |= skipped

	if !sameValue(current.memoizedState, hk.memoizedState) {
		t.didUpdate = true
	}

	return hk.memoizedState, hk.queue.dispatch
}

// State is a Reducer whose actions are either the next state or a
// func(prev any) any computing it.
func (h *Hooks) State(initial any) (any, func(action any)) {
	return h.Reducer(basicStateReducer, initial)
}

// Effect runs create after the commit has been painted, in a separate task.
// A nil deps runs it after every commit, an empty one only after the first.
func (h *Hooks) Effect(create func() func(), deps []any) {
	h.effect(Passive|PassiveStatic, hookPassive, create, deps)
}

// LayoutEffect runs create synchronously after the host tree was mutated.
func (h *Hooks) LayoutEffect(create func() func(), deps []any) {
	h.effect(Update|LayoutStatic, hookLayout, create, deps)
}

// InsertionEffect runs create during mutations, before any layout effect.
func (h *Hooks) InsertionEffect(create func() func(), deps []any) {
	h.effect(Update, hookInsertion, create, deps)
}

func (h *Hooks) effect(fiberFlags Flags, tag effectTag, create func() func(), deps []any) {
	t := h.tracker()
	current, hk := t.nextHook(effectHook)

	inst := &effectInstance{}
	if current != nil {
		prev := current.memoizedState.(*effect)
		inst = prev.inst

		if deps != nil && sameDeps(prev.deps, deps) {
			hk.memoizedState = t.pushEffect(tag, create, inst, deps)
			return
		}
	}

	t.fiber.flags |= fiberFlags
	hk.memoizedState = t.pushEffect(hookHasEffect|tag, create, inst, deps)
}

func (h *Hooks) Ref(initial any) *RefObject {
	t := h.tracker()
	current, hk := t.nextHook(refHook)

	if current == nil {
		hk.memoizedState = &RefObject{Current: initial}
	}

	return hk.memoizedState.(*RefObject)
}

// Memo returns the value computed for deps, recomputing it only when deps
// changed. A nil deps recomputes on every render.
func (h *Hooks) Memo(compute func() any, deps []any) any {
	t := h.tracker()
	current, hk := t.nextHook(memoHook)

	if current != nil {
		prev := current.memoizedState.(*memoState)
		if deps != nil && sameDeps(prev.deps, deps) {
			return prev.value
		}
	}

	m := &memoState{value: compute(), deps: deps}
	hk.memoizedState = m

	return m.value
}

// Transition reports whether a transition started from this component is
// still pending, and returns a stable func starting one. Updates made by fn
// use a transition lane; the pending flag flips at the caller's lane first.
func (h *Hooks) Transition() (bool, func(fn func())) {
	pending, setPending := h.State(false)
	start := h.Ref(nil)

	if start.Current == nil {
		r := h.r
		start.Current = func(fn func()) {
			setPending(true)
			r.StartTransition(func() {
				setPending(false)
				fn()
			})
		}
	}

	return pending.(bool), start.Current.(func(func()))
}
