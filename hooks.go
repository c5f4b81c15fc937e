package fiber

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// State updates a state cell created by UseState. It keeps its identity
// across renders.
type State[T any] struct {
	dispatch func(action any)
}

// Set replaces the state with v.
func (s State[T]) Set(v T) {
	s.dispatch(v)
}

// Update computes the next state from the previous one. Updates queued on
// the same lane are applied in order.
func (s State[T]) Update(fn func(prev T) T) {
	s.dispatch(func(prev any) any { return fn(as[T](prev)) })
}

// UseState returns the current state of the cell and a handle to update it.
func UseState[T any](h *Hooks, initial T) (T, State[T]) {
	v, dispatch := h.State(initial)
	return as[T](v), State[T]{dispatch: dispatch}
}

// UseReducer folds dispatched actions into the state with reducer.
func UseReducer[S, A any](h *Hooks, reducer func(state S, action A) S, initial S) (S, func(action A)) {
	v, dispatch := h.Reducer(func(state, action any) any {
		return reducer(as[S](state), as[A](action))
	}, initial)

	return as[S](v), func(action A) { dispatch(action) }
}

// UseEffect runs fn after the commit is painted and the cleanup it returns
// before the next run or on unmount. A nil deps runs it after every commit,
// an empty one only once.
func UseEffect(h *Hooks, fn func() func(), deps []any) {
	h.Effect(fn, deps)
}

// UseLayoutEffect runs fn right after the host tree was mutated, before
// the host paints.
func UseLayoutEffect(h *Hooks, fn func() func(), deps []any) {
	h.LayoutEffect(fn, deps)
}

func UseInsertionEffect(h *Hooks, fn func() func(), deps []any) {
	h.InsertionEffect(fn, deps)
}

func UseRef(h *Hooks, initial any) *RefObject {
	return h.Ref(initial)
}

// UseMemo caches the result of compute until deps change.
func UseMemo[T any](h *Hooks, compute func() T, deps []any) T {
	return as[T](h.Memo(func() any { return compute() }, deps))
}

// UseTransition returns whether a transition started by this component is
// pending and a func to start one.
func UseTransition(h *Hooks) (bool, func(fn func())) {
	return h.Transition()
}

// Deps builds a dependency list; Deps() is the empty, run-once list.
func Deps(values ...any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

