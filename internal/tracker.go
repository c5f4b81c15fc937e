package internal

type hookKind uint8

const (
	stateHook hookKind = iota + 1
	effectHook
	refHook
	memoHook
	rootHook
	boundaryHook
)

// Tracker holds the hook cursor of the component being rendered.
type Tracker struct {
	current *Fiber // committed fiber, nil on mount
	fiber   *Fiber // fiber being rendered

	currentHook *hook
	wipHook     *hook

	renderLanes Lanes

	// set when a hook produced a state different from the committed one
	didUpdate bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// RunWithFiber renders fn as wip's component. The previous cursor is
// restored even when fn panics.
func (t *Tracker) RunWithFiber(current, wip *Fiber, lanes Lanes, fn func()) {
	prev := *t
	defer func() { *t = prev }()

	*t = Tracker{current: current, fiber: wip, renderLanes: lanes}

	fn()

	if t.hasRemainingHooks() {
		panic(hookOrderError(wip, "rendered fewer hooks than during the previous render"))
	}
}

func (t *Tracker) Rendering() *Fiber {
	return t.fiber
}

func (t *Tracker) DidUpdate() bool {
	return t.didUpdate
}

// nextHook advances the cursor and returns the committed hook, nil on mount,
// along with the hook of the render in progress.
func (t *Tracker) nextHook(kind hookKind) (current, next *hook) {
	if t.fiber == nil {
		panic(ErrHookOutsideRender)
	}

	if t.current != nil {
		if t.currentHook == nil {
			current, _ = t.current.memoizedState.(*hook)
		} else {
			current = t.currentHook.next
		}
		if current == nil {
			panic(hookOrderError(t.fiber, "rendered more hooks than during the previous render"))
		}
		if current.kind != kind {
			panic(hookOrderError(t.fiber, "hook kind changed between renders"))
		}
		t.currentHook = current
		next = current.clone()
	} else {
		next = &hook{kind: kind}
	}

	if t.wipHook == nil {
		t.fiber.memoizedState = next
	} else {
		t.wipHook.next = next
	}
	t.wipHook = next

	return current, next
}

func (t *Tracker) hasRemainingHooks() bool {
	if t.current == nil {
		return false
	}
	if t.currentHook == nil {
		h, _ := t.current.memoizedState.(*hook)
		return h != nil
	}
	return t.currentHook.next != nil
}

func (t *Tracker) pushEffect(tag effectTag, create func() func(), inst *effectInstance, deps []any) *effect {
	e := &effect{tag: tag, create: create, inst: inst, deps: deps}

	q, ok := t.fiber.updateQueue.(*functionQueue)
	if !ok {
		q = &functionQueue{}
		t.fiber.updateQueue = q
	}
	q.effects = append(q.effects, e)

	return e
}
