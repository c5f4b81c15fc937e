package internal

// childReconciler diffs the current children of a fiber against a new
// element list. Without tracking, as on mount, no placement or deletion is
// recorded: the whole subtree is inserted by its topmost placed ancestor.
type childReconciler struct {
	track bool
}

var (
	reconcileChildUpdates = childReconciler{track: true}
	mountChildFibers      = childReconciler{track: false}
)

func (r *Runtime) reconcileChildren(current, wip *Fiber, children []*Element) {
	if current == nil {
		wip.child = mountChildFibers.reconcile(wip, nil, children)
	} else {
		wip.child = reconcileChildUpdates.reconcile(wip, current.child, children)
	}
}

func forceUnmountCurrentAndReconcile(current, wip *Fiber, children []*Element) {
	wip.child = reconcileChildUpdates.reconcile(wip, current.child, nil)
	wip.child = reconcileChildUpdates.reconcile(wip, nil, children)
}

type childKey struct {
	key   string
	index int
}

func fiberKey(f *Fiber) childKey {
	if f.key != "" {
		return childKey{key: f.key, index: -1}
	}
	return childKey{index: f.index}
}

func elementKey(el *Element, index int) childKey {
	if el.Key != "" {
		return childKey{key: el.Key, index: -1}
	}
	return childKey{index: index}
}

func (c childReconciler) deleteChild(parent, child *Fiber) {
	if !c.track {
		return
	}
	parent.deletions = append(parent.deletions, child)
	parent.flags |= ChildDeletion
}

func (c childReconciler) deleteRemainingChildren(parent, first *Fiber) {
	if !c.track {
		return
	}
	for child := first; child != nil; child = child.sibling {
		c.deleteChild(parent, child)
	}
}

// placeChild records whether f moved. Nodes are only ever moved to the right:
// an old node whose old index is left of the last kept one is placed again.
func (c childReconciler) placeChild(f *Fiber, lastPlacedIndex, newIndex int) int {
	f.index = newIndex
	if !c.track {
		return lastPlacedIndex
	}

	if current := f.alternate; current != nil {
		if current.index < lastPlacedIndex {
			f.flags |= Placement
			return lastPlacedIndex
		}
		return current.index
	}

	f.flags |= Placement
	return lastPlacedIndex
}

func useFiber(f *Fiber, el *Element) *Fiber {
	clone := createWorkInProgress(f, el)
	clone.index = 0
	clone.sibling = nil
	return clone
}

// updateNode reuses current when it renders the same type, else creates a
// new fiber; the caller deletes current in that case.
func (c childReconciler) updateNode(parent, current *Fiber, el *Element) *Fiber {
	var f *Fiber
	if current != nil && current.typ == el.Type {
		f = useFiber(current, el)
	} else {
		f = createFiberFromElement(el)
	}
	f.parent = parent
	return f
}

func (c childReconciler) updateSlot(parent, old *Fiber, el *Element) *Fiber {
	if el == nil {
		return nil
	}

	key := ""
	if old != nil {
		key = old.key
	}
	if el.Key != key {
		return nil
	}

	return c.updateNode(parent, old, el)
}

func (c childReconciler) updateFromMap(existing map[childKey]*Fiber, parent *Fiber, index int, el *Element) *Fiber {
	if el == nil {
		return nil
	}
	return c.updateNode(parent, existing[elementKey(el, index)], el)
}

// reconcile returns the first new child. Children are matched in order while
// keys line up, then through a map of the remaining old children.
func (c childReconciler) reconcile(parent, currentFirst *Fiber, children []*Element) *Fiber {
	var first, prev *Fiber

	link := func(f *Fiber) {
		if prev == nil {
			first = f
		} else {
			prev.sibling = f
		}
		prev = f
	}

	lastPlacedIndex := 0
	old := currentFirst
	i := 0

	for ; old != nil && i < len(children); i++ {
		var nextOld *Fiber
		if old.index > i {
			// a nil hole shifted the old list
			nextOld = old
			old = nil
		} else {
			nextOld = old.sibling
		}

		f := c.updateSlot(parent, old, children[i])
		if f == nil {
			if old == nil {
				old = nextOld
			}
			break
		}

		if c.track && old != nil && f.alternate == nil {
			c.deleteChild(parent, old)
		}

		lastPlacedIndex = c.placeChild(f, lastPlacedIndex, i)
		link(f)
		old = nextOld
	}

	if i == len(children) {
		c.deleteRemainingChildren(parent, old)
		return first
	}

	if old == nil {
		for ; i < len(children); i++ {
			el := children[i]
			if el == nil {
				continue
			}
			f := createFiberFromElement(el)
			f.parent = parent
			lastPlacedIndex = c.placeChild(f, lastPlacedIndex, i)
			link(f)
		}
		return first
	}

	remaining := old
	existing := make(map[childKey]*Fiber)
	for f := remaining; f != nil; f = f.sibling {
		existing[fiberKey(f)] = f
	}

	for ; i < len(children); i++ {
		f := c.updateFromMap(existing, parent, i, children[i])
		if f == nil {
			continue
		}
		if c.track && f.alternate != nil {
			delete(existing, fiberKey(f.alternate))
		}
		lastPlacedIndex = c.placeChild(f, lastPlacedIndex, i)
		link(f)
	}

	if c.track {
		for f := remaining; f != nil; f = f.sibling {
			if existing[fiberKey(f)] == f {
				c.deleteChild(parent, f)
			}
		}
	}

	return first
}
