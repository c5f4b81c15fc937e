package internal

// completeWork creates or diffs the host instance of wip once all of its
// children are complete.
func (r *Runtime) completeWork(current, wip *Fiber) {
	el := wip.pendingProps

	switch wip.tag {
	case HostComponent:
		if current != nil && wip.stateNode != nil {
			if current.memoizedProps != el {
				if diff := diffProps(current.memoizedProps.Props, el.Props); len(diff) > 0 {
					wip.updateQueue = diff
					wip.flags |= Update
				}
			}
		} else {
			inst := r.host.CreateInstance(wip.typ.(string), el.Props)
			r.appendAllChildren(inst, wip)
			wip.stateNode = inst
		}

	case HostText:
		if current != nil && wip.stateNode != nil {
			if current.memoizedProps.Text != el.Text {
				wip.flags |= Update
			}
		} else {
			wip.stateNode = r.host.CreateTextInstance(el.Text)
		}

	case SuspenseComponent:
		if set := wakeablesOf(wip); set != nil && set.Cardinality() > 0 {
			// retry listeners are attached by the commit
			wip.flags |= Update
		}
	}

	bubbleProperties(wip)
}

// appendAllChildren attaches the topmost host nodes below wip to inst.
func (r *Runtime) appendAllChildren(inst any, wip *Fiber) {
	node := wip.child
	for node != nil {
		if node.tag == HostComponent || node.tag == HostText {
			r.host.AppendInitialChild(inst, node.stateNode)
		} else if node.child != nil {
			node.child.parent = node
			node = node.child
			continue
		}

		if node == wip {
			return
		}
		for node.sibling == nil {
			if node.parent == nil || node.parent == wip {
				return
			}
			node = node.parent
		}
		node.sibling.parent = node.parent
		node = node.sibling
	}
}

// bubbleProperties gathers the lanes and flags of the children of completed.
// Children cloned by a bailout carry flags of an old commit: only their
// static flags are kept.
func bubbleProperties(completed *Fiber) {
	didBailout := completed.alternate != nil && completed.alternate.child == completed.child

	var childLanes Lanes
	var subtreeFlags Flags

	for child := completed.child; child != nil; child = child.sibling {
		childLanes |= child.lanes | child.childLanes

		if didBailout {
			subtreeFlags |= child.subtreeFlags & StaticMask
			subtreeFlags |= child.flags & StaticMask
		} else {
			subtreeFlags |= child.subtreeFlags
			subtreeFlags |= child.flags
			child.parent = completed
		}
	}

	completed.subtreeFlags |= subtreeFlags
	completed.childLanes = childLanes
}

// unwindWork runs for an incomplete fiber on the way up from a throw. A
// boundary that should capture becomes the next unit of work.
func unwindWork(wip *Fiber) *Fiber {
	switch wip.tag {
	case HostRoot, SuspenseComponent, ErrorBoundaryComponent:
		if wip.flags&ShouldCapture != 0 {
			wip.flags = wip.flags&^ShouldCapture | DidCapture
			return wip
		}
	}
	return nil
}

// completeUnitOfWork completes unit and its ancestors until one of them has
// a sibling left to begin. Incomplete fibers are unwound instead, without
// visiting their siblings.
func (r *Runtime) completeUnitOfWork(unit *Fiber) {
	completed := unit

	for completed != nil {
		r.wip = completed
		current := completed.alternate
		parent := completed.parent

		if completed.flags&Incomplete == 0 {
			r.completeWork(current, completed)
		} else {
			if next := unwindWork(completed); next != nil {
				next.flags &^= Incomplete
				r.wip = next
				return
			}

			if parent == nil {
				// nothing captured: the root stays as it is
				r.exitStatus = rootDidNotComplete
				r.wip = nil
				return
			}

			parent.flags |= Incomplete
			parent.subtreeFlags = NoFlags
			parent.deletions = nil

			completed = parent
			continue
		}

		if sibling := completed.sibling; sibling != nil {
			r.wip = sibling
			return
		}

		completed = parent
	}

	r.wip = nil
	if r.exitStatus == rootInProgress {
		r.exitStatus = rootCompleted
	}
}
