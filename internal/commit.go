package internal

import (
	"errors"
	"fmt"

	"github.com/AnatoleLucet/fiber/scheduler"
)

// committer applies one finished tree. Failures are collected per node so
// that the rest of the stage still runs.
type committer struct {
	r    *Runtime
	host HostConfig
	root *FiberRoot

	// the container was cleared for a remount, nothing left to remove
	cleared bool

	errs []error
}

func (c *committer) guard(f *Fiber, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			c.errs = append(c.errs, fmt.Errorf("%s: %w", f.name(), toError(v)))
		}
	}()

	fn()
}

func (c *committer) err() error {
	err := errors.Join(c.errs...)
	c.errs = nil
	return err
}

// commitRoot applies root.finishedWork: mutations, the current pointer swap,
// then layout effects. Passive effects are left to a separate task.
func (r *Runtime) commitRoot(root *FiberRoot) error {
	var errs []error

	for r.pendingPassive != nil {
		if _, err := r.flushPassiveEffects(); err != nil {
			errs = append(errs, err)
		}
	}

	finished, lanes := root.finishedWork, root.finishedLanes
	if finished == nil {
		return errors.Join(errs...)
	}

	root.finishedWork = nil
	root.finishedLanes = NoLanes
	if root.callbackNode != nil {
		// a commit always gets a fresh task for what is left
		r.sched.CancelTask(root.callbackNode)
	}
	root.callbackNode = nil
	root.callbackPriority = NoLane
	root.callbackSchedPriority = scheduler.NoPriority

	remaining := finished.lanes | finished.childLanes | r.interleavedLanes
	r.interleavedLanes = NoLanes
	r.markRootFinished(root, remaining)

	r.logger.Debug().
		Str("lanes", lanes.String()).
		Str("remaining", remaining.String()).
		Log("commit started")
	r.mark(CommitStarted, lanes)

	hasPassive := (finished.flags|finished.subtreeFlags)&PassiveMask != 0
	if hasPassive {
		r.schedulePassiveEffects()
	}

	c := &committer{r: r, host: r.host, root: root}
	mutationFailed := false

	r.ctx.RunWith(commitContext, func() {
		c.guard(finished, func() { r.host.PrepareForCommit(root.container) })
		c.mutationEffects(finished)
		c.guard(finished, func() { r.host.ResetAfterCommit(root.container) })

		if err := c.err(); err != nil {
			mutationFailed = true
			root.remount = true
			errs = append(errs, &CommitError{Stage: "mutation", Err: err})
		}

		root.current = finished
		if mutationFailed {
			// the host tree is unknown: no effect of this commit runs, the
			// remount mounts them again
			return
		}

		// updates from layout effects are flushed before the host paints
		r.WithLane(SyncLane, func() { c.layoutEffects(finished) })
		if err := c.err(); err != nil {
			errs = append(errs, &CommitError{Stage: "layout", Err: err})
		}
	})

	if root.pendingLanes&SyncLane != 0 {
		if root == r.nestedRoot {
			r.nestedUpdates++
		} else {
			r.nestedUpdates = 0
			r.nestedRoot = root
		}
	} else {
		r.nestedUpdates = 0
	}

	r.sched.RequestPaint()

	switch {
	case hasPassive && mutationFailed:
		if r.passiveTask != nil {
			r.sched.CancelTask(r.passiveTask)
			r.passiveTask = nil
		}
	case hasPassive:
		r.pendingPassive = finished
		r.pendingPassiveRoot = root
	}

	r.mark(CommitStopped, lanes)
	r.ensureRootIsScheduled(root)

	return errors.Join(errs...)
}

func (c *committer) mutationEffects(f *Fiber) {
	if f.tag == HostRoot && f.flags&Snapshot != 0 {
		c.guard(f, func() { c.host.ClearContainer(c.root.container) })
		c.cleared = true
		c.root.remount = false
	}

	c.traverseMutationEffects(f)
	c.guard(f, func() { c.reconciliationEffects(f) })

	if f.flags&(Update|Ref) == 0 {
		return
	}

	switch f.tag {
	case FunctionComponent:
		if f.flags&Update != 0 {
			c.unmountEffects(f, hookInsertion|hookHasEffect)
			c.mountEffects(f, hookInsertion|hookHasEffect)
			c.unmountEffects(f, hookLayout|hookHasEffect)
		}

	case HostComponent:
		if f.flags&Ref != 0 && f.alternate != nil {
			detachRef(f.alternate)
		}
		if f.flags&Update != 0 {
			diff, _ := f.updateQueue.([]PropChange)
			f.updateQueue = nil
			if len(diff) > 0 {
				c.guard(f, func() { c.host.CommitUpdate(f.stateNode, f.typ.(string), diff) })
			}
		}

	case HostText:
		if f.flags&Update != 0 {
			old := ""
			if f.alternate != nil {
				old = f.alternate.memoizedProps.Text
			}
			c.guard(f, func() { c.host.CommitTextUpdate(f.stateNode, old, f.memoizedProps.Text) })
		}

	case SuspenseComponent:
		if f.flags&Update != 0 {
			c.r.attachRetryListeners(f)
		}
	}
}

func (c *committer) traverseMutationEffects(parent *Fiber) {
	for _, deleted := range parent.deletions {
		c.guard(deleted, func() { c.commitDeletion(deleted) })
	}

	if parent.subtreeFlags&MutationMask == 0 {
		return
	}
	for child := parent.child; child != nil; child = child.sibling {
		c.mutationEffects(child)
	}
}

func (c *committer) reconciliationEffects(f *Fiber) {
	if f.flags&Placement == 0 {
		return
	}
	f.flags &^= Placement

	c.commitPlacement(f)
}

// hostParent returns the instance or container the host nodes of f's subtree
// are attached to.
func (c *committer) hostParent(f *Fiber) (*Fiber, any) {
	for node := f.parent; node != nil; node = node.parent {
		switch node.tag {
		case HostComponent:
			return node, node.stateNode
		case HostRoot:
			return node, c.root.container
		}
	}
	panic("fiber: node has no host parent")
}

func (c *committer) commitPlacement(f *Fiber) {
	_, parent := c.hostParent(f)
	before := getHostSibling(f)
	c.insertOrAppend(f, before, parent)
}

func (c *committer) insertOrAppend(node *Fiber, before, parent any) {
	if node.tag == HostComponent || node.tag == HostText {
		if before != nil {
			c.host.InsertBefore(parent, node.stateNode, before)
		} else {
			c.host.AppendChild(parent, node.stateNode)
		}
		return
	}

	for child := node.child; child != nil; child = child.sibling {
		c.insertOrAppend(child, before, parent)
	}
}

// getHostSibling finds the first host node after f, in the same host parent,
// that is already in place. Nodes being placed in this commit are skipped.
func getHostSibling(f *Fiber) any {
	node := f

siblings:
	for {
		for node.sibling == nil {
			if node.parent == nil || node.parent.isHostParent() {
				return nil
			}
			node = node.parent
		}
		node.sibling.parent = node.parent
		node = node.sibling

		for node.tag != HostComponent && node.tag != HostText {
			if node.flags&Placement != 0 || node.child == nil {
				continue siblings
			}
			node.child.parent = node
			node = node.child
		}

		if node.flags&Placement == 0 {
			return node.stateNode
		}
	}
}

func (c *committer) commitDeletion(deleted *Fiber) {
	hostFiber, hostParent := c.hostParent(deleted)
	remove := !(c.cleared && hostFiber.tag == HostRoot)

	c.deletionEffects(deleted, hostParent, remove)

	deleted.parent = nil
	if deleted.alternate != nil {
		deleted.alternate.parent = nil
	}
}

func (c *committer) deletionEffects(f *Fiber, hostParent any, remove bool) {
	switch f.tag {
	case HostComponent:
		detachRef(f)
		c.deletionChildren(f, nil, false)
		if remove {
			c.guard(f, func() { c.host.RemoveChild(hostParent, f.stateNode) })
		}

	case HostText:
		if remove {
			c.guard(f, func() { c.host.RemoveChild(hostParent, f.stateNode) })
		}

	case FunctionComponent:
		c.unmountEffects(f, hookInsertion)
		c.unmountEffects(f, hookLayout)
		c.deletionChildren(f, hostParent, remove)

	default:
		c.deletionChildren(f, hostParent, remove)
	}
}

func (c *committer) deletionChildren(parent *Fiber, hostParent any, remove bool) {
	for child := parent.child; child != nil; child = child.sibling {
		c.deletionEffects(child, hostParent, remove)
	}
}

func (c *committer) layoutEffects(f *Fiber) {
	if f.subtreeFlags&LayoutMask != 0 {
		for child := f.child; child != nil; child = child.sibling {
			c.layoutEffects(child)
		}
	}

	if f.flags&LayoutMask == 0 {
		return
	}

	switch f.tag {
	case FunctionComponent:
		if f.flags&Update != 0 {
			c.mountEffects(f, hookLayout|hookHasEffect)
		}

	case HostComponent:
		if f.flags&Ref != 0 {
			attachRef(f)
		}

	case ErrorBoundaryComponent:
		if captured, ok := f.updateQueue.(*capturedError); ok && f.flags&Callback != 0 {
			f.updateQueue = nil
			c.guard(f, func() { c.r.reportCaught(captured.err) })
		}

	case HostRoot:
		if captured, ok := f.updateQueue.(*capturedError); ok && f.flags&Callback != 0 {
			f.updateQueue = nil
			c.guard(f, func() { c.r.reportUncaught(captured.err) })
		}
	}
}
