package internal

import "github.com/AnatoleLucet/fiber/scheduler"

func (c *committer) unmountEffects(f *Fiber, tag effectTag) {
	for _, e := range effectsOf(f) {
		if e.tag&tag != tag {
			continue
		}
		if destroy := e.inst.destroy; destroy != nil {
			e.inst.destroy = nil
			c.guard(f, destroy)
		}
	}
}

func (c *committer) mountEffects(f *Fiber, tag effectTag) {
	for _, e := range effectsOf(f) {
		if e.tag&tag != tag {
			continue
		}
		c.guard(f, func() { e.inst.destroy = e.create() })
	}
}

func attachRef(f *Fiber) {
	if f.ref != nil {
		f.ref.Current = f.stateNode
	}
}

func detachRef(f *Fiber) {
	if f.ref != nil {
		f.ref.Current = nil
	}
}

func (r *Runtime) schedulePassiveEffects() {
	if r.passiveTask != nil {
		return
	}

	r.passiveTask = r.sched.ScheduleTask(scheduler.NormalPriority, func(bool, scheduler.YieldFunc) scheduler.Callback {
		r.passiveTask = nil
		if _, err := r.flushPassiveEffects(); err != nil {
			panic(err)
		}
		return nil
	})
}

// flushPassiveEffects runs the passive effects of the last commit, if not
// done yet: every cleanup first, including those of deleted nodes, then
// every effect.
func (r *Runtime) flushPassiveEffects() (bool, error) {
	finished := r.pendingPassive
	if finished == nil {
		return false, nil
	}

	root := r.pendingPassiveRoot
	r.pendingPassive = nil
	r.pendingPassiveRoot = nil

	if r.passiveTask != nil {
		r.sched.CancelTask(r.passiveTask)
		r.passiveTask = nil
	}

	c := &committer{r: r, host: r.host, root: root}
	r.ctx.RunWith(commitContext, func() {
		c.passiveUnmountEffects(finished)
		c.passiveMountEffects(finished)
	})

	if err := c.err(); err != nil {
		return true, &CommitError{Stage: "passive", Err: err}
	}
	return true, nil
}

func (c *committer) passiveUnmountEffects(f *Fiber) {
	if f.flags&ChildDeletion != 0 {
		for _, deleted := range f.deletions {
			c.passiveUnmountDeleted(deleted)
		}
	}

	if f.subtreeFlags&PassiveMask != 0 {
		for child := f.child; child != nil; child = child.sibling {
			c.passiveUnmountEffects(child)
		}
	}

	if f.tag == FunctionComponent && f.flags&Passive != 0 {
		c.unmountEffects(f, hookPassive|hookHasEffect)
	}
}

func (c *committer) passiveUnmountDeleted(f *Fiber) {
	if (f.flags|f.subtreeFlags)&PassiveStatic == 0 {
		return
	}

	if f.tag == FunctionComponent {
		c.unmountEffects(f, hookPassive)
	}
	for child := f.child; child != nil; child = child.sibling {
		c.passiveUnmountDeleted(child)
	}
}

func (c *committer) passiveMountEffects(f *Fiber) {
	if f.subtreeFlags&PassiveMask != 0 {
		for child := f.child; child != nil; child = child.sibling {
			c.passiveMountEffects(child)
		}
	}

	if f.tag == FunctionComponent && f.flags&Passive != 0 {
		c.mountEffects(f, hookPassive|hookHasEffect)
	}
}
