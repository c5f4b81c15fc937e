package internal

// WorkTag is the kind of a fiber. The set is closed: every switch over it
// handles all of them.
type WorkTag int

const (
	HostRoot WorkTag = iota
	HostComponent
	HostText
	FunctionComponent
	Fragment
	SuspenseComponent
	ErrorBoundaryComponent
)

func (t WorkTag) String() string {
	switch t {
	case HostRoot:
		return "HostRoot"
	case HostComponent:
		return "HostComponent"
	case HostText:
		return "HostText"
	case FunctionComponent:
		return "FunctionComponent"
	case Fragment:
		return "Fragment"
	case SuspenseComponent:
		return "Suspense"
	case ErrorBoundaryComponent:
		return "ErrorBoundary"
	}
	return "Unknown"
}

type Flags uint32

const (
	NoFlags   Flags = 0
	Placement Flags = 1 << (iota - 1)
	Update
	ChildDeletion
	Callback
	DidCapture
	Ref
	Snapshot
	Passive
	Incomplete
	ShouldCapture

	// static flags survive cloning and describe the subtree, not one commit
	LayoutStatic
	PassiveStatic
)

const (
	MutationMask = Placement | Update | ChildDeletion | Ref | Snapshot
	LayoutMask   = Update | Callback | Ref
	PassiveMask  = Passive | ChildDeletion
	StaticMask   = LayoutStatic | PassiveStatic
)

// Fiber is one node of a work tree. Every mounted node has two fibers, the
// committed one and its work-in-progress alternate, reused across builds.
type Fiber struct {
	tag WorkTag
	key string
	typ any

	pendingProps  *Element
	memoizedProps *Element

	// host instance, *FiberRoot for the root, retry cache for suspense
	stateNode any

	// hook list head, root state hook, boundary state
	memoizedState any

	// prop diff, effect list, captured error or wakeables, depending on tag
	updateQueue any

	ref *RefObject

	parent  *Fiber
	child   *Fiber
	sibling *Fiber
	index   int

	flags        Flags
	subtreeFlags Flags
	deletions    []*Fiber

	lanes      Lanes
	childLanes Lanes

	alternate *Fiber
}

func newFiber(tag WorkTag, props *Element, key string) *Fiber {
	return &Fiber{
		tag:          tag,
		key:          key,
		pendingProps: props,
	}
}

func createFiberFromElement(el *Element) *Fiber {
	f := newFiber(tagForType(el.Type), el, el.Key)
	f.typ = el.Type
	f.ref = el.Ref
	return f
}

// createWorkInProgress returns the alternate of current, prepared for a new
// build with the given props. The alternate is allocated once and recycled.
func createWorkInProgress(current *Fiber, props *Element) *Fiber {
	wip := current.alternate
	if wip == nil {
		wip = newFiber(current.tag, props, current.key)
		wip.typ = current.typ
		wip.stateNode = current.stateNode
		wip.alternate = current
		current.alternate = wip
	} else {
		wip.pendingProps = props
		wip.subtreeFlags = NoFlags
		wip.deletions = nil
	}

	wip.flags = current.flags & StaticMask
	wip.lanes = current.lanes
	wip.childLanes = current.childLanes
	wip.child = current.child
	wip.memoizedProps = current.memoizedProps
	wip.memoizedState = current.memoizedState
	wip.updateQueue = current.updateQueue
	wip.sibling = current.sibling
	wip.index = current.index
	wip.ref = current.ref
	if props != nil {
		wip.ref = props.Ref
	}

	return wip
}

func (f *Fiber) Tag() WorkTag    { return f.tag }
func (f *Fiber) Key() string     { return f.key }
func (f *Fiber) Child() *Fiber   { return f.child }
func (f *Fiber) Sibling() *Fiber { return f.sibling }
func (f *Fiber) Parent() *Fiber  { return f.parent }
func (f *Fiber) StateNode() any  { return f.stateNode }

func (f *Fiber) isHostParent() bool {
	return f.tag == HostComponent || f.tag == HostRoot
}

func (f *Fiber) name() string {
	return typeName(f.typ)
}
