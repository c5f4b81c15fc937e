package internal

// HostConfig is the render target. The runtime calls it from the host thread
// only, and only mutates attached instances during a commit.
type HostConfig interface {
	CreateInstance(typ string, props Props) any
	CreateTextInstance(text string) any

	// AppendInitialChild builds a detached subtree before it is placed.
	AppendInitialChild(parent, child any)

	// parent is either an instance or the root container
	AppendChild(parent, child any)
	InsertBefore(parent, child, before any)
	RemoveChild(parent, child any)

	CommitUpdate(instance any, typ string, diff []PropChange)
	CommitTextUpdate(instance any, oldText, newText string)

	// ClearContainer drops every child of a container whose tree is
	// remounted after a failed commit.
	ClearContainer(container any)

	PrepareForCommit(container any)
	ResetAfterCommit(container any)
}
