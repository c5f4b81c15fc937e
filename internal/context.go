package internal

type contextFlags uint8

const (
	batchedContext contextFlags = 1 << iota
	renderContext
	commitContext
)

// ExecutionContext records what the runtime is doing on the host thread.
type ExecutionContext struct {
	flags contextFlags
}

func NewContext() *ExecutionContext {
	return &ExecutionContext{}
}

// RunWith runs fn with flag set, restoring the previous flags afterwards.
func (ctx *ExecutionContext) RunWith(flag contextFlags, fn func()) {
	prev := ctx.flags
	ctx.flags |= flag
	defer func() { ctx.flags = prev }()

	fn()
}

func (ctx *ExecutionContext) Is(flag contextFlags) bool {
	return ctx.flags&flag != 0
}

// Working reports whether a build or a commit is on the stack.
func (ctx *ExecutionContext) Working() bool {
	return ctx.Is(renderContext | commitContext)
}
