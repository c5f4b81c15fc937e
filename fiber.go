// Package fiber renders trees of elements into a host incrementally. Work is
// split into units that a cooperative scheduler runs in short slices, so
// urgent updates can interrupt a large render and the host stays responsive.
package fiber

import (
	"github.com/AnatoleLucet/fiber/internal"
)

type (
	Element    = internal.Element
	Props      = internal.Props
	Component  = internal.Component
	Hooks      = internal.Hooks
	RefObject  = internal.RefObject
	HostConfig = internal.HostConfig
	PropChange = internal.PropChange

	Lane  = internal.Lane
	Lanes = internal.Lanes

	Profiler = internal.Profiler
	MarkKind = internal.MarkKind
	Mark     = internal.Mark
	Recorder = internal.Recorder

	RenderError = internal.RenderError
	CommitError = internal.CommitError

	// Wakeable is anything a render can suspend on, see Resource.
	Wakeable = internal.Wakeable
)

const (
	NoLane      = internal.NoLane
	SyncLane    = internal.SyncLane
	InputLane   = internal.InputContinuousLane
	DefaultLane = internal.DefaultLane
	IdleLane    = internal.IdleLane

	BuildStarted   = internal.BuildStarted
	BuildYielded   = internal.BuildYielded
	BuildResumed   = internal.BuildResumed
	BuildDiscarded = internal.BuildDiscarded
	CommitStarted  = internal.CommitStarted
	CommitStopped  = internal.CommitStopped
)

var (
	ErrHookOrder         = internal.ErrHookOrder
	ErrHookOutsideRender = internal.ErrHookOutsideRender
	ErrRootUnmounted     = internal.ErrRootUnmounted
	ErrTooManyUpdates    = internal.ErrTooManyUpdates
	ErrInvalidElement    = internal.ErrInvalidElement
)

// H creates a host element.
func H(typ string, props Props, children ...*Element) *Element {
	return &Element{Type: typ, Props: props, Children: children}
}

// Text creates a text node.
func Text(text string) *Element {
	return &Element{Type: internal.TextElement, Text: text}
}

// Fragment groups children without a host node of its own.
func Fragment(children ...*Element) *Element {
	return &Element{Type: internal.FragmentElement, Children: children}
}

// NewComponent declares a function component. The same *Component must be
// reused across renders for its state to survive.
func NewComponent(name string, render func(h *Hooks, props Props, children []*Element) *Element) *Component {
	return &Component{Name: name, Render: render}
}

// C creates an element rendering c.
func C(c *Component, props Props, children ...*Element) *Element {
	return &Element{Type: c, Props: props, Children: children}
}

// Keyed sets the key of el, used to match it across renders among its
// siblings, and returns it.
func Keyed(key string, el *Element) *Element {
	el.Key = key
	return el
}

// WithRef attaches ref to a host element; it points at the host instance
// while the element is mounted.
func WithRef(ref *RefObject, el *Element) *Element {
	el.Ref = ref
	return el
}

// Suspense renders fallback in place of children while any of them waits
// on an unsettled resource.
func Suspense(fallback *Element, children ...*Element) *Element {
	return &Element{Type: internal.SuspenseElement, Fallback: fallback, Children: children}
}

// ErrorBoundary renders fallback in place of children once one of them
// panicked during a render. Calling reset renders children again.
func ErrorBoundary(fallback func(err error, reset func()) *Element, children ...*Element) *Element {
	return &Element{Type: internal.ErrorBoundaryElement, ErrorFallback: fallback, Children: children}
}

// NewRecorder returns a Profiler keeping every mark in memory.
func NewRecorder() *Recorder {
	return &Recorder{}
}
