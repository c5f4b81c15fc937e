package internal

import "fmt"

// Props are the attributes of a host element, or the input of a component.
type Props map[string]any

// ElementKind tags the element types that are not host tags or components.
type ElementKind int

const (
	TextElement ElementKind = iota + 1
	FragmentElement
	SuspenseElement
	ErrorBoundaryElement
)

// Element is an immutable description of a node. Type is a host tag
// (string), a *Component or an ElementKind.
type Element struct {
	Type     any
	Key      string
	Props    Props
	Children []*Element
	Ref      *RefObject

	// TextElement only
	Text string

	// SuspenseElement only
	Fallback *Element

	// ErrorBoundaryElement only
	ErrorFallback func(err error, reset func()) *Element
}

// Component renders an element from its props. Render must be pure apart
// from hook calls.
type Component struct {
	Name   string
	Render func(h *Hooks, props Props, children []*Element) *Element
}

func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("<%s key=%q>", typeName(e.Type), e.Key)
}

func typeName(t any) string {
	switch t := t.(type) {
	case string:
		return t
	case *Component:
		if t.Name != "" {
			return t.Name
		}
		return "Component"
	case ElementKind:
		switch t {
		case TextElement:
			return "#text"
		case FragmentElement:
			return "Fragment"
		case SuspenseElement:
			return "Suspense"
		case ErrorBoundaryElement:
			return "ErrorBoundary"
		}
	}
	return fmt.Sprintf("%T", t)
}

func tagForType(t any) WorkTag {
	switch t := t.(type) {
	case string:
		return HostComponent
	case *Component:
		return FunctionComponent
	case ElementKind:
		switch t {
		case TextElement:
			return HostText
		case FragmentElement:
			return Fragment
		case SuspenseElement:
			return SuspenseComponent
		case ErrorBoundaryElement:
			return ErrorBoundaryComponent
		}
	}
	panic(fmt.Errorf("%w: %T", ErrInvalidElement, t))
}
