package internal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber/internal"
	"github.com/AnatoleLucet/fiber/memhost"
	"github.com/AnatoleLucet/fiber/scheduler"
)

type harness struct {
	t *testing.T

	clock     *scheduler.ManualClock
	host      *scheduler.ManualHost
	sched     *scheduler.Scheduler
	mem       *memhost.Host
	container *memhost.Node
	profiler  *internal.Recorder

	rt   *internal.Runtime
	root *internal.FiberRoot

	taskErrs []error
	uncaught []error
	caught   []error
}

func newHarness(t *testing.T, schedOpts ...scheduler.Option) *harness {
	h := &harness{
		t:         t,
		clock:     scheduler.NewManualClock(),
		host:      scheduler.NewManualHost(),
		mem:       memhost.New(),
		container: memhost.NewContainer(),
		profiler:  &internal.Recorder{},
	}

	opts := append([]scheduler.Option{
		scheduler.WithClock(h.clock),
		scheduler.WithHost(h.host),
		scheduler.WithErrorHandler(func(err error) { h.taskErrs = append(h.taskErrs, err) }),
	}, schedOpts...)
	h.sched = scheduler.New(opts...)

	h.rt = internal.NewRuntime(h.mem,
		internal.WithScheduler(h.sched),
		internal.WithProfiler(h.profiler),
		internal.WithUncaughtErrorHandler(func(err error) { h.uncaught = append(h.uncaught, err) }),
		internal.WithCaughtErrorHandler(func(err error) { h.caught = append(h.caught, err) }),
	)
	h.root = h.rt.CreateRoot(h.container)

	return h
}

// render schedules el at the lane of the caller context.
func (h *harness) render(el *internal.Element) {
	_, err := h.rt.UpdateContainer(h.root, el)
	require.NoError(h.t, err)
}

// renderSync renders and commits el before returning.
func (h *harness) renderSync(el *internal.Element) error {
	return h.rt.FlushSync(func() { h.render(el) })
}

// flush runs every posted func and task.
func (h *harness) flush() {
	h.host.RunUntilIdle()
}

func (h *harness) tree() string {
	return h.container.String()
}

func el(typ string, props internal.Props, children ...*internal.Element) *internal.Element {
	return &internal.Element{Type: typ, Props: props, Children: children}
}

func text(s string) *internal.Element {
	return &internal.Element{Type: internal.TextElement, Text: s}
}

func keyed(key string, e *internal.Element) *internal.Element {
	e.Key = key
	return e
}

func fragment(children ...*internal.Element) *internal.Element {
	return &internal.Element{Type: internal.FragmentElement, Children: children}
}

func component(name string, render func(h *internal.Hooks, props internal.Props) *internal.Element) *internal.Component {
	return &internal.Component{
		Name: name,
		Render: func(h *internal.Hooks, props internal.Props, _ []*internal.Element) *internal.Element {
			return render(h, props)
		},
	}
}

func use(c *internal.Component, props internal.Props) *internal.Element {
	return &internal.Element{Type: c, Props: props}
}

func suspense(fallback *internal.Element, children ...*internal.Element) *internal.Element {
	return &internal.Element{Type: internal.SuspenseElement, Fallback: fallback, Children: children}
}

func boundary(fallback func(err error, reset func()) *internal.Element, children ...*internal.Element) *internal.Element {
	return &internal.Element{Type: internal.ErrorBoundaryElement, ErrorFallback: fallback, Children: children}
}

func list(ids ...string) *internal.Element {
	items := make([]*internal.Element, len(ids))
	for i, id := range ids {
		items[i] = keyed(id, el("li", internal.Props{"id": id}))
	}
	return el("ul", nil, items...)
}
