package internal_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber/internal"
	"github.com/AnatoleLucet/fiber/memhost"
	"github.com/AnatoleLucet/fiber/scheduler"
)

// wideList is a tree of exactly n fibers: the root, a ul and n-2 items.
func wideList(n int) *internal.Element {
	ids := make([]string, n-2)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	return list(ids...)
}

func TestTimeSlicing(t *testing.T) {
	t.Run("yields every five units and commits an identical tree", func(t *testing.T) {
		probes := 0
		h := newHarness(t, scheduler.WithYieldFunc(func() bool {
			probes++
			return probes%6 == 0
		}))

		h.render(wideList(1000))
		h.flush()

		assert.Equal(t, 200, h.host.Slices())
		assert.Equal(t, 199, h.profiler.Count(internal.BuildResumed))
		assert.Equal(t, 199, h.profiler.Count(internal.BuildYielded))
		assert.Equal(t, 1, h.profiler.Count(internal.CommitStopped))

		sync := newHarness(t)
		require.NoError(t, sync.renderSync(wideList(1000)))

		assert.Equal(t, sync.container.Fingerprint(), h.container.Fingerprint())
	})

	t.Run("a yielded build leaves the host tree untouched", func(t *testing.T) {
		yield := false
		h := newHarness(t, scheduler.WithYieldFunc(func() bool { return yield }))

		require.NoError(t, h.renderSync(list("a")))
		before := h.tree()
		h.mem.Reset()

		yield = true
		h.render(list("a", "b", "c"))
		h.host.Tick()

		assert.Equal(t, before, h.tree())
		assert.Equal(t, 0, h.mem.Mutations())
		assert.True(t, h.host.HasPendingCallback())

		yield = false
		h.flush()
		assert.Equal(t, `<ul><li id="a"></li><li id="b"></li><li id="c"></li></ul>`, h.tree())
	})

	t.Run("sync work preempts a yielded build", func(t *testing.T) {
		yield := false
		h := newHarness(t, scheduler.WithYieldFunc(func() bool { return yield }))
		require.NoError(t, h.renderSync(list("a")))

		yield = true
		h.render(list("a", "b"))
		h.host.Tick()
		require.Equal(t, 1, h.profiler.Count(internal.BuildYielded))

		yield = false
		require.NoError(t, h.renderSync(list("z")))

		assert.Equal(t, `<ul><li id="z"></li></ul>`, h.tree())
		assert.Equal(t, 1, h.profiler.Count(internal.BuildDiscarded))

		// the default update is rebased under the sync one, which stays last
		h.flush()
		assert.Equal(t, `<ul><li id="z"></li></ul>`, h.tree())
		assert.Equal(t, 3, h.profiler.Count(internal.CommitStopped))
	})

	t.Run("a discarded transition is rebuilt on top of the urgent update", func(t *testing.T) {
		yield := false
		h := newHarness(t, scheduler.WithYieldFunc(func() bool { return yield }))

		var commits []string
		var push func(string)
		app := component("App", func(hk *internal.Hooks, _ internal.Props) *internal.Element {
			items, set := hk.State([]string{})
			push = func(s string) {
				set(func(prev any) any { return append(append([]string(nil), prev.([]string)...), s) })
			}

			label := "[" + strings.Join(items.([]string), " ") + "]"
			hk.LayoutEffect(func() func() {
				commits = append(commits, label)
				return nil
			}, nil)
			return text(label)
		})
		require.NoError(t, h.renderSync(use(app, nil)))

		yield = true
		h.rt.StartTransition(func() { push("a") })
		h.host.Tick()
		require.Equal(t, "[]", h.tree())

		yield = false
		push("b")
		h.flush()

		assert.Equal(t, []string{"[]", "[b]", "[a b]"}, commits)
		assert.Equal(t, "[a b]", h.tree())
		assert.Equal(t, 1, h.profiler.Count(internal.BuildDiscarded))
	})

	t.Run("an expired lane renders without yielding", func(t *testing.T) {
		h := newHarness(t, scheduler.WithYieldFunc(func() bool { return true }))

		h.render(list("a", "b"))
		h.host.Tick()
		h.host.Tick()
		require.Equal(t, ``, h.tree())

		h.clock.Advance(6 * time.Second)
		h.host.Tick()

		assert.Equal(t, `<ul><li id="a"></li><li id="b"></li></ul>`, h.tree())
	})

	t.Run("idle work waits for everything else", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(el("div", nil)))

		var setLow, setHigh func(any)
		low := component("Low", func(hk *internal.Hooks, _ internal.Props) *internal.Element {
			v, set := hk.State("low")
			setLow = set
			return text(v.(string))
		})
		high := component("High", func(hk *internal.Hooks, _ internal.Props) *internal.Element {
			v, set := hk.State("high")
			setHigh = set
			return text(v.(string))
		})
		require.NoError(t, h.renderSync(el("div", nil, use(low, nil), use(high, nil))))

		h.rt.WithLane(internal.IdleLane, func() { setLow("LOW") })
		setHigh("HIGH")

		h.host.Tick()
		assert.Equal(t, `<div>lowHIGH</div>`, h.tree())

		h.flush()
		assert.Equal(t, `<div>LOWHIGH</div>`, h.tree())
	})
}

type panickingProfiler struct{}

func (panickingProfiler) Mark(internal.MarkKind, internal.Lanes, time.Duration) {
	panic("profiler down")
}

func TestProfiler(t *testing.T) {
	t.Run("records build and commit marks", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.renderSync(list("a")))

		var kinds []internal.MarkKind
		for _, m := range h.profiler.Marks() {
			kinds = append(kinds, m.Kind)
			assert.Equal(t, internal.SyncLane, m.Lanes)
		}
		assert.Equal(t, []internal.MarkKind{internal.BuildStarted, internal.CommitStarted, internal.CommitStopped}, kinds)
	})

	t.Run("a panicking profiler is logged and ignored", func(t *testing.T) {
		var buf bytes.Buffer
		logger := stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(&buf), stumpy.WithTimeField(``)),
			stumpy.L.WithLevel(logiface.LevelWarning),
		).Logger()

		host := scheduler.NewManualHost()
		rt := internal.NewRuntime(memhost.New(),
			internal.WithScheduler(scheduler.New(scheduler.WithHost(host), scheduler.WithClock(scheduler.NewManualClock()))),
			internal.WithProfiler(panickingProfiler{}),
			internal.WithLogger(logger),
		)
		container := memhost.NewContainer()
		root := rt.CreateRoot(container)

		require.NoError(t, rt.FlushSync(func() {
			_, err := rt.UpdateContainer(root, list("a"))
			require.NoError(t, err)
		}))

		assert.Equal(t, `<ul><li id="a"></li></ul>`, container.String())
		assert.Contains(t, buf.String(), `"msg":"profiler panicked"`)
		assert.Contains(t, buf.String(), `"mark":"commit-stopped"`)
	})
}
