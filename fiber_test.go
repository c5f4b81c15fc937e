package fiber

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber/memhost"
)

func ExampleRender() {
	greeting := NewComponent("Greeting", func(h *Hooks, props Props, _ []*Element) *Element {
		return H("p", Props{"class": "greeting"}, Text(fmt.Sprint("hello ", props["name"])))
	})

	container, err := Render(C(greeting, Props{"name": "fiber"}))
	if err != nil {
		panic(err)
	}
	fmt.Println(container)

	// Output:
	// <p class="greeting">hello fiber</p>
}

func ExampleUseState() {
	var count State[int]
	counter := NewComponent("Counter", func(h *Hooks, _ Props, _ []*Element) *Element {
		n, set := UseState(h, 1)
		count = set
		return Text(fmt.Sprint(n))
	})

	container, _ := Render(C(counter, nil))
	fmt.Println(container)

	_ = Default().FlushSync(func() {
		count.Update(func(n int) int { return n + 1 })
		count.Update(func(n int) int { return n * 10 })
	})
	fmt.Println(container)

	// Output:
	// 1
	// 20
}

func ExampleUseEffect() {
	app := NewComponent("App", func(h *Hooks, _ Props, _ []*Element) *Element {
		UseLayoutEffect(h, func() func() {
			fmt.Println("layout")
			return nil
		}, Deps())
		UseEffect(h, func() func() {
			fmt.Println("passive")
			return nil
		}, Deps())
		fmt.Println("render")
		return nil
	})

	_, _ = Render(C(app, nil))

	// Output:
	// render
	// layout
	// passive
}

func newTestRuntime(opts ...Option) (*Runtime, *Root, *memhost.Node) {
	rt := New(memhost.New(), opts...)
	container := memhost.NewContainer()
	return rt, rt.CreateRoot(container), container
}

func TestRuntime(t *testing.T) {
	t.Run("renders at default priority until flushed", func(t *testing.T) {
		rt, root, container := newTestRuntime()

		require.NoError(t, root.Render(Text("later")))
		assert.Equal(t, Lanes(DefaultLane), root.PendingLanes())
		assert.Empty(t, container.String())

		rt.RunUntilIdle()
		assert.Equal(t, "later", container.String())
		assert.Equal(t, Lanes(NoLane), root.PendingLanes())
	})

	t.Run("transitions render on a transition lane", func(t *testing.T) {
		rt, root, container := newTestRuntime()

		rt.StartTransition(func() { _ = root.Render(Text("slow")) })
		pending := root.PendingLanes()
		assert.NotZero(t, pending)
		assert.Zero(t, pending&(SyncLane|DefaultLane))

		rt.RunUntilIdle()
		assert.Equal(t, "slow", container.String())
	})

	t.Run("reducers receive typed actions", func(t *testing.T) {
		rt, root, container := newTestRuntime()

		var dispatch func(int)
		sum := NewComponent("Sum", func(h *Hooks, _ Props, _ []*Element) *Element {
			total, d := UseReducer(h, func(total, n int) int { return total + n }, 0)
			dispatch = d
			return Text(fmt.Sprint(total))
		})

		require.NoError(t, rt.FlushSync(func() { _ = root.Render(C(sum, nil)) }))
		require.NoError(t, rt.FlushSync(func() {
			dispatch(2)
			dispatch(3)
		}))

		assert.Equal(t, "5", container.String())
	})

	t.Run("batched sync updates commit once", func(t *testing.T) {
		profiler := NewRecorder()
		rt, root, container := newTestRuntime(WithProfiler(profiler))

		var a, b State[string]
		pair := NewComponent("Pair", func(h *Hooks, _ Props, _ []*Element) *Element {
			x, setA := UseState(h, "a")
			y, setB := UseState(h, "b")
			a, b = setA, setB
			return Text(x + y)
		})
		require.NoError(t, rt.FlushSync(func() { _ = root.Render(C(pair, nil)) }))
		profiler.Reset()

		require.NoError(t, rt.Batch(func() {
			rt.WithLane(SyncLane, func() {
				a.Set("A")
				b.Set("B")
			})
		}))

		assert.Equal(t, "AB", container.String())
		assert.Equal(t, 1, profiler.Count(CommitStopped))
	})

	t.Run("memo recomputes when deps change", func(t *testing.T) {
		rt, root, container := newTestRuntime()

		computed := 0
		square := NewComponent("Square", func(h *Hooks, props Props, _ []*Element) *Element {
			n := props["n"].(int)
			v := UseMemo(h, func() int {
				computed++
				return n * n
			}, Deps(n))
			return Text(fmt.Sprint(v))
		})

		for _, n := range []int{3, 3, 4} {
			require.NoError(t, rt.FlushSync(func() { _ = root.Render(C(square, Props{"n": n})) }))
		}

		assert.Equal(t, "16", container.String())
		assert.Equal(t, 2, computed)
	})

	t.Run("refs point at host nodes", func(t *testing.T) {
		rt, root, _ := newTestRuntime()

		var ref *RefObject
		app := NewComponent("App", func(h *Hooks, _ Props, _ []*Element) *Element {
			ref = UseRef(h, nil)
			return WithRef(ref, H("input", Props{"id": "name"}))
		})

		require.NoError(t, rt.FlushSync(func() { _ = root.Render(C(app, nil)) }))

		node, ok := ref.Current.(*memhost.Node)
		require.True(t, ok)
		assert.Equal(t, "input", node.Type)
	})

	t.Run("an unmounted root rejects renders", func(t *testing.T) {
		rt, root, container := newTestRuntime()
		require.NoError(t, rt.FlushSync(func() { _ = root.Render(H("div", nil)) }))

		require.NoError(t, root.Unmount())

		assert.Empty(t, container.String())
		assert.ErrorIs(t, root.Render(Text("again")), ErrRootUnmounted)
		assert.ErrorIs(t, root.RenderSync(Text("again")), ErrRootUnmounted)
	})

	t.Run("keeps one default runtime per goroutine", func(t *testing.T) {
		rt := Default()
		assert.Same(t, rt, Default())

		other := make(chan *Runtime)
		go func() { other <- Default() }()
		assert.NotSame(t, rt, <-other)
	})
}

func TestResource(t *testing.T) {
	t.Run("suspends until resolved", func(t *testing.T) {
		rt, root, container := newTestRuntime()

		res := NewResource[string]()
		view := NewComponent("View", func(*Hooks, Props, []*Element) *Element {
			return Text(res.Read())
		})

		require.NoError(t, rt.FlushSync(func() {
			_ = root.Render(Suspense(Text("loading"), C(view, nil)))
		}))
		assert.Equal(t, "loading", container.String())

		done := make(chan struct{})
		go func() {
			res.Resolve("ready")
			close(done)
		}()
		<-done

		rt.RunUntilIdle()
		assert.Equal(t, "ready", container.String())
		assert.True(t, res.Settled())
	})

	t.Run("a failed fetch is caught by a boundary", func(t *testing.T) {
		var caught []error
		rt, root, container := newTestRuntime(WithCaughtErrorHandler(func(err error) { caught = append(caught, err) }))

		res := Fetch(func() (int, error) { return 0, errors.New("offline") })
		settled := make(chan struct{})
		res.Then(func() { close(settled) })
		<-settled

		view := NewComponent("View", func(*Hooks, Props, []*Element) *Element {
			return Text(fmt.Sprint(res.Read()))
		})
		fallback := func(err error, _ func()) *Element { return Text("error: " + errors.Unwrap(err).Error()) }

		require.NoError(t, rt.FlushSync(func() {
			_ = root.Render(ErrorBoundary(fallback, C(view, nil)))
		}))

		assert.Equal(t, "error: offline", container.String())
		require.Len(t, caught, 1)
		var renderErr *RenderError
		assert.ErrorAs(t, caught[0], &renderErr)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, logiface.LevelInformational)

	logger.Info().Str("root", "main").Log("rendered")
	logger.Debug().Log("hidden")

	assert.Contains(t, buf.String(), `"msg":"rendered"`)
	assert.Contains(t, buf.String(), `"root":"main"`)
	assert.NotContains(t, buf.String(), "hidden")
}
