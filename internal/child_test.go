package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber/internal"
	"github.com/AnatoleLucet/fiber/memhost"
)

func TestReconcileChildren(t *testing.T) {
	t.Run("mounts a tree with a single container append", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.renderSync(el("div", internal.Props{"id": "app"},
			el("p", nil, text("hello")),
			list("a", "b"),
		)))

		assert.Equal(t, `<div id="app"><p>hello</p><ul><li id="a"></li><li id="b"></li></ul></div>`, h.tree())
		assert.Equal(t, 1, h.mem.Mutations())
	})

	t.Run("rendering the same tree twice performs no mutation", func(t *testing.T) {
		h := newHarness(t)
		tree := func() *internal.Element {
			return el("div", internal.Props{"id": "app", "class": "x"},
				el("p", nil, text("hello")),
				list("a", "b", "c"),
			)
		}

		require.NoError(t, h.renderSync(tree()))
		h.mem.Reset()

		require.NoError(t, h.renderSync(tree()))
		assert.Equal(t, 0, h.mem.Mutations())
	})

	t.Run("moves a keyed child with one operation", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(list("a", "b", "c", "d")))
		h.mem.Reset()

		require.NoError(t, h.renderSync(list("b", "c", "d", "a")))

		assert.Equal(t, `<ul><li id="b"></li><li id="c"></li><li id="d"></li><li id="a"></li></ul>`, h.tree())
		assert.Equal(t, 1, h.mem.Mutations())
	})

	t.Run("moving the last child to the front moves every other one", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(list("a", "b", "c", "d")))
		h.mem.Reset()

		require.NoError(t, h.renderSync(list("d", "a", "b", "c")))

		assert.Equal(t, `<ul><li id="d"></li><li id="a"></li><li id="b"></li><li id="c"></li></ul>`, h.tree())
		assert.Equal(t, 3, h.mem.Mutations())
	})

	t.Run("inserts before the next placed sibling", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(list("a", "b")))
		h.mem.Reset()

		require.NoError(t, h.renderSync(list("x", "a", "b")))

		assert.Equal(t, `<ul><li id="x"></li><li id="a"></li><li id="b"></li></ul>`, h.tree())
		ops := h.mem.Ops()
		assert.Contains(t, ops, memhost.Op{Kind: memhost.OpInsert, Node: "li#x", Parent: "ul", Detail: "before li#a"})
		assert.Equal(t, 1, h.mem.Mutations())
	})

	t.Run("removes deleted children", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(list("a", "b", "c")))
		h.mem.Reset()

		require.NoError(t, h.renderSync(list("a", "c")))

		assert.Equal(t, `<ul><li id="a"></li><li id="c"></li></ul>`, h.tree())
		assert.Equal(t, []memhost.Op{{Kind: memhost.OpRemove, Node: "li#b", Parent: "ul"}}, mutations(h.mem))
	})

	t.Run("same key with a different type replaces the node", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(el("div", nil, keyed("k", el("p", nil)))))
		h.mem.Reset()

		require.NoError(t, h.renderSync(el("div", nil, keyed("k", el("span", nil)))))

		assert.Equal(t, `<div><span></span></div>`, h.tree())
		assert.Equal(t, 2, h.mem.Mutations())
	})

	t.Run("matches unkeyed children by position", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(el("div", nil, text("a"), el("b", nil))))
		h.mem.Reset()

		require.NoError(t, h.renderSync(el("div", nil, text("z"), el("b", nil), el("i", nil))))

		assert.Equal(t, `<div>z<b></b><i></i></div>`, h.tree())
		assert.Equal(t, []memhost.Op{
			{Kind: memhost.OpUpdateText, Node: `"a"`, Detail: `"z"`},
			{Kind: memhost.OpAppend, Node: "i", Parent: "div"},
		}, mutations(h.mem))
	})

	t.Run("updates changed props only", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(el("div", internal.Props{"id": "a", "class": "x", "title": "t"})))
		h.mem.Reset()

		require.NoError(t, h.renderSync(el("div", internal.Props{"id": "a", "class": "y"})))

		assert.Equal(t, `<div class="y" id="a"></div>`, h.tree())
		assert.Equal(t, []memhost.Op{
			{Kind: memhost.OpUpdate, Node: "div#a", Detail: "class=y -title"},
		}, mutations(h.mem))
	})

	t.Run("fragments place their host children", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(el("div", nil, el("a", nil))))
		h.mem.Reset()

		require.NoError(t, h.renderSync(el("div", nil, fragment(el("b", nil), el("c", nil)), el("a", nil))))

		assert.Equal(t, `<div><b></b><c></c><a></a></div>`, h.tree())
	})

	t.Run("unmount removes the tree", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.renderSync(list("a", "b")))

		require.NoError(t, h.rt.Unmount(h.root))

		assert.Equal(t, ``, h.tree())
		assert.ErrorIs(t, h.rt.Unmount(h.root), internal.ErrRootUnmounted)
		_, err := h.rt.UpdateContainer(h.root, list("a"))
		assert.ErrorIs(t, err, internal.ErrRootUnmounted)
	})

	t.Run("rejects unknown element types", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.renderSync(el("div", nil, &internal.Element{Type: 42})))

		require.Len(t, h.uncaught, 1)
		assert.ErrorIs(t, h.uncaught[0], internal.ErrInvalidElement)
		assert.Equal(t, ``, h.tree())
	})
}

func mutations(m *memhost.Host) []memhost.Op {
	var out []memhost.Op
	for _, op := range m.Ops() {
		switch op.Kind {
		case memhost.OpAppend, memhost.OpInsert, memhost.OpRemove, memhost.OpUpdate, memhost.OpUpdateText, memhost.OpClear:
			out = append(out, op)
		}
	}
	return out
}
