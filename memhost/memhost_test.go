package memhost

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber/internal"
)

func TestNode(t *testing.T) {
	t.Run("renders markup with sorted attributes", func(t *testing.T) {
		h := New()
		root := NewContainer()

		div := h.CreateInstance("div", internal.Props{"title": "t", "class": "x", "onClick": func() {}})
		h.AppendInitialChild(div, h.CreateTextInstance("hello"))
		h.AppendChild(root, div)

		assert.Equal(t, `<div class="x" title="t">hello</div>`, root.String())
	})

	t.Run("fingerprints equal trees alike", func(t *testing.T) {
		h := New()
		a, b := NewContainer(), NewContainer()
		h.AppendChild(a, h.CreateInstance("p", internal.Props{"id": 1}))
		h.AppendChild(b, h.CreateInstance("p", internal.Props{"id": 1}))

		assert.Equal(t, a.Fingerprint(), b.Fingerprint())

		h.AppendChild(b, h.CreateTextInstance("more"))
		assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	})
}

func TestHost(t *testing.T) {
	t.Run("logs operations and counts mutations", func(t *testing.T) {
		h := New()
		root := NewContainer()

		ul := h.CreateInstance("ul", nil)
		a := h.CreateInstance("li", internal.Props{"id": "a"})
		b := h.CreateInstance("li", internal.Props{"id": "b"})
		h.AppendInitialChild(ul, a)
		h.AppendChild(root, ul)
		assert.Equal(t, 1, h.Mutations())

		h.Reset()
		h.InsertBefore(ul, b, a)

		require.Len(t, h.Ops(), 1)
		assert.Equal(t, Op{Kind: OpInsert, Node: "li#b", Parent: "ul", Detail: "before li#a"}, h.Ops()[0])
		assert.Equal(t, `<ul><li id="b"></li><li id="a"></li></ul>`, root.String())

		h.RemoveChild(ul, a)
		assert.Equal(t, `<ul><li id="b"></li></ul>`, root.String())
		assert.Equal(t, 2, h.Mutations())
	})

	t.Run("applies property diffs", func(t *testing.T) {
		h := New()
		root := NewContainer()
		p := h.CreateInstance("p", internal.Props{"class": "x", "title": "t"})
		h.AppendChild(root, p)
		h.Reset()

		h.CommitUpdate(p, "p", []internal.PropChange{
			{Name: "class", Value: "y"},
			{Name: "title", Removed: true},
		})

		assert.Equal(t, `<p class="y"></p>`, root.String())
		assert.Equal(t, "class=y -title", h.Ops()[0].Detail)
	})

	t.Run("fails the next operation of a kind once", func(t *testing.T) {
		h := New()
		root := NewContainer()
		p := h.CreateInstance("p", nil)

		h.FailNext(OpAppend, errors.New("nope"))
		assert.PanicsWithError(t, "nope", func() { h.AppendChild(root, p) })
		assert.Empty(t, root.Children)

		h.AppendChild(root, p)
		assert.Equal(t, `<p></p>`, root.String())
	})

	t.Run("clears a container", func(t *testing.T) {
		h := New()
		root := NewContainer()
		h.AppendChild(root, h.CreateTextInstance("a"))
		h.AppendChild(root, h.CreateTextInstance("b"))

		h.ClearContainer(root)

		assert.Empty(t, root.String())
		assert.Equal(t, OpClear, h.Ops()[len(h.Ops())-1].Kind)
	})

	t.Run("rejects removing a node that is not a child", func(t *testing.T) {
		h := New()
		assert.Panics(t, func() { h.RemoveChild(NewContainer(), h.CreateInstance("p", nil)) })
	})
}
