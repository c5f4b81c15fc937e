// Package memhost is an in-memory render target. It keeps a plain node tree
// per container and logs every operation the reconciler performs on it.
package memhost

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/AnatoleLucet/fiber/internal"
)

// Node is a host element, a text node or a container.
type Node struct {
	Type     string
	Text     string
	Props    map[string]any
	Children []*Node
	Parent   *Node
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.Type == textType }

const (
	textType      = "#text"
	containerType = "#root"
)

// NewContainer returns an empty container to render into.
func NewContainer() *Node {
	return &Node{Type: containerType}
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.Children, child)
}

func (n *Node) detach(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		n.Children = slices.Delete(n.Children, i, i+1)
	}
	child.Parent = nil
}

// String renders n and its subtree as markup with sorted attributes.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Type {
	case textType:
		b.WriteString(n.Text)
		return
	case containerType:
		for _, c := range n.Children {
			c.write(b)
		}
		return
	}

	b.WriteString("<" + n.Type)
	names := make([]string, 0, len(n.Props))
	for name := range n.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := n.Props[name]
		if reflect.ValueOf(v).Kind() == reflect.Func {
			continue
		}
		fmt.Fprintf(b, " %s=%q", name, fmt.Sprint(v))
	}
	b.WriteString(">")
	for _, c := range n.Children {
		c.write(b)
	}
	b.WriteString("</" + n.Type + ">")
}

// Fingerprint hashes the markup of n, for cheap tree equality checks.
func (n *Node) Fingerprint() uint64 {
	return xxhash.Sum64String(n.String())
}

// OpKind names a host operation.
type OpKind string

const (
	OpCreate      OpKind = "create"
	OpCreateText  OpKind = "create-text"
	OpAppendInit  OpKind = "append-initial"
	OpAppend      OpKind = "append"
	OpInsert      OpKind = "insert"
	OpRemove      OpKind = "remove"
	OpUpdate      OpKind = "update"
	OpUpdateText  OpKind = "update-text"
	OpClear       OpKind = "clear"
	OpPrepare     OpKind = "prepare"
	OpResetCommit OpKind = "reset"
)

// Op is one logged host operation.
type Op struct {
	Kind   OpKind
	Node   string
	Parent string
	Detail string
}

func (op Op) String() string {
	s := string(op.Kind) + " " + op.Node
	if op.Parent != "" {
		s += " -> " + op.Parent
	}
	if op.Detail != "" {
		s += " " + op.Detail
	}
	return s
}

// isMutation reports whether op changed an attached tree.
func (op Op) isMutation() bool {
	switch op.Kind {
	case OpAppend, OpInsert, OpRemove, OpUpdate, OpUpdateText, OpClear:
		return true
	}
	return false
}

var _ internal.HostConfig = (*Host)(nil)

// Host implements the reconciler's host interface over Node trees.
type Host struct {
	mu  sync.Mutex
	ops []Op

	// panics with the error the next time an operation of that kind runs
	failures map[OpKind]error
}

func New() *Host {
	return &Host{failures: make(map[OpKind]error)}
}

// FailNext makes the next operation of kind panic with err.
func (h *Host) FailNext(kind OpKind, err error) {
	h.mu.Lock()
	h.failures[kind] = err
	h.mu.Unlock()
}

func (h *Host) record(op Op) {
	h.mu.Lock()
	err, fail := h.failures[op.Kind]
	if fail {
		delete(h.failures, op.Kind)
	} else {
		h.ops = append(h.ops, op)
	}
	h.mu.Unlock()

	if fail {
		panic(err)
	}
}

// Ops returns the operations logged since the last Reset.
func (h *Host) Ops() []Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.ops)
}

// Mutations counts the logged operations that changed an attached tree.
func (h *Host) Mutations() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, op := range h.ops {
		if op.isMutation() {
			n++
		}
	}
	return n
}

func (h *Host) Reset() {
	h.mu.Lock()
	h.ops = nil
	h.mu.Unlock()
}

func label(v any) string {
	n, ok := v.(*Node)
	if !ok {
		return fmt.Sprintf("%T", v)
	}
	if n.IsText() {
		return fmt.Sprintf("%q", n.Text)
	}
	if id, ok := n.Props["id"]; ok {
		return fmt.Sprintf("%s#%v", n.Type, id)
	}
	return n.Type
}

func (h *Host) CreateInstance(typ string, props internal.Props) any {
	n := &Node{Type: typ, Props: make(map[string]any, len(props))}
	for k, v := range props {
		n.Props[k] = v
	}
	h.record(Op{Kind: OpCreate, Node: label(n)})
	return n
}

func (h *Host) CreateTextInstance(text string) any {
	n := &Node{Type: textType, Text: text}
	h.record(Op{Kind: OpCreateText, Node: label(n)})
	return n
}

func (h *Host) AppendInitialChild(parent, child any) {
	h.record(Op{Kind: OpAppendInit, Node: label(child), Parent: label(parent)})
	appendChild(parent.(*Node), child.(*Node))
}

func (h *Host) AppendChild(parent, child any) {
	h.record(Op{Kind: OpAppend, Node: label(child), Parent: label(parent)})
	appendChild(parent.(*Node), child.(*Node))
}

func appendChild(p, c *Node) {
	if c.Parent != nil {
		c.Parent.detach(c)
	}
	p.Children = append(p.Children, c)
	c.Parent = p
}

func (h *Host) InsertBefore(parent, child, before any) {
	h.record(Op{Kind: OpInsert, Node: label(child), Parent: label(parent), Detail: "before " + label(before)})

	p, c, b := parent.(*Node), child.(*Node), before.(*Node)
	if c.Parent != nil {
		c.Parent.detach(c)
	}

	i := p.indexOf(b)
	if i < 0 {
		panic(fmt.Errorf("memhost: %s is not a child of %s", label(b), label(p)))
	}
	p.Children = slices.Insert(p.Children, i, c)
	c.Parent = p
}

func (h *Host) RemoveChild(parent, child any) {
	h.record(Op{Kind: OpRemove, Node: label(child), Parent: label(parent)})

	p, c := parent.(*Node), child.(*Node)
	if p.indexOf(c) < 0 {
		panic(fmt.Errorf("memhost: %s is not a child of %s", label(c), label(p)))
	}
	p.detach(c)
}

func (h *Host) CommitUpdate(instance any, typ string, diff []internal.PropChange) {
	parts := make([]string, 0, len(diff))
	for _, change := range diff {
		if change.Removed {
			parts = append(parts, "-"+change.Name)
		} else {
			parts = append(parts, fmt.Sprintf("%s=%v", change.Name, change.Value))
		}
	}
	h.record(Op{Kind: OpUpdate, Node: label(instance), Detail: strings.Join(parts, " ")})

	n := instance.(*Node)
	for _, change := range diff {
		if change.Removed {
			delete(n.Props, change.Name)
		} else {
			n.Props[change.Name] = change.Value
		}
	}
}

func (h *Host) CommitTextUpdate(instance any, oldText, newText string) {
	h.record(Op{Kind: OpUpdateText, Node: fmt.Sprintf("%q", oldText), Detail: fmt.Sprintf("%q", newText)})
	instance.(*Node).Text = newText
}

func (h *Host) ClearContainer(container any) {
	h.record(Op{Kind: OpClear, Node: label(container)})

	c := container.(*Node)
	for _, child := range c.Children {
		child.Parent = nil
	}
	c.Children = nil
}

func (h *Host) PrepareForCommit(container any) {
	h.record(Op{Kind: OpPrepare, Node: label(container)})
}

func (h *Host) ResetAfterCommit(container any) {
	h.record(Op{Kind: OpResetCommit, Node: label(container)})
}
