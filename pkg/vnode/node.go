package vnode

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-drift/vui/pkg/prop"
)

var (
	// ErrNotGroup indicates a child was attached to a leaf kind.
	ErrNotGroup = errors.New("vnode: kind does not accept children")

	// ErrUndeclaredProp indicates a property the node's kind does not declare.
	ErrUndeclaredProp = errors.New("vnode: property not declared by kind")
)

// Node is a virtual node: a lightweight descriptor of one prospective host
// widget. A node never references a live host widget; the reconciler
// addresses live widgets by path.
//
// Nodes are built once per render and are treated as immutable once handed
// to the reconciler.
type Node struct {
	kind     *Kind
	props    []prop.Prop
	index    map[string]int
	children []*Node
}

// NewNode creates an empty node of kind. Properties without a default are
// pre-inserted in declaration order so they always participate in diffing.
func NewNode(kind *Kind) *Node {
	n := &Node{kind: kind, index: make(map[string]int)}
	for _, p := range kind.props {
		if !p.HasDefault() {
			n.insert(p.New())
		}
	}
	return n
}

func (n *Node) insert(p prop.Prop) {
	n.index[p.Name()] = len(n.props)
	n.props = append(n.props, p)
}

// Kind returns the node's kind.
func (n *Node) Kind() *Kind { return n.kind }

// Tag returns the node's type tag.
func (n *Node) Tag() string { return n.kind.tag }

// IsGroup reports whether the node can hold children.
func (n *Node) IsGroup() bool { return n.kind.group }

// Props returns the node's properties in insertion order. The slice must
// not be modified.
func (n *Node) Props() []prop.Prop { return n.props }

// Prop returns the property with the given name, or nil.
func (n *Node) Prop(name string) prop.Prop {
	i, ok := n.index[name]
	if !ok {
		return nil
	}
	return n.props[i]
}

// Children returns the ordered child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Child returns child i, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// WithChild returns a shallow copy of n whose child i is c. Properties are
// shared with n, which is left unchanged.
func (n *Node) WithChild(i int, c *Node) *Node {
	cp := *n
	cp.children = slices.Clone(n.children)
	cp.children[i] = c
	return &cp
}

// Len returns the number of nodes in the subtree rooted at n.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.children {
		total += c.Len()
	}
	return total
}

// AddChild appends c to n's children.
func (n *Node) AddChild(c *Node) error {
	if !n.kind.group {
		return fmt.Errorf("%w: %s", ErrNotGroup, n.kind.tag)
	}
	n.children = append(n.children, c)
	return nil
}

// Put stores p, replacing any property with the same name. The property
// must be declared by the node's kind.
func (n *Node) Put(p prop.Prop) error {
	if _, ok := n.kind.index[p.Name()]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrUndeclaredProp, n.kind.tag, p.Name())
	}
	if i, ok := n.index[p.Name()]; ok {
		n.props[i] = p
		return nil
	}
	n.insert(p)
	return nil
}

// instance returns the node's instance of the named property, creating it
// from the kind's template on first use.
func (n *Node) instance(name string) prop.Prop {
	if p := n.Prop(name); p != nil {
		return p
	}
	tmpl, ok := n.kind.Prop(name)
	if !ok {
		panic(fmt.Errorf("%w: %s.%s", ErrUndeclaredProp, n.kind.tag, name))
	}
	p := tmpl.New()
	n.insert(p)
	return p
}

// Set assigns a value property on n.
func Set[W any, T comparable](n *Node, def *prop.Property[W, T], v T) {
	p, ok := n.instance(def.Name()).(*prop.Property[W, T])
	if !ok {
		panic(fmt.Errorf("%w: %s.%s has a different type", ErrUndeclaredProp, n.kind.tag, def.Name()))
	}
	p.Set(v)
}

// SetCallback assigns a callback property on n.
func SetCallback[W any, F any](n *Node, def *prop.Callback[W, F], f F) {
	p, ok := n.instance(def.Name()).(*prop.Callback[W, F])
	if !ok {
		panic(fmt.Errorf("%w: %s.%s has a different type", ErrUndeclaredProp, n.kind.tag, def.Name()))
	}
	p.Set(f)
}

// Compatible reports whether a can be reconciled in place into b: both
// exist and carry the same type tag.
func Compatible(a, b *Node) bool {
	return a != nil && b != nil && a.kind.tag == b.kind.tag
}

// Equal reports whether two trees are content-equivalent: same tags, same
// non-transient property names and values in the same order, and equal
// children. Transient properties (callbacks) are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag() != b.Tag() || len(a.children) != len(b.children) {
		return false
	}
	pa, pb := persistent(a.props), persistent(b.props)
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i].Name() != pb[i].Name() || pa[i].Differs(pb[i]) {
			return false
		}
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

func persistent(props []prop.Prop) []prop.Prop {
	out := make([]prop.Prop, 0, len(props))
	for _, p := range props {
		if !p.Transient() {
			out = append(out, p)
		}
	}
	return out
}
