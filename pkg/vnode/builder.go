package vnode

import (
	"errors"
	"fmt"
	"sync/atomic"

	vuierrors "github.com/go-drift/vui/pkg/errors"
)

// Construction errors returned (wrapped in *errors.Error) by Build.
var (
	ErrConcurrentBuild = errors.New("vnode: build already in progress on this builder")
	ErrUnbalanced      = errors.New("vnode: unbalanced builder push/pop")
	ErrMultipleRoots   = errors.New("vnode: build produced more than one root")
	ErrEmptyBuild      = errors.New("vnode: build produced no root")
	ErrAbstractKind    = errors.New("vnode: abstract kind cannot be instantiated")
)

// Builder is the explicit build context for declarative tree construction.
// Nested element calls attach themselves to the node currently on top of
// the builder's stack, so callers never pass parents around:
//
//	root, err := b.Build(func() {
//	    widgets.LinearLayout(b, func(l widgets.LinearLayoutNode) {
//	        widgets.TextView(b, func(t widgets.TextViewNode) { t.Text("hello") })
//	    })
//	})
//
// A Builder is single-writer: only one Build may be in flight at a time.
// Element calls made outside Build produce standalone trees.
type Builder struct {
	stack    []*Node
	root     *Node
	building atomic.Bool
}

// NewBuilder creates an idle builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Current returns the node being configured, or nil.
func (b *Builder) Current() *Node {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

// Depth returns the number of nodes currently being configured.
func (b *Builder) Depth() int { return len(b.stack) }

// Push makes n the current node.
func (b *Builder) Push(n *Node) {
	b.stack = append(b.stack, n)
}

// Pop removes the current node and attaches it to the new current node, or
// records it as the session root when the stack becomes empty.
// Construction errors panic; Build turns them into returned errors.
func (b *Builder) Pop() *Node {
	if len(b.stack) == 0 {
		panic(ErrUnbalanced)
	}
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	if parent := b.Current(); parent != nil {
		if err := parent.AddChild(n); err != nil {
			panic(err)
		}
		return n
	}
	if b.building.Load() {
		if b.root != nil {
			panic(ErrMultipleRoots)
		}
		b.root = n
	}
	return n
}

// Element instantiates a node of kind, lets configure populate it through
// its typed wrapper, and attaches it to the enclosing node.
func Element[T any](b *Builder, kind *Kind, wrap func(*Node) T, configure func(T)) T {
	if kind.abstract {
		panic(fmt.Errorf("%w: %s", ErrAbstractKind, kind.tag))
	}
	n := NewNode(kind)
	w := wrap(n)
	b.Push(n)
	if configure != nil {
		configure(w)
	}
	b.Pop()
	return w
}

// Build runs one construction session and returns the single root node it
// produced. Any construction failure aborts the session; no partial tree is
// returned.
func (b *Builder) Build(fn func()) (root *Node, err error) {
	if !b.building.CompareAndSwap(false, true) {
		return nil, vuierrors.New("vnode.Build", vuierrors.KindBuild, ErrConcurrentBuild)
	}
	b.stack = b.stack[:0]
	b.root = nil
	defer func() {
		b.stack = nil
		b.root = nil
		b.building.Store(false)
	}()
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = &vuierrors.Error{
				Op:         "vnode.Build",
				Kind:       vuierrors.KindBuild,
				Err:        cause,
				StackTrace: vuierrors.CaptureStack(),
			}
			root = nil
		}
	}()

	fn()

	if len(b.stack) != 0 {
		return nil, vuierrors.New("vnode.Build", vuierrors.KindBuild, ErrUnbalanced)
	}
	if b.root == nil {
		return nil, vuierrors.New("vnode.Build", vuierrors.KindBuild, ErrEmptyBuild)
	}
	return b.root, nil
}
