package reconcile

import (
	"github.com/go-drift/vui/pkg/host"
	"github.com/go-drift/vui/pkg/vnode"
)

// Session owns the (previous tree, live root) pair for one host view. Every
// tree applied through a session becomes the previous tree for the next
// pass. A Session is not safe for concurrent use; it belongs to the UI
// goroutine.
type Session struct {
	rec  *Reconciler
	root host.Container
	prev *vnode.Node
	last Stats
}

// NewSession binds a reconciler to a live root container.
func NewSession(rec *Reconciler, root host.Container) *Session {
	return &Session{rec: rec, root: root}
}

// Apply reconciles tree against the previous tree and stores it.
//
// When a pass leaves stale subtrees, the stored tree holds nil at each
// stale position, so the next pass materializes those positions again and
// reuses everything else.
func (s *Session) Apply(tree *vnode.Node) Stats {
	p := s.rec.reconcile(s.prev, tree, s.root)
	s.last = p.stats
	s.prev = tree
	for _, path := range p.stale {
		s.prev = without(s.prev, path)
	}
	return p.stats
}

// without returns tree with the node at path replaced by nil. Nodes along
// the path are copied; tree itself is not modified.
func without(tree *vnode.Node, path vnode.Path) *vnode.Node {
	if tree == nil || len(path) == 0 {
		return nil
	}
	child := tree.Child(path[0])
	if child == nil {
		return tree
	}
	return tree.WithChild(path[0], without(child, path[1:]))
}

// Tree returns the tree the live widgets currently reflect, or nil. Stale
// positions hold nil.
func (s *Session) Tree() *vnode.Node { return s.prev }

// Root returns the live root container.
func (s *Session) Root() host.Container { return s.root }

// Live returns the host widget at the root position, or nil.
func (s *Session) Live() host.Widget {
	if s.root.ChildCount() == 0 {
		return nil
	}
	return s.root.ChildAt(0)
}

// LastStats returns the summary of the most recent pass.
func (s *Session) LastStats() Stats { return s.last }
