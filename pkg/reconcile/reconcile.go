// Package reconcile converges a live host-widget tree onto a virtual tree.
//
// Reconciliation walks the previous and the new virtual tree in parallel,
// depth-first. Nodes with equal type tags are updated in place: only
// properties whose values differ from the previous node's are applied.
// Nodes with different tags (or without a previous node) are materialized
// from scratch and replace whatever host widget was at that position.
//
// Children are paired by index, never by identity. Reordering a list
// therefore re-applies every property that differs at each shifted index,
// and widget-local state held below the diff boundary (a text cursor, a
// scroll offset) stays with the position, not with the logical item.
//
// All functions in this package must run on the goroutine that owns the
// host widgets.
package reconcile

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/go-drift/vui/pkg/errors"
	"github.com/go-drift/vui/pkg/host"
	"github.com/go-drift/vui/pkg/prop"
	"github.com/go-drift/vui/pkg/vnode"
)

// ErrNotContainer indicates a group node whose host widget cannot hold
// children.
var ErrNotContainer = stderrors.New("reconcile: host widget is not a container")

// Stats summarizes one reconciliation pass.
type Stats struct {
	// Created counts host widgets instantiated.
	Created int
	// Destroyed counts host widgets removed from the live tree.
	Destroyed int
	// Applied counts property setter invocations.
	Applied int
	// Skipped counts subtrees left stale after a contained failure.
	Skipped int
}

// Reconciler applies virtual trees to host widgets.
type Reconciler struct {
	// Context is passed to every kind constructor.
	Context host.Context
	// Logger receives per-pass summaries at debug level.
	Logger *slog.Logger
}

// New creates a Reconciler for the given host context. A nil logger
// discards output.
func New(ctx host.Context, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{Context: ctx, Logger: logger}
}

// Reconcile converges the first child of root onto newTree, assuming the
// live widgets currently reflect oldTree. A nil oldTree materializes the
// whole tree; a nil newTree removes the live widget. It returns the live
// widget now at the root position.
//
// Failures are contained per subtree and reported through the errors
// package; they never abort sibling subtrees.
func (r *Reconciler) Reconcile(oldTree, newTree *vnode.Node, root host.Container) (host.Widget, Stats) {
	p := r.reconcile(oldTree, newTree, root)
	if root.ChildCount() == 0 {
		return nil, p.stats
	}
	return root.ChildAt(0), p.stats
}

func (r *Reconciler) reconcile(oldTree, newTree *vnode.Node, root host.Container) *pass {
	p := &pass{r: r}
	p.reconcileAt(root, 0, oldTree, newTree, vnode.Path{})

	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("reconciled",
		"created", p.stats.Created,
		"destroyed", p.stats.Destroyed,
		"applied", p.stats.Applied,
		"skipped", p.stats.Skipped,
		"stale", len(p.stale),
	)
	return p
}

// pass holds the state of a single reconciliation.
type pass struct {
	r     *Reconciler
	stats Stats
	// stale lists the paths whose live widgets no longer match the new
	// tree after a contained failure.
	stale []vnode.Path
}

func (p *pass) reconcileAt(parent host.Container, i int, oldNode, newNode *vnode.Node, path vnode.Path) {
	var (
		live  host.Widget
		count int
		ok    bool
	)
	defer func() {
		if rec := recover(); rec != nil {
			p.stats.Skipped++
			errors.ReportPanic(&errors.PanicError{
				Op:         "reconcile",
				Path:       path.String(),
				Value:      rec,
				StackTrace: errors.CaptureStack(),
			})
		}
		if !ok {
			p.markStale(path, live != nil && count == parent.ChildCount())
		}
	}()

	count = parent.ChildCount()
	if i < count {
		live = parent.ChildAt(i)
	}

	switch {
	case newNode == nil:
		if live != nil {
			p.destroy(parent, i, oldNode)
		}
		ok = true
	case live == nil || !vnode.Compatible(oldNode, newNode):
		ok = p.replace(parent, i, live, oldNode, newNode, path)
	default:
		ok = p.update(live, oldNode, newNode, path)
	}
}

// markStale records a failure at path. When the failure left the parent
// with a different number of children, later siblings have shifted, so the
// parent is recorded instead.
func (p *pass) markStale(path vnode.Path, aligned bool) {
	if !aligned && len(path) > 0 {
		path = path[:len(path)-1]
	}
	p.stale = append(p.stale, path)
}

// replace materializes new from scratch and swaps it in for live.
// On failure live is left in place.
func (p *pass) replace(parent host.Container, i int, live host.Widget, oldNode, newNode *vnode.Node, path vnode.Path) bool {
	w, err := newNode.Kind().Create(p.r.Context)
	if err != nil {
		p.skip("reconcile.create", path, err)
		return false
	}
	for _, pr := range newNode.Props() {
		pr.MarkDirty()
		applied, err := pr.ApplyTo(w)
		if err != nil {
			host.Dispose(w)
			p.skip("reconcile.apply", path, err)
			return false
		}
		if applied {
			p.stats.Applied++
		}
	}
	if newNode.IsGroup() {
		c, ok := w.(host.Container)
		if !ok {
			host.Dispose(w)
			p.skip("reconcile.create", path, fmt.Errorf("%w: %s (%T)", ErrNotContainer, newNode.Tag(), w))
			return false
		}
		for j, child := range newNode.Children() {
			p.reconcileAt(c, j, nil, child, path.Append(j))
		}
	}

	if live != nil {
		p.destroy(parent, i, oldNode)
	}
	if i > parent.ChildCount() {
		i = parent.ChildCount()
	}
	parent.InsertChild(i, w)
	p.stats.Created++
	return true
}

// update reuses live for new, applying only what changed since old.
func (p *pass) update(live host.Widget, oldNode, newNode *vnode.Node, path vnode.Path) bool {
	for _, pr := range newNode.Props() {
		if changed(oldNode.Prop(pr.Name()), pr) {
			pr.MarkDirty()
		} else {
			pr.MarkClean()
		}
		applied, err := pr.ApplyTo(live)
		if err != nil {
			p.skip("reconcile.apply", path, err)
			return false
		}
		if applied {
			p.stats.Applied++
		}
	}
	for _, prev := range oldNode.Props() {
		if prev.Transient() || prev.AtDefault() || newNode.Prop(prev.Name()) != nil {
			continue
		}
		reset, err := prev.ResetOn(live)
		if err != nil {
			p.skip("reconcile.reset", path, err)
			return false
		}
		if reset {
			p.stats.Applied++
		}
	}

	if !newNode.IsGroup() {
		return true
	}
	c, ok := live.(host.Container)
	if !ok {
		p.skip("reconcile.update", path, fmt.Errorf("%w: %s (%T)", ErrNotContainer, newNode.Tag(), live))
		return false
	}
	children := newNode.Children()
	for j, child := range children {
		p.reconcileAt(c, j, oldNode.Child(j), child, path.Append(j))
	}
	for last := c.ChildCount() - 1; last >= len(children); last-- {
		p.destroy(c, last, oldNode.Child(last))
	}
	return true
}

// changed reports whether next must be applied to a widget that last
// received prev. An absent prev means the widget holds the default.
func changed(prev, next prop.Prop) bool {
	if prev == nil {
		return !next.AtDefault()
	}
	return next.Differs(prev)
}

func (p *pass) destroy(parent host.Container, i int, oldNode *vnode.Node) {
	w := parent.ChildAt(i)
	parent.RemoveChildAt(i)
	host.Dispose(w)
	if oldNode != nil {
		p.stats.Destroyed += oldNode.Len()
	} else {
		p.stats.Destroyed++
	}
}

func (p *pass) skip(op string, path vnode.Path, err error) {
	p.stats.Skipped++
	errors.Report(&errors.Error{
		Op:   op,
		Kind: errors.KindReconcile,
		Path: path.String(),
		Err:  err,
	})
}
