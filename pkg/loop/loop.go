// Package loop runs the model/message/update/view cycle on top of a
// reconcile.Session.
//
// A Loop is idle until a message arrives. Dispatch then runs update, builds
// a new view and reconciles it against the live widgets. Messages
// dispatched while a pass is running (typically from a callback fired
// during view construction or reconciliation) are queued and processed in
// order once the current pass completes; they are never dropped and never
// run inline.
//
// A Loop belongs to the goroutine that owns the host widgets. Other
// goroutines hand work to it through platform.Dispatch.
package loop

import (
	stderrors "errors"
	"log/slog"

	"github.com/go-drift/vui/pkg/errors"
	"github.com/go-drift/vui/pkg/reconcile"
	"github.com/go-drift/vui/pkg/vnode"
)

// Component supplies the pure parts of an application: the initial model,
// the update function and the view.
type Component[M, Msg any] interface {
	// Init returns the initial model.
	Init() M
	// Update returns the model that results from applying msg. It must not
	// have side effects.
	Update(model M, msg Msg) M
	// View describes the UI for model using b. Callbacks attached to
	// properties may call dispatch when the host invokes them later.
	View(b *vnode.Builder, model M, dispatch func(Msg))
}

// Func adapts three plain functions to a Component.
type Func[M, Msg any] struct {
	InitFunc   func() M
	UpdateFunc func(M, Msg) M
	ViewFunc   func(*vnode.Builder, M, func(Msg))
}

func (f Func[M, Msg]) Init() M                  { return f.InitFunc() }
func (f Func[M, Msg]) Update(model M, msg Msg) M { return f.UpdateFunc(model, msg) }
func (f Func[M, Msg]) View(b *vnode.Builder, model M, dispatch func(Msg)) {
	f.ViewFunc(b, model, dispatch)
}

// Loop drives one Component against one Session.
type Loop[M, Msg any] struct {
	component Component[M, Msg]
	session   *reconcile.Session
	builder   *vnode.Builder
	logger    *slog.Logger

	model    M
	started  bool
	updating bool
	pending  []func()
}

// New creates a loop. The model is seeded from component.Init; nothing is
// rendered until Start. A nil logger discards output.
func New[M, Msg any](component Component[M, Msg], session *reconcile.Session, logger *slog.Logger) *Loop[M, Msg] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop[M, Msg]{
		component: component,
		session:   session,
		builder:   vnode.NewBuilder(),
		logger:    logger,
		model:     component.Init(),
	}
}

// Start renders the initial model against an empty previous tree. Calling
// it again is a no-op.
func (l *Loop[M, Msg]) Start() {
	if l.started {
		return
	}
	l.started = true
	l.enqueue(l.render)
}

// Dispatch feeds msg through update and re-renders. Re-entrant calls are
// queued behind the running pass.
func (l *Loop[M, Msg]) Dispatch(msg Msg) {
	l.enqueue(func() {
		l.model = l.component.Update(l.model, msg)
		if l.started {
			l.render()
		}
	})
}

// Replace applies a tree built elsewhere (a hot-reload payload) in place of
// the current view, in order with pending messages. The model is left
// untouched, so the next message renders from the model again. done, if
// non-nil, receives the pass statistics once the tree has been applied.
func (l *Loop[M, Msg]) Replace(tree *vnode.Node, done func(reconcile.Stats)) {
	l.enqueue(func() {
		stats := l.session.Apply(tree)
		l.logger.Debug("replaced tree",
			"created", stats.Created,
			"destroyed", stats.Destroyed,
			"applied", stats.Applied,
			"skipped", stats.Skipped,
		)
		if done != nil {
			done(stats)
		}
	})
}

// Model returns the current model.
func (l *Loop[M, Msg]) Model() M { return l.model }

// Tree returns the tree the live widgets currently reflect, or nil.
func (l *Loop[M, Msg]) Tree() *vnode.Node { return l.session.Tree() }

// Updating reports whether a pass is running.
func (l *Loop[M, Msg]) Updating() bool { return l.updating }

func (l *Loop[M, Msg]) enqueue(job func()) {
	l.pending = append(l.pending, job)
	if l.updating {
		return
	}
	l.updating = true
	defer func() { l.updating = false }()
	for len(l.pending) > 0 {
		next := l.pending[0]
		l.pending[0] = nil
		l.pending = l.pending[1:]
		l.step(next)
	}
}

func (l *Loop[M, Msg]) step(job func()) {
	defer errors.Recover("loop.step")
	job()
}

func (l *Loop[M, Msg]) render() {
	tree, err := l.builder.Build(func() {
		l.component.View(l.builder, l.model, l.Dispatch)
	})
	if err != nil {
		var verr *errors.Error
		if !stderrors.As(err, &verr) {
			verr = errors.New("loop.view", errors.KindBuild, err)
		}
		errors.Report(verr)
		return
	}
	stats := l.session.Apply(tree)
	l.logger.Debug("rendered",
		"created", stats.Created,
		"destroyed", stats.Destroyed,
		"applied", stats.Applied,
		"skipped", stats.Skipped,
	)
}
