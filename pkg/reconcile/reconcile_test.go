package reconcile_test

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/vui/pkg/errors"
	"github.com/go-drift/vui/pkg/host"
	"github.com/go-drift/vui/pkg/prop"
	"github.com/go-drift/vui/pkg/reconcile"
	vuitest "github.com/go-drift/vui/pkg/testing"
	"github.com/go-drift/vui/pkg/vnode"
	"github.com/go-drift/vui/pkg/widgets"
)

// captured records every report sent to the global error handler.
type captured struct {
	errs   []*errors.Error
	panics []*errors.PanicError
}

func (c *captured) HandleError(err *errors.Error)      { c.errs = append(c.errs, err) }
func (c *captured) HandlePanic(err *errors.PanicError) { c.panics = append(c.panics, err) }

func capture(t *testing.T) *captured {
	t.Helper()
	c := &captured{}
	errors.SetHandler(c)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return c
}

type fixture struct {
	host *vuitest.Host
	root *vuitest.Widget
	rec  *reconcile.Reconciler
}

func newFixture() *fixture {
	h := vuitest.NewHost()
	return &fixture{host: h, root: h.NewRoot(), rec: reconcile.New(h, nil)}
}

func (f *fixture) reconcile(t *testing.T, oldTree, newTree *vnode.Node) reconcile.Stats {
	t.Helper()
	f.host.Reset()
	_, stats := f.rec.Reconcile(oldTree, newTree, f.root)
	if got := f.host.Setters(); got != stats.Applied {
		t.Errorf("Stats.Applied = %d but host saw %d setter calls", stats.Applied, got)
	}
	return stats
}

func build(t *testing.T, fn func(b *vnode.Builder)) *vnode.Node {
	t.Helper()
	b := vnode.NewBuilder()
	root, err := b.Build(func() { fn(b) })
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return root
}

func column(t *testing.T, texts ...string) *vnode.Node {
	return build(t, func(b *vnode.Builder) {
		widgets.LinearLayout(b, func(l widgets.LinearLayoutNode) {
			l.Orientation(widgets.Vertical)
			for _, s := range texts {
				widgets.TextView(b, func(tv widgets.TextViewNode) { tv.Text(s) })
			}
		})
	})
}

func TestReconcile_CreatesWholeTree(t *testing.T) {
	f := newFixture()
	tree := build(t, func(b *vnode.Builder) {
		widgets.LinearLayout(b, func(l widgets.LinearLayoutNode) {
			l.Orientation(widgets.Vertical)
			widgets.TextView(b, func(tv widgets.TextViewNode) { tv.Text("a") })
			widgets.Button(b, func(bt widgets.ButtonNode) { bt.Text("ok") })
		})
	})

	stats := f.reconcile(t, nil, tree)

	want := []string{
		"LinearLayout.setOrientation(1)",
		`TextView.setText("a")`,
		"LinearLayout.addView(::TextView, 0)",
		`Button.setText("ok")`,
		"LinearLayout.addView(::Button, 1)",
		"Root.addView(::LinearLayout, 0)",
	}
	if diff := cmp.Diff(want, f.host.Log()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
	if want := (reconcile.Stats{Created: 3, Applied: 3}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if got := f.root.Child(0, 1).Text; got != "ok" {
		t.Errorf("button text = %q, want %q", got, "ok")
	}
}

func TestReconcile_SameTreeIsNoop(t *testing.T) {
	f := newFixture()
	tree := column(t, "a", "b")
	f.reconcile(t, nil, tree)

	if stats := f.reconcile(t, tree, tree); stats != (reconcile.Stats{}) {
		t.Errorf("self reconcile stats = %+v, want zero", stats)
	}
	if stats := f.reconcile(t, tree, column(t, "a", "b")); stats != (reconcile.Stats{}) {
		t.Errorf("equal tree stats = %+v, want zero", stats)
	}
	if log := f.host.Log(); len(log) != 0 {
		t.Errorf("expected no host calls, got %v", log)
	}
}

func TestReconcile_SingleTextChange(t *testing.T) {
	f := newFixture()
	prev := column(t, "a", "b")
	f.reconcile(t, nil, prev)
	live := f.root.Child(0, 1)

	stats := f.reconcile(t, prev, column(t, "a", "c"))

	if diff := cmp.Diff([]string{`TextView.setText("c")`}, f.host.Log()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
	if stats != (reconcile.Stats{Applied: 1}) {
		t.Errorf("stats = %+v", stats)
	}
	if f.root.Child(0, 1) != live {
		t.Error("compatible node should reuse its host widget")
	}
}

func TestReconcile_TagChangeReplaces(t *testing.T) {
	f := newFixture()
	prev := build(t, func(b *vnode.Builder) {
		widgets.TextView(b, func(widgets.TextViewNode) {})
	})
	f.reconcile(t, nil, prev)
	old := f.root.Child(0)

	next := build(t, func(b *vnode.Builder) {
		widgets.Button(b, func(widgets.ButtonNode) {})
	})
	stats := f.reconcile(t, prev, next)

	if want := (reconcile.Stats{Created: 1, Destroyed: 1}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if !old.Disposed {
		t.Error("replaced widget should be disposed")
	}
	if got := f.root.Child(0).Class; got != "Button" {
		t.Errorf("root child = %s, want Button", got)
	}
	if f.root.ChildCount() != 1 {
		t.Errorf("root has %d children, want 1", f.root.ChildCount())
	}
}

func TestReconcile_ChildrenGrowAndShrink(t *testing.T) {
	f := newFixture()
	one := column(t, "a")
	f.reconcile(t, nil, one)

	three := column(t, "a", "b", "c")
	stats := f.reconcile(t, one, three)
	if want := (reconcile.Stats{Created: 2, Applied: 2}); stats != want {
		t.Errorf("grow stats = %+v, want %+v", stats, want)
	}
	if n := f.root.Child(0).ChildCount(); n != 3 {
		t.Fatalf("child count after grow = %d, want 3", n)
	}

	stats = f.reconcile(t, three, column(t, "a"))
	want := []string{
		"LinearLayout.removeViewAt(2)",
		"TextView.dispose()",
		"LinearLayout.removeViewAt(1)",
		"TextView.dispose()",
	}
	if diff := cmp.Diff(want, f.host.Log()); diff != "" {
		t.Errorf("shrink log mismatch (-want +got):\n%s", diff)
	}
	if stats != (reconcile.Stats{Destroyed: 2}) {
		t.Errorf("shrink stats = %+v", stats)
	}
}

func TestReconcile_PositionalPairing(t *testing.T) {
	f := newFixture()
	prev := column(t, "a", "b", "c")
	f.reconcile(t, nil, prev)

	// Removing the first item shifts every text left by one position.
	stats := f.reconcile(t, prev, column(t, "b", "c"))

	want := []string{
		`TextView.setText("b")`,
		`TextView.setText("c")`,
		"LinearLayout.removeViewAt(2)",
		"TextView.dispose()",
	}
	if diff := cmp.Diff(want, f.host.Log()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
	if want := (reconcile.Stats{Destroyed: 1, Applied: 2}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestReconcile_RemovedPropertyResetsToDefault(t *testing.T) {
	f := newFixture()
	red := widgets.MustColor("red")
	prev := build(t, func(b *vnode.Builder) {
		widgets.TextView(b, func(tv widgets.TextViewNode) {
			tv.Text("a")
			tv.TextColor(red)
		})
	})
	f.reconcile(t, nil, prev)
	if got := f.root.Child(0).TextColor; got != red {
		t.Fatalf("text color = %v, want %v", got, red)
	}

	next := build(t, func(b *vnode.Builder) {
		widgets.TextView(b, func(tv widgets.TextViewNode) { tv.Text("a") })
	})
	stats := f.reconcile(t, prev, next)

	if diff := cmp.Diff([]string{"TextView.setTextColor(#00000000)"}, f.host.Log()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
	if stats.Applied != 1 {
		t.Errorf("Applied = %d, want 1", stats.Applied)
	}
}

func TestReconcile_CallbacksAlwaysReapplied(t *testing.T) {
	f := newFixture()
	var clicks []string
	button := func(label string) *vnode.Node {
		return build(t, func(b *vnode.Builder) {
			widgets.Button(b, func(bt widgets.ButtonNode) {
				bt.Text("go")
				bt.OnClick(func() { clicks = append(clicks, label) })
			})
		})
	}

	first := button("first")
	f.reconcile(t, nil, first)
	stats := f.reconcile(t, first, button("second"))

	if diff := cmp.Diff([]string{"Button.setOnClick()"}, f.host.Log()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
	if stats.Applied != 1 {
		t.Errorf("Applied = %d, want 1", stats.Applied)
	}
	if !f.root.Child(0).Tap() {
		t.Fatal("Tap found no handler")
	}
	if diff := cmp.Diff([]string{"second"}, clicks); diff != "" {
		t.Errorf("clicks mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_EditableViewForwardsText(t *testing.T) {
	f := newFixture()
	var changed []string
	view := func(text string) *vnode.Node {
		return build(t, func(b *vnode.Builder) {
			widgets.EditableView(b, func(e widgets.EditableViewNode) {
				e.Text(text)
				e.OnTextChanged(func(s string) { changed = append(changed, s) })
				widgets.EditText(b, func(et widgets.EditTextNode) { et.Hint("Enter text...") })
			})
		})
	}

	prev := view("draft")
	f.reconcile(t, nil, prev)
	field := f.root.Child(0, 0)
	if field.Text != "draft" {
		t.Errorf("edit text = %q, want %q", field.Text, "draft")
	}

	field.Type("drafts")
	if diff := cmp.Diff([]string{"drafts"}, changed); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}

	// The model caught up with the field, so forwarding must not touch it.
	f.reconcile(t, prev, view("drafts"))
	if n := f.host.Count("EditableView.forwardText"); n != 0 {
		t.Errorf("text forwarded %d times, want 0", n)
	}
}

var errBroken = stderrors.New("broken constructor")

var brokenKind = vnode.NewKind("Broken", func(host.Context) (host.Widget, error) {
	return nil, errBroken
})

var (
	boomProp = prop.New("boom", 0, func(widgets.TextViewView, int) { panic("boom") })
	boomKind = vnode.NewKind("Boom", func(ctx host.Context) (host.Widget, error) {
		return ctx.(widgets.Host).NewTextView(), nil
	}, vnode.Props(boomProp))
)

func self(n *vnode.Node) *vnode.Node { return n }

func TestReconcile_ContainsCreateFailure(t *testing.T) {
	reports := capture(t)
	f := newFixture()
	tree := build(t, func(b *vnode.Builder) {
		widgets.LinearLayout(b, func(widgets.LinearLayoutNode) {
			vnode.Element(b, brokenKind, self, func(*vnode.Node) {})
			widgets.TextView(b, func(tv widgets.TextViewNode) { tv.Text("survivor") })
		})
	})

	stats := f.reconcile(t, nil, tree)

	if want := (reconcile.Stats{Created: 2, Applied: 1, Skipped: 1}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if got := f.root.Child(0, 0); got == nil || got.Text != "survivor" {
		t.Errorf("sibling should be created at the first free slot, got %+v", got)
	}
	if len(reports.errs) != 1 {
		t.Fatalf("got %d error reports, want 1", len(reports.errs))
	}
	err := reports.errs[0]
	if err.Kind != errors.KindReconcile || err.Path != "/0" || !stderrors.Is(err, errBroken) {
		t.Errorf("unexpected report: %v", err)
	}
}

func TestReconcile_ContainsSetterPanic(t *testing.T) {
	reports := capture(t)
	f := newFixture()
	tree := build(t, func(b *vnode.Builder) {
		widgets.LinearLayout(b, func(widgets.LinearLayoutNode) {
			widgets.TextView(b, func(tv widgets.TextViewNode) { tv.Text("before") })
			vnode.Element(b, boomKind, self, func(n *vnode.Node) { vnode.Set(n, boomProp, 1) })
			widgets.TextView(b, func(tv widgets.TextViewNode) { tv.Text("after") })
		})
	})

	stats := f.reconcile(t, nil, tree)

	if stats.Skipped != 1 || stats.Created != 3 {
		t.Errorf("stats = %+v, want Created=3 Skipped=1", stats)
	}
	var texts []string
	for _, c := range f.root.Child(0).Children {
		texts = append(texts, c.Text)
	}
	if diff := cmp.Diff([]string{"before", "after"}, texts); diff != "" {
		t.Errorf("live children mismatch (-want +got):\n%s", diff)
	}
	if len(reports.panics) != 1 {
		t.Fatalf("got %d panic reports, want 1", len(reports.panics))
	}
	if p := reports.panics[0]; p.Path != "/1" || p.Value != "boom" {
		t.Errorf("unexpected panic report: %+v", p)
	}
}

func TestReconcile_ReportsMissingHost(t *testing.T) {
	reports := capture(t)
	h := vuitest.NewHost()
	root := h.NewRoot()
	// A context that is not a widgets.Host cannot construct anything.
	rec := reconcile.New(struct{}{}, nil)

	_, stats := rec.Reconcile(nil, column(t, "a"), root)

	if stats.Skipped != 1 || root.ChildCount() != 0 {
		t.Errorf("stats = %+v, children = %d", stats, root.ChildCount())
	}
	if len(reports.errs) != 1 || !stderrors.Is(reports.errs[0], widgets.ErrNoHost) {
		t.Errorf("reports = %v, want ErrNoHost", reports.errs)
	}
}

func TestReconcile_NilTreeRemovesRoot(t *testing.T) {
	f := newFixture()
	tree := column(t, "a", "b")
	f.reconcile(t, nil, tree)

	stats := f.reconcile(t, tree, nil)

	if stats.Destroyed != 3 {
		t.Errorf("Destroyed = %d, want 3", stats.Destroyed)
	}
	if f.root.ChildCount() != 0 {
		t.Error("root should be empty")
	}
	if n := f.host.Count("TextView.dispose"); n != 2 {
		t.Errorf("disposed %d text views, want 2", n)
	}
}

func TestSession_ForgetsRootWhenChildrenShift(t *testing.T) {
	capture(t)
	h := vuitest.NewHost()
	s := reconcile.NewSession(reconcile.New(h, nil), h.NewRoot())

	broken := build(t, func(b *vnode.Builder) {
		widgets.LinearLayout(b, func(widgets.LinearLayoutNode) {
			vnode.Element(b, brokenKind, self, func(*vnode.Node) {})
		})
	})
	if stats := s.Apply(broken); stats.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", stats.Skipped)
	}
	if s.Tree() != nil {
		t.Error("a failed insertion shifts siblings, so the whole parent should be forgotten")
	}

	good := column(t, "a")
	stats := s.Apply(good)
	if stats.Created != 2 || stats.Destroyed != 1 {
		t.Errorf("rebuild stats = %+v, want Created=2 Destroyed=1", stats)
	}
	if s.Tree() != good || s.LastStats() != stats {
		t.Error("session should remember the applied tree and stats")
	}

	if stats := s.Apply(column(t, "a")); stats != (reconcile.Stats{}) {
		t.Errorf("steady-state stats = %+v, want zero", stats)
	}
	live, ok := s.Live().(*vuitest.Widget)
	if !ok || live.Class != "LinearLayout" {
		t.Errorf("Live() = %v", s.Live())
	}
}

func TestReconcile_DropSecondLeaf(t *testing.T) {
	f := newFixture()
	a := column(t, "x", "y")
	f.reconcile(t, nil, a)
	first := f.root.Child(0, 0)

	stats := f.reconcile(t, a, column(t, "x"))

	if want := (reconcile.Stats{Destroyed: 1}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if f.root.Child(0, 0) != first || first.Disposed {
		t.Error("the remaining child should be reused untouched")
	}
}

func TestReconcile_DefaultValueTransitionsAreNoops(t *testing.T) {
	f := newFixture()
	text := func(opts ...func(widgets.TextViewNode)) *vnode.Node {
		return build(t, func(b *vnode.Builder) {
			widgets.TextView(b, func(tv widgets.TextViewNode) {
				tv.Text("x")
				for _, o := range opts {
					o(tv)
				}
			})
		})
	}
	enabled := func(tv widgets.TextViewNode) { tv.Enabled(true) }

	omitted := text()
	f.reconcile(t, nil, omitted)

	explicit := text(enabled)
	if stats := f.reconcile(t, omitted, explicit); stats.Applied != 0 {
		t.Errorf("omitted -> explicit default: Applied = %d, want 0 (log %v)", stats.Applied, f.host.Log())
	}
	if stats := f.reconcile(t, explicit, text()); stats.Applied != 0 {
		t.Errorf("explicit default -> omitted: Applied = %d, want 0 (log %v)", stats.Applied, f.host.Log())
	}
}

var (
	strictProp = prop.New("strict", 0, func(w widgets.TextViewView, v int) {
		if v < 0 {
			panic("negative")
		}
	})
	strictKind = vnode.NewKind("Strict", func(ctx host.Context) (host.Widget, error) {
		return ctx.(widgets.Host).NewTextView(), nil
	}, vnode.Props(strictProp))
)

func TestSession_RebuildsOnlyStalePosition(t *testing.T) {
	reports := capture(t)
	h := vuitest.NewHost()
	s := reconcile.NewSession(reconcile.New(h, nil), h.NewRoot())
	tree := func(v int) *vnode.Node {
		return build(t, func(b *vnode.Builder) {
			widgets.LinearLayout(b, func(widgets.LinearLayoutNode) {
				widgets.TextView(b, func(tv widgets.TextViewNode) { tv.Text("keep") })
				vnode.Element(b, strictKind, self, func(n *vnode.Node) { vnode.Set(n, strictProp, v) })
			})
		})
	}

	s.Apply(tree(1))
	row := s.Live().(*vuitest.Widget)
	keep, strict := row.Child(0), row.Child(1)

	if stats := s.Apply(tree(-1)); stats.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", stats.Skipped)
	}
	if len(reports.panics) != 1 || reports.panics[0].Path != "/1" {
		t.Fatalf("panic reports = %+v", reports.panics)
	}
	if got := s.Tree(); got == nil || got.Child(0) == nil || got.Child(1) != nil {
		t.Fatalf("stored tree should hold nil only at the failed position:\n%s", vnode.Dump(got))
	}

	stats := s.Apply(tree(2))
	if want := (reconcile.Stats{Created: 1, Destroyed: 1, Applied: 1}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if s.Live() != row || row.Child(0) != keep {
		t.Error("widgets outside the failed position should be reused")
	}
	if row.Child(1) == strict || !strict.Disposed {
		t.Error("the failed position should be materialized again")
	}
}
