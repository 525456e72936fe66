package term

import (
	"image/color"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/go-drift/vui/pkg/widgets"
)

type class int

const (
	classRoot class = iota
	classLinearLayout
	classFrameLayout
	classScrollView
	classTextView
	classButton
	classEditText
	classEditableView
)

var classNames = [...]string{"Root", "LinearLayout", "FrameLayout", "ScrollView", "TextView", "Button", "EditText", "EditableView"}

func (c class) String() string { return classNames[c] }

// Host creates terminal widgets. It implements widgets.Host and is meant
// to be passed as the reconciler's host context. Widgets belong to the
// bubbletea goroutine and must only be touched from there.
type Host struct{}

// NewHost returns a terminal host.
func NewHost() *Host { return &Host{} }

var _ widgets.Host = (*Host)(nil)

// NewRoot returns the container the application tree is mounted under.
func (h *Host) NewRoot() *Widget { return newWidget(classRoot) }

func (h *Host) NewLinearLayout() widgets.LinearLayoutView { return newWidget(classLinearLayout) }
func (h *Host) NewFrameLayout() widgets.ViewGroup         { return newWidget(classFrameLayout) }
func (h *Host) NewTextView() widgets.TextViewView         { return newWidget(classTextView) }
func (h *Host) NewButton() widgets.ButtonView             { return newWidget(classButton) }
func (h *Host) NewEditableView() widgets.EditableViewView { return newWidget(classEditableView) }

func (h *Host) NewScrollView() widgets.ViewGroup {
	w := newWidget(classScrollView)
	w.viewport = viewport.New(0, defaultScrollRows)
	return w
}

func (h *Host) NewEditText() widgets.EditTextView {
	w := newWidget(classEditText)
	in := textinput.New()
	in.Prompt = ""
	w.input = &in
	return w
}

func newWidget(c class) *Widget {
	return &Widget{class: c, enabled: true}
}

// Widget is a terminal widget. One type backs every widget kind; the
// class decides how it renders and whether it takes focus.
type Widget struct {
	class    class
	parent   *Widget
	children []*Widget
	disposed bool

	background  color.RGBA
	enabled     bool
	padding     widgets.Insets
	weight      float64
	orientation widgets.Orientation
	gravity     widgets.Gravity
	text        string
	textColor   color.RGBA
	textSize    float64

	onClick       func()
	onTextChanged func(string)

	input    *textinput.Model
	viewport viewport.Model
}

var (
	_ widgets.LinearLayoutView = (*Widget)(nil)
	_ widgets.ButtonView       = (*Widget)(nil)
	_ widgets.EditTextView     = (*Widget)(nil)
	_ widgets.EditableViewView = (*Widget)(nil)
)

func (w *Widget) SetBackgroundColor(c color.RGBA)      { w.background = c }
func (w *Widget) SetEnabled(enabled bool)              { w.enabled = enabled }
func (w *Widget) SetPadding(p widgets.Insets)          { w.padding = p }
func (w *Widget) SetWeight(weight float64)             { w.weight = weight }
func (w *Widget) SetOrientation(o widgets.Orientation) { w.orientation = o }
func (w *Widget) SetGravity(g widgets.Gravity)         { w.gravity = g }
func (w *Widget) SetTextColor(c color.RGBA)            { w.textColor = c }
func (w *Widget) SetTextSize(size float64)             { w.textSize = size }
func (w *Widget) SetOnClick(f func())                  { w.onClick = f }
func (w *Widget) SetOnTextChanged(f func(string))      { w.onTextChanged = f }

// SetText sets the displayed text. An EditText keeps its cursor when the
// value is unchanged; an EditableView forwards to its EditText child.
func (w *Widget) SetText(s string) {
	w.text = s
	switch w.class {
	case classEditText:
		if w.input.Value() != s {
			w.input.SetValue(s)
		}
	case classEditableView:
		w.forward()
	}
}

func (w *Widget) SetHint(s string) {
	if w.input != nil {
		w.input.Placeholder = s
	}
}

func (w *Widget) forward() {
	if e := w.editText(); e != nil && e.input.Value() != w.text {
		e.SetText(w.text)
	}
}

func (w *Widget) editText() *Widget {
	for _, c := range w.children {
		if c.class == classEditText {
			return c
		}
	}
	return nil
}

func (w *Widget) ChildCount() int { return len(w.children) }

func (w *Widget) ChildAt(i int) any { return w.children[i] }

func (w *Widget) InsertChild(i int, child any) {
	c := child.(*Widget)
	w.children = append(w.children, nil)
	copy(w.children[i+1:], w.children[i:])
	w.children[i] = c
	c.parent = w
	if w.class == classEditableView && c.class == classEditText {
		w.forward()
	}
}

func (w *Widget) RemoveChildAt(i int) {
	c := w.children[i]
	w.children = append(w.children[:i], w.children[i+1:]...)
	c.parent = nil
}

// Dispose releases the widget. A disposed widget never takes focus again.
func (w *Widget) Dispose() {
	w.disposed = true
	w.onClick = nil
	w.onTextChanged = nil
}

// Text returns the widget's current text. For an EditText this is what the
// user has typed.
func (w *Widget) Text() string {
	if w.input != nil {
		return w.input.Value()
	}
	return w.text
}

// Children returns the widget's children.
func (w *Widget) Children() []*Widget { return w.children }

// Class returns the widget kind name, such as "Button".
func (w *Widget) Class() string { return w.class.String() }

// Find returns the first widget in depth-first order, w included, whose
// class and text match.
func (w *Widget) Find(kind, text string) *Widget {
	if w.class.String() == kind && w.Text() == text {
		return w
	}
	for _, c := range w.children {
		if found := c.Find(kind, text); found != nil {
			return found
		}
	}
	return nil
}

func (w *Widget) focusable() bool {
	return !w.disposed && w.enabled && (w.class == classButton || w.class == classEditText)
}

// focusables appends every focusable widget below w in depth-first order.
func (w *Widget) focusables(out []*Widget) []*Widget {
	if w.focusable() {
		out = append(out, w)
	}
	for _, c := range w.children {
		out = c.focusables(out)
	}
	return out
}

// typed reports a user edit of an EditText to the enclosing EditableView.
func (w *Widget) typed() {
	w.text = w.input.Value()
	if p := w.parent; p != nil && p.class == classEditableView && p.onTextChanged != nil {
		p.onTextChanged(w.text)
	}
}
