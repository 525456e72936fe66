package testing

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-drift/vui/pkg/widgets"
)

// Host is a recording implementation of widgets.Host. Every widget it
// creates appends one line per setter, insertion, removal and disposal to
// the host's log, in the form
//
//	TextView.setText("hello")
//	LinearLayout.addView(::Button, 1)
//
// Host is not safe for concurrent use.
type Host struct {
	log []string
}

// NewHost returns an empty recording host.
func NewHost() *Host {
	return &Host{}
}

// Log returns a copy of every recorded call in order.
func (h *Host) Log() []string {
	return append([]string(nil), h.log...)
}

// Count returns the number of recorded calls that start with prefix.
func (h *Host) Count(prefix string) int {
	n := 0
	for _, line := range h.log {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// Setters returns the number of recorded setter calls across all widgets.
func (h *Host) Setters() int {
	n := 0
	for _, line := range h.log {
		if _, call, ok := strings.Cut(line, "."); ok && strings.HasPrefix(call, "set") {
			n++
		}
	}
	return n
}

// Reset clears the log.
func (h *Host) Reset() {
	h.log = h.log[:0]
}

func (h *Host) record(format string, args ...any) {
	h.log = append(h.log, fmt.Sprintf(format, args...))
}

// NewRoot returns a container standing in for the platform's root view.
// Root calls are recorded like any other.
func (h *Host) NewRoot() *Widget { return h.create("Root") }

func (h *Host) NewLinearLayout() widgets.LinearLayoutView { return h.create("LinearLayout") }
func (h *Host) NewFrameLayout() widgets.ViewGroup         { return h.create("FrameLayout") }
func (h *Host) NewScrollView() widgets.ViewGroup          { return h.create("ScrollView") }
func (h *Host) NewTextView() widgets.TextViewView         { return h.create("TextView") }
func (h *Host) NewButton() widgets.ButtonView             { return h.create("Button") }
func (h *Host) NewEditText() widgets.EditTextView         { return h.create("EditText") }
func (h *Host) NewEditableView() widgets.EditableViewView { return h.create("EditableView") }

func (h *Host) create(class string) *Widget {
	return &Widget{host: h, Class: class, Enabled: true}
}

// Widget is a fake host widget. It implements every widget interface in
// the widgets package; Class tells which constructor made it.
type Widget struct {
	host   *Host
	parent *Widget

	Class    string
	Children []*Widget
	Disposed bool

	Background  color.RGBA
	Enabled     bool
	Padding     widgets.Insets
	Weight      float64
	Orientation widgets.Orientation
	Gravity     widgets.Gravity
	Text        string
	TextColor   color.RGBA
	TextSize    float64
	Hint        string

	OnClick       func()
	OnTextChanged func(string)

	// editText is the EditText child an EditableView forwards to.
	editText *Widget
}

var _ widgets.Host = (*Host)(nil)

var (
	_ widgets.LinearLayoutView = (*Widget)(nil)
	_ widgets.ButtonView       = (*Widget)(nil)
	_ widgets.EditTextView     = (*Widget)(nil)
	_ widgets.EditableViewView = (*Widget)(nil)
)

func (w *Widget) SetBackgroundColor(c color.RGBA) {
	w.host.record("%s.setBackgroundColor(#%02x%02x%02x%02x)", w.Class, c.R, c.G, c.B, c.A)
	w.Background = c
}

func (w *Widget) SetEnabled(enabled bool) {
	w.host.record("%s.setEnabled(%t)", w.Class, enabled)
	w.Enabled = enabled
}

func (w *Widget) SetPadding(p widgets.Insets) {
	w.host.record("%s.setPadding(%d, %d, %d, %d)", w.Class, p.Left, p.Top, p.Right, p.Bottom)
	w.Padding = p
}

func (w *Widget) SetWeight(weight float64) {
	w.host.record("%s.setWeight(%g)", w.Class, weight)
	w.Weight = weight
}

func (w *Widget) SetOrientation(o widgets.Orientation) {
	w.host.record("%s.setOrientation(%d)", w.Class, o)
	w.Orientation = o
}

func (w *Widget) SetGravity(g widgets.Gravity) {
	w.host.record("%s.setGravity(%d)", w.Class, g)
	w.Gravity = g
}

// SetText sets the displayed text. On an EditableView it forwards to the
// EditText child, and only when the text differs.
func (w *Widget) SetText(s string) {
	w.host.record("%s.setText(%s)", w.Class, strconv.Quote(s))
	w.Text = s
	if w.Class == "EditableView" {
		w.forward()
	}
}

// forward copies an EditableView's text into its EditText child. It is
// recorded as forwardText so it does not count as a setter.
func (w *Widget) forward() {
	if w.editText == nil || w.editText.Text == w.Text {
		return
	}
	w.host.record("%s.forwardText(%s)", w.Class, strconv.Quote(w.Text))
	w.editText.Text = w.Text
}

func (w *Widget) SetTextColor(c color.RGBA) {
	w.host.record("%s.setTextColor(#%02x%02x%02x%02x)", w.Class, c.R, c.G, c.B, c.A)
	w.TextColor = c
}

func (w *Widget) SetTextSize(size float64) {
	w.host.record("%s.setTextSize(%g)", w.Class, size)
	w.TextSize = size
}

func (w *Widget) SetHint(s string) {
	w.host.record("%s.setHint(%s)", w.Class, strconv.Quote(s))
	w.Hint = s
}

func (w *Widget) SetOnClick(f func()) {
	w.host.record("%s.setOnClick()", w.Class)
	w.OnClick = f
}

func (w *Widget) SetOnTextChanged(f func(string)) {
	w.host.record("%s.setOnTextChanged()", w.Class)
	w.OnTextChanged = f
}

func (w *Widget) ChildCount() int { return len(w.Children) }

func (w *Widget) ChildAt(i int) any { return w.Children[i] }

func (w *Widget) InsertChild(i int, child any) {
	c := child.(*Widget)
	w.host.record("%s.addView(::%s, %d)", w.Class, c.Class, i)
	w.Children = append(w.Children, nil)
	copy(w.Children[i+1:], w.Children[i:])
	w.Children[i] = c
	c.parent = w
	if w.Class == "EditableView" && c.Class == "EditText" {
		w.editText = c
		w.forward()
	}
}

func (w *Widget) RemoveChildAt(i int) {
	w.host.record("%s.removeViewAt(%d)", w.Class, i)
	c := w.Children[i]
	w.Children = append(w.Children[:i], w.Children[i+1:]...)
	c.parent = nil
	if c == w.editText {
		w.editText = nil
	}
}

// Dispose marks the widget as released.
func (w *Widget) Dispose() {
	w.host.record("%s.dispose()", w.Class)
	w.Disposed = true
}

// Child returns the widget at the given index path below w, or nil.
func (w *Widget) Child(path ...int) *Widget {
	cur := w
	for _, i := range path {
		if cur == nil || i < 0 || i >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[i]
	}
	return cur
}

// Find returns the first widget in depth-first order, w included, whose
// class and text match. An empty class matches any widget.
func (w *Widget) Find(class, text string) *Widget {
	if (class == "" || w.Class == class) && w.Text == text {
		return w
	}
	for _, c := range w.Children {
		if found := c.Find(class, text); found != nil {
			return found
		}
	}
	return nil
}

// Tap invokes the widget's click callback. It reports whether the widget
// is enabled and has one.
func (w *Widget) Tap() bool {
	if w == nil || !w.Enabled || w.OnClick == nil {
		return false
	}
	w.OnClick()
	return true
}

// Type replaces the text of an EditText as a user would, without
// recording a setter call, and notifies an enclosing EditableView.
func (w *Widget) Type(s string) {
	w.Text = s
	if p := w.parent; p != nil && p.Class == "EditableView" && p.editText == w && p.OnTextChanged != nil {
		p.OnTextChanged(s)
	}
}
