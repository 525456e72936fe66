package widgets

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-drift/vui/pkg/host"
	"github.com/go-drift/vui/pkg/vnode"
)

// ErrNoHost is returned by kind constructors when the reconciler's host
// context does not implement Host.
var ErrNoHost = errors.New("widgets: host context does not implement widgets.Host")

// Orientation is the main axis of a LinearLayout.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Gravity aligns children along a LinearLayout's main axis.
type Gravity int

const (
	GravityStart Gravity = iota
	GravityCenter
	GravityEnd
)

// Insets are padding amounts in host units.
type Insets struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// All returns uniform insets.
func All(n int) Insets {
	return Insets{Top: n, Right: n, Bottom: n, Left: n}
}

// View is the setter surface every host widget provides.
type View interface {
	SetBackgroundColor(c color.RGBA)
	SetEnabled(enabled bool)
	SetPadding(p Insets)
	SetWeight(w float64)
}

// ViewGroup is a View that holds children.
type ViewGroup interface {
	View
	host.Container
}

// LinearLayoutView stacks its children along one axis.
type LinearLayoutView interface {
	ViewGroup
	SetOrientation(o Orientation)
	SetGravity(g Gravity)
}

// TextViewView displays text.
type TextViewView interface {
	View
	SetText(s string)
	SetTextColor(c color.RGBA)
	SetTextSize(size float64)
}

// ButtonView is a clickable text view.
type ButtonView interface {
	TextViewView
	SetOnClick(f func())
}

// EditTextView is an editable text field.
type EditTextView interface {
	TextViewView
	SetHint(s string)
}

// EditableViewView wraps an EditTextView child. SetText forwards to the
// child only when the text differs, preserving the cursor; text changes made
// by the user are reported through the OnTextChanged callback.
type EditableViewView interface {
	ViewGroup
	SetText(s string)
	SetOnTextChanged(f func(string))
}

// Host creates host widgets. A host platform implements it and passes
// itself as the reconciler's host context.
type Host interface {
	NewLinearLayout() LinearLayoutView
	NewFrameLayout() ViewGroup
	NewScrollView() ViewGroup
	NewTextView() TextViewView
	NewButton() ButtonView
	NewEditText() EditTextView
	NewEditableView() EditableViewView
}

func factory[W host.Widget](fn func(Host) W) vnode.CreateFunc {
	return func(ctx host.Context) (host.Widget, error) {
		h, ok := ctx.(Host)
		if !ok {
			return nil, fmt.Errorf("%w (got %T)", ErrNoHost, ctx)
		}
		return fn(h), nil
	}
}
