package widgets

import (
	"image/color"
	"sync"

	"github.com/go-drift/vui/pkg/prop"
	"github.com/go-drift/vui/pkg/vnode"
)

// VocabularyVersion is the version of the tag and property set below. Bump
// the major version when a tag or property type is removed or changed, the
// minor version when one is added.
const VocabularyVersion = "v1.0.0"

var (
	backgroundColorProp = prop.New("backgroundColor", color.RGBA{}, View.SetBackgroundColor)
	enabledProp         = prop.New("enabled", true, View.SetEnabled)
	paddingProp         = prop.New("padding", Insets{}, View.SetPadding)
	weightProp          = prop.New("weight", 0.0, View.SetWeight)

	orientationProp = prop.New("orientation", Horizontal, LinearLayoutView.SetOrientation)
	gravityProp     = prop.New("gravity", GravityStart, LinearLayoutView.SetGravity)

	textProp      = prop.New("text", "", TextViewView.SetText)
	textColorProp = prop.New("textColor", color.RGBA{}, TextViewView.SetTextColor)
	textSizeProp  = prop.New("textSize", 0.0, TextViewView.SetTextSize)

	onClickProp = prop.NewCallback("onClick", ButtonView.SetOnClick)

	hintProp = prop.New("hint", "", EditTextView.SetHint)

	editableTextProp  = prop.Required("text", EditableViewView.SetText)
	onTextChangedProp = prop.NewCallback("onTextChanged", EditableViewView.SetOnTextChanged)
)

// Kinds. View and ViewGroup are abstract bases.
var (
	ViewKind = vnode.NewKind("View", nil,
		vnode.Props(backgroundColorProp, enabledProp, paddingProp, weightProp))

	ViewGroupKind = vnode.NewKind("ViewGroup", nil, vnode.Group(), vnode.Extends(ViewKind))

	LinearLayoutKind = vnode.NewKind("LinearLayout",
		factory(Host.NewLinearLayout),
		vnode.Extends(ViewGroupKind),
		vnode.Props(orientationProp, gravityProp))

	FrameLayoutKind = vnode.NewKind("FrameLayout",
		factory(Host.NewFrameLayout),
		vnode.Extends(ViewGroupKind))

	ScrollViewKind = vnode.NewKind("ScrollView",
		factory(Host.NewScrollView),
		vnode.Extends(FrameLayoutKind))

	TextViewKind = vnode.NewKind("TextView",
		factory(Host.NewTextView),
		vnode.Extends(ViewKind),
		vnode.Props(textProp, textColorProp, textSizeProp))

	ButtonKind = vnode.NewKind("Button",
		factory(Host.NewButton),
		vnode.Extends(TextViewKind),
		vnode.Props(onClickProp))

	EditTextKind = vnode.NewKind("EditText",
		factory(Host.NewEditText),
		vnode.Extends(TextViewKind),
		vnode.Props(hintProp))

	EditableViewKind = vnode.NewKind("EditableView",
		factory(Host.NewEditableView),
		vnode.Extends(FrameLayoutKind),
		vnode.Props(editableTextProp, onTextChangedProp))
)

var (
	registryOnce sync.Once
	registry     *vnode.Registry
)

// Registry returns the capability table for every concrete kind in this
// package.
func Registry() *vnode.Registry {
	registryOnce.Do(func() {
		registry = vnode.NewRegistry(VocabularyVersion).Register(
			LinearLayoutKind,
			FrameLayoutKind,
			ScrollViewKind,
			TextViewKind,
			ButtonKind,
			EditTextKind,
			EditableViewKind,
		)
	})
	return registry
}
