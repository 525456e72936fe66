package widgets

import (
	"image/color"

	"github.com/go-drift/vui/pkg/vnode"
)

// Viewer is implemented by every typed node wrapper.
type Viewer interface {
	Node() *vnode.Node
}

// ViewNode configures the properties shared by every widget.
type ViewNode struct {
	node *vnode.Node
}

// Node returns the underlying virtual node.
func (v ViewNode) Node() *vnode.Node { return v.node }

func (v ViewNode) BackgroundColor(c color.RGBA) { vnode.Set(v.node, backgroundColorProp, c) }
func (v ViewNode) Enabled(enabled bool)         { vnode.Set(v.node, enabledProp, enabled) }
func (v ViewNode) Padding(p Insets)             { vnode.Set(v.node, paddingProp, p) }
func (v ViewNode) Weight(w float64)             { vnode.Set(v.node, weightProp, w) }

// LinearLayoutNode configures a LinearLayout.
type LinearLayoutNode struct{ ViewNode }

func (l LinearLayoutNode) Orientation(o Orientation) { vnode.Set(l.node, orientationProp, o) }
func (l LinearLayoutNode) Gravity(g Gravity)         { vnode.Set(l.node, gravityProp, g) }

// FrameLayoutNode configures a FrameLayout or ScrollView.
type FrameLayoutNode struct{ ViewNode }

// TextViewNode configures a TextView.
type TextViewNode struct{ ViewNode }

func (t TextViewNode) Text(s string)            { vnode.Set(t.node, textProp, s) }
func (t TextViewNode) TextColor(c color.RGBA)   { vnode.Set(t.node, textColorProp, c) }
func (t TextViewNode) TextSize(size float64)    { vnode.Set(t.node, textSizeProp, size) }

// ButtonNode configures a Button.
type ButtonNode struct{ TextViewNode }

func (b ButtonNode) OnClick(f func()) { vnode.SetCallback(b.node, onClickProp, f) }

// EditTextNode configures an EditText.
type EditTextNode struct{ TextViewNode }

func (e EditTextNode) Hint(s string) { vnode.Set(e.node, hintProp, s) }

// EditableViewNode configures an EditableView.
type EditableViewNode struct{ ViewNode }

func (e EditableViewNode) Text(s string) { vnode.Set(e.node, editableTextProp, s) }

func (e EditableViewNode) OnTextChanged(f func(string)) {
	vnode.SetCallback(e.node, onTextChangedProp, f)
}

func LinearLayout(b *vnode.Builder, configure func(LinearLayoutNode)) LinearLayoutNode {
	return vnode.Element(b, LinearLayoutKind, func(n *vnode.Node) LinearLayoutNode {
		return LinearLayoutNode{ViewNode{n}}
	}, configure)
}

func FrameLayout(b *vnode.Builder, configure func(FrameLayoutNode)) FrameLayoutNode {
	return vnode.Element(b, FrameLayoutKind, wrapFrame, configure)
}

func ScrollView(b *vnode.Builder, configure func(FrameLayoutNode)) FrameLayoutNode {
	return vnode.Element(b, ScrollViewKind, wrapFrame, configure)
}

func TextView(b *vnode.Builder, configure func(TextViewNode)) TextViewNode {
	return vnode.Element(b, TextViewKind, func(n *vnode.Node) TextViewNode {
		return TextViewNode{ViewNode{n}}
	}, configure)
}

func Button(b *vnode.Builder, configure func(ButtonNode)) ButtonNode {
	return vnode.Element(b, ButtonKind, func(n *vnode.Node) ButtonNode {
		return ButtonNode{TextViewNode{ViewNode{n}}}
	}, configure)
}

func EditText(b *vnode.Builder, configure func(EditTextNode)) EditTextNode {
	return vnode.Element(b, EditTextKind, func(n *vnode.Node) EditTextNode {
		return EditTextNode{TextViewNode{ViewNode{n}}}
	}, configure)
}

func EditableView(b *vnode.Builder, configure func(EditableViewNode)) EditableViewNode {
	return vnode.Element(b, EditableViewKind, func(n *vnode.Node) EditableViewNode {
		return EditableViewNode{ViewNode{n}}
	}, configure)
}

func wrapFrame(n *vnode.Node) FrameLayoutNode { return FrameLayoutNode{ViewNode{n}} }

// FillHorizontal gives v a layout weight of 1 so it takes the remaining
// space of its LinearLayout.
func FillHorizontal[V Viewer](v V) V {
	vnode.Set(v.Node(), weightProp, 1.0)
	return v
}

// Border wraps the element built by child in a FrameLayout padded by all
// on every side.
func Border(b *vnode.Builder, all int, child func()) FrameLayoutNode {
	return FrameLayout(b, func(f FrameLayoutNode) {
		f.Padding(All(all))
		child()
	})
}
