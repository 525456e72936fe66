package vnode

import (
	"fmt"

	"github.com/go-drift/vui/pkg/host"
	"github.com/go-drift/vui/pkg/prop"
)

// CreateFunc instantiates a fresh host widget of a kind.
type CreateFunc func(ctx host.Context) (host.Widget, error)

// Kind describes one widget variant: its stable type tag, whether it holds
// children, how to create its host widget and which properties it accepts.
//
// Kinds are declared once, usually as package-level variables, and are
// immutable after registration.
type Kind struct {
	tag      string
	group    bool
	abstract bool
	create   CreateFunc
	props    []prop.Prop
	index    map[string]int
}

// KindOption configures a Kind.
type KindOption func(*Kind)

// Group marks the kind as a container of child nodes.
func Group() KindOption {
	return func(k *Kind) { k.group = true }
}

// Extends copies the parent's group flag and properties ahead of the kind's
// own, mirroring a widget class hierarchy.
func Extends(parent *Kind) KindOption {
	return func(k *Kind) {
		k.group = k.group || parent.group
		for _, p := range parent.props {
			k.addProp(p)
		}
	}
}

// Props declares the kind's properties in declaration order.
func Props(props ...prop.Prop) KindOption {
	return func(k *Kind) {
		for _, p := range props {
			k.addProp(p)
		}
	}
}

// NewKind declares a concrete kind. A nil create makes the kind abstract:
// it can be extended but never instantiated.
func NewKind(tag string, create CreateFunc, opts ...KindOption) *Kind {
	k := &Kind{tag: tag, create: create, abstract: create == nil, index: make(map[string]int)}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Kind) addProp(p prop.Prop) {
	if _, dup := k.index[p.Name()]; dup {
		panic(fmt.Sprintf("vnode: kind %s declares property %q twice", k.tag, p.Name()))
	}
	k.index[p.Name()] = len(k.props)
	k.props = append(k.props, p)
}

// Tag returns the stable type tag.
func (k *Kind) Tag() string { return k.tag }

// IsGroup reports whether nodes of this kind hold children.
func (k *Kind) IsGroup() bool { return k.group }

// IsAbstract reports whether the kind cannot be instantiated.
func (k *Kind) IsAbstract() bool { return k.abstract }

// Prop returns the property template with the given name.
func (k *Kind) Prop(name string) (prop.Prop, bool) {
	i, ok := k.index[name]
	if !ok {
		return nil, false
	}
	return k.props[i], true
}

// PropNames returns the declared property names in declaration order.
func (k *Kind) PropNames() []string {
	names := make([]string, len(k.props))
	for i, p := range k.props {
		names[i] = p.Name()
	}
	return names
}

// Create instantiates a fresh host widget.
func (k *Kind) Create(ctx host.Context) (host.Widget, error) {
	if k.create == nil {
		return nil, fmt.Errorf("%w: %s is abstract", ErrNoConstructor, k.tag)
	}
	w, err := k.create(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoConstructor, k.tag, err)
	}
	if w == nil {
		return nil, fmt.Errorf("%w: %s returned nil", ErrNoConstructor, k.tag)
	}
	return w, nil
}

func (k *Kind) String() string { return k.tag }
