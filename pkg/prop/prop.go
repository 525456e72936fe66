// Package prop provides change-tracked bindings between logical values and
// setters on host widgets.
//
// A property definition is declared once per widget kind (typically as a
// package-level variable) and acts as a template: every virtual node gets
// fresh instances through [Prop.New], so instances are never shared between
// nodes or reconciliation cycles.
//
//	var textProp = prop.New("text", "", func(w TextSetter, v string) { w.SetText(v) })
//
// Value properties compare with ==. Callback properties cannot be compared
// meaningfully and are modelled as always changed; hosts must tolerate
// idempotent re-registration of callbacks.
package prop

import (
	"errors"
	"fmt"

	"github.com/go-drift/vui/pkg/host"
)

var (
	// ErrOwnerMismatch is returned when a host widget does not implement the
	// setter interface a property is bound to.
	ErrOwnerMismatch = errors.New("prop: owner does not accept this property")

	// ErrTransient is returned when decoding is requested for a property
	// that is never serialized.
	ErrTransient = errors.New("prop: transient property cannot be decoded")
)

// Prop is the type-erased view of a property instance held by a virtual node.
type Prop interface {
	// Name is the logical property name, unique within a kind.
	Name() string
	// Value returns the current value.
	Value() any
	// IsSet reports whether the value was explicitly set.
	IsSet() bool
	// HasDefault reports whether the property has a default value. A
	// property without a default always participates in diffing.
	HasDefault() bool
	// Transient reports whether the property is excluded from serialization.
	Transient() bool
	// AtDefault reports whether the value equals the default. Properties
	// without a default, and callbacks, are never at their default.
	AtDefault() bool

	Dirty() bool
	MarkDirty()
	MarkClean()

	// Differs reports whether applying this property would change an owner
	// that last received prev. A nil prev always differs.
	Differs(prev Prop) bool
	// ApplyTo invokes the setter on owner if the property is dirty, then
	// clears the dirty flag. It reports whether the setter ran.
	ApplyTo(owner host.Widget) (bool, error)
	// ResetOn applies the default value to owner. Properties without a
	// default do nothing.
	ResetOn(owner host.Widget) (bool, error)

	// New returns a fresh, unset instance of the same definition.
	New() Prop
	// Decode returns a fresh instance whose value is filled by decode.
	Decode(decode func(v any) error) (Prop, error)
}

// Property binds a comparable value of type T to a setter on host widgets of
// type W.
type Property[W any, T comparable] struct {
	name       string
	value      T
	def        T
	hasDefault bool
	set        func(W, T)
	dirty      bool
	isSet      bool
}

// New declares a property with a default value. It is treated as absent
// until explicitly set.
func New[W any, T comparable](name string, def T, set func(W, T)) *Property[W, T] {
	return &Property[W, T]{name: name, value: def, def: def, hasDefault: true, set: set}
}

// Required declares a property without a default. It always participates in
// diffing, even when never set.
func Required[W any, T comparable](name string, set func(W, T)) *Property[W, T] {
	return &Property[W, T]{name: name, set: set, dirty: true}
}

// Set records v, marking the property dirty if v differs from the current
// value.
func (p *Property[W, T]) Set(v T) {
	if v != p.value {
		p.dirty = true
	}
	p.value = v
	p.isSet = true
}

// Get returns the current value.
func (p *Property[W, T]) Get() T { return p.value }

// Default returns the default value (the zero value for required properties).
func (p *Property[W, T]) Default() T { return p.def }

func (p *Property[W, T]) Name() string     { return p.name }
func (p *Property[W, T]) Value() any       { return p.value }
func (p *Property[W, T]) IsSet() bool      { return p.isSet }
func (p *Property[W, T]) HasDefault() bool { return p.hasDefault }
func (p *Property[W, T]) Transient() bool  { return false }
func (p *Property[W, T]) AtDefault() bool  { return p.hasDefault && p.value == p.def }
func (p *Property[W, T]) Dirty() bool      { return p.dirty }
func (p *Property[W, T]) MarkDirty()       { p.dirty = true }
func (p *Property[W, T]) MarkClean()       { p.dirty = false }

func (p *Property[W, T]) Differs(prev Prop) bool {
	if prev == nil {
		return true
	}
	q, ok := prev.(*Property[W, T])
	if !ok {
		return true
	}
	return p.value != q.value
}

func (p *Property[W, T]) ApplyTo(owner host.Widget) (bool, error) {
	if !p.dirty {
		return false, nil
	}
	w, ok := owner.(W)
	if !ok {
		return false, fmt.Errorf("%w: %s on %T", ErrOwnerMismatch, p.name, owner)
	}
	p.set(w, p.value)
	p.dirty = false
	return true, nil
}

func (p *Property[W, T]) ResetOn(owner host.Widget) (bool, error) {
	if !p.hasDefault {
		return false, nil
	}
	w, ok := owner.(W)
	if !ok {
		return false, fmt.Errorf("%w: %s on %T", ErrOwnerMismatch, p.name, owner)
	}
	p.set(w, p.def)
	return true, nil
}

func (p *Property[W, T]) New() Prop {
	return p.fresh()
}

func (p *Property[W, T]) fresh() *Property[W, T] {
	return &Property[W, T]{
		name:       p.name,
		value:      p.def,
		def:        p.def,
		hasDefault: p.hasDefault,
		set:        p.set,
		dirty:      !p.hasDefault,
	}
}

func (p *Property[W, T]) Decode(decode func(v any) error) (Prop, error) {
	var v T
	if err := decode(&v); err != nil {
		return nil, fmt.Errorf("prop %s: %w", p.name, err)
	}
	c := p.fresh()
	c.Set(v)
	return c, nil
}

// Callback binds a callback value of type F (usually a func type) to a setter
// on host widgets of type W. Callbacks always count as changed and are never
// serialized.
type Callback[W any, F any] struct {
	name  string
	value F
	set   func(W, F)
	dirty bool
	isSet bool
}

// NewCallback declares a callback property.
func NewCallback[W any, F any](name string, set func(W, F)) *Callback[W, F] {
	return &Callback[W, F]{name: name, set: set}
}

// Set records f and marks the property dirty.
func (c *Callback[W, F]) Set(f F) {
	c.value = f
	c.dirty = true
	c.isSet = true
}

// Get returns the current callback.
func (c *Callback[W, F]) Get() F { return c.value }

func (c *Callback[W, F]) Name() string          { return c.name }
func (c *Callback[W, F]) Value() any            { return c.value }
func (c *Callback[W, F]) IsSet() bool           { return c.isSet }
func (c *Callback[W, F]) HasDefault() bool      { return true }
func (c *Callback[W, F]) Transient() bool       { return true }
func (c *Callback[W, F]) AtDefault() bool       { return false }
func (c *Callback[W, F]) Dirty() bool           { return c.dirty }
func (c *Callback[W, F]) MarkDirty()            { c.dirty = true }
func (c *Callback[W, F]) MarkClean()            { c.dirty = false }
func (c *Callback[W, F]) Differs(prev Prop) bool { return true }

func (c *Callback[W, F]) ApplyTo(owner host.Widget) (bool, error) {
	if !c.dirty {
		return false, nil
	}
	w, ok := owner.(W)
	if !ok {
		return false, fmt.Errorf("%w: %s on %T", ErrOwnerMismatch, c.name, owner)
	}
	c.set(w, c.value)
	c.dirty = false
	return true, nil
}

func (c *Callback[W, F]) ResetOn(owner host.Widget) (bool, error) {
	w, ok := owner.(W)
	if !ok {
		return false, fmt.Errorf("%w: %s on %T", ErrOwnerMismatch, c.name, owner)
	}
	var zero F
	c.set(w, zero)
	return true, nil
}

func (c *Callback[W, F]) New() Prop {
	return &Callback[W, F]{name: c.name, set: c.set}
}

func (c *Callback[W, F]) Decode(func(v any) error) (Prop, error) {
	return nil, fmt.Errorf("%w: %s", ErrTransient, c.name)
}
