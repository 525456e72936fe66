// Package host defines the minimal shape the reconciler needs from a
// platform widget library.
//
// Host widgets are long-lived, mutable objects owned by a single UI
// goroutine. The reconciler never retains them outside the live tree; it
// addresses them structurally through [Container] indices.
package host

// Widget is an opaque host widget. Property setters type-assert it to the
// concrete setter interface they need.
type Widget = any

// Context is passed to widget constructors. Its meaning is host specific
// (an application handle, a theme, a factory).
type Context = any

// Container is a host widget that holds an ordered child list.
type Container interface {
	// ChildCount returns the number of live children.
	ChildCount() int
	// ChildAt returns the child at index i.
	ChildAt(i int) Widget
	// InsertChild inserts w at index i, shifting later children right.
	// i == ChildCount() appends.
	InsertChild(i int, w Widget)
	// RemoveChildAt removes the child at index i.
	RemoveChildAt(i int)
}

// Disposer is implemented by host widgets that hold resources which must be
// released when the widget leaves the live tree.
type Disposer interface {
	Dispose()
}

// Dispose releases w and, for containers, every descendant first.
func Dispose(w Widget) {
	if c, ok := w.(Container); ok {
		for i := c.ChildCount() - 1; i >= 0; i-- {
			Dispose(c.ChildAt(i))
		}
	}
	if d, ok := w.(Disposer); ok {
		d.Dispose()
	}
}
