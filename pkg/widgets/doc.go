// Package widgets is the widget vocabulary: the kinds a tree may contain,
// their properties, and typed builder helpers.
//
// # Kinds
//
// Kinds form a small hierarchy. Every kind inherits the View properties
// (background colour, enabled, padding, weight):
//
//	View
//	├── ViewGroup (abstract group)
//	│   ├── LinearLayout (orientation, gravity)
//	│   └── FrameLayout
//	│       ├── ScrollView
//	│       └── EditableView (required text, onTextChanged)
//	└── TextView (text, text colour, text size)
//	    ├── Button   (onClick)
//	    └── EditText (hint)
//
// Registry returns the set at VocabularyVersion. Peers exchanging trees
// must agree on the major version.
//
// # Building Trees
//
// Each kind has a builder function taking the build context and a
// configure callback. Children are built inside the parent's callback:
//
//	tree, err := b.Build(func() {
//	    widgets.LinearLayout(b, func(col widgets.LinearLayoutNode) {
//	        col.Orientation(widgets.Vertical)
//	        widgets.TextView(b, func(t widgets.TextViewNode) {
//	            t.Text("hello")
//	        })
//	    })
//	})
//
// # Hosts
//
// A platform provides the actual widgets by implementing Host and passing
// it as the reconciler's host context. Widgets are created only through
// Host and changed only through the setter interfaces in this package.
package widgets
