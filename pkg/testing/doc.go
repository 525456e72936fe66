// Package testing provides a recording host for testing vui trees.
//
// # Quick Start
//
// Mount a tree on a fake host, then assert on the calls it recorded:
//
//	func TestGreeting(t *testing.T) {
//	    host := vuitest.NewHost()
//	    root := host.NewRoot()
//	    session := reconcile.NewSession(reconcile.New(host, nil), root)
//	    session.Apply(tree)
//
//	    if root.Find("TextView", "hello") == nil {
//	        t.Error("expected a hello label")
//	    }
//	    if n := host.Setters(); n != 3 {
//	        t.Errorf("setters = %d, want 3", n)
//	    }
//	}
//
// # Interaction
//
// Tap fires a button's click callback, Type edits an EditText the way a
// user would and notifies the enclosing EditableView:
//
//	root.Find("EditText", "").Type("milk")
//	root.Find("Button", "Add item").Tap()
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import vuitest "github.com/go-drift/vui/pkg/testing"
package testing
