// Package todo is the example application: a todo list with a text field,
// add and clear buttons, and a delete button per row.
package todo

import (
	"slices"
	"strings"

	"github.com/go-drift/vui/pkg/loop"
	"github.com/go-drift/vui/pkg/vnode"
	"github.com/go-drift/vui/pkg/widgets"
)

// Model is the application state. Values are treated as immutable.
type Model struct {
	Todos []string
	Text  string
}

// Msg is one user intent.
type Msg interface{ isMsg() }

type (
	// Add appends the current text as a new item and clears the field.
	Add struct{}
	// DeleteAll removes every item.
	DeleteAll struct{}
	// Delete removes every item titled Title.
	Delete struct{ Title string }
	// Changed records new field text.
	Changed struct{ Text string }
)

func (Add) isMsg()       {}
func (DeleteAll) isMsg() {}
func (Delete) isMsg()    {}
func (Changed) isMsg()   {}

// App is the todo component.
type App struct {
	// Initial seeds the model. The zero value starts empty.
	Initial Model
}

var _ loop.Component[Model, Msg] = App{}

func (a App) Init() Model { return a.Initial }

func (App) Update(m Model, msg Msg) Model {
	switch msg := msg.(type) {
	case Add:
		return Model{Todos: append(slices.Clone(m.Todos), m.Text)}
	case DeleteAll:
		return Model{Text: m.Text}
	case Delete:
		todos := slices.DeleteFunc(slices.Clone(m.Todos), func(s string) bool { return s == msg.Title })
		return Model{Todos: todos, Text: m.Text}
	case Changed:
		return Model{Todos: m.Todos, Text: msg.Text}
	}
	return m
}

func (App) View(b *vnode.Builder, m Model, dispatch func(Msg)) {
	widgets.LinearLayout(b, func(root widgets.LinearLayoutNode) {
		root.Orientation(widgets.Vertical)
		root.Padding(widgets.All(20))

		widgets.EditableView(b, func(e widgets.EditableViewNode) {
			e.OnTextChanged(func(s string) { dispatch(Changed{Text: s}) })
			e.Text(m.Text)

			widgets.EditText(b, func(et widgets.EditTextNode) {
				et.Hint("Enter text...")
			})
		})

		widgets.LinearLayout(b, func(bar widgets.LinearLayoutNode) {
			bar.Orientation(widgets.Horizontal)
			bar.Gravity(widgets.GravityEnd)

			widgets.Button(b, func(btn widgets.ButtonNode) {
				btn.Enabled(strings.TrimSpace(m.Text) != "")
				btn.Text("Add item")
				btn.OnClick(func() { dispatch(Add{}) })
			})
			widgets.Button(b, func(btn widgets.ButtonNode) {
				btn.Enabled(len(m.Todos) > 0)
				btn.Text("Clear all")
				btn.OnClick(func() { dispatch(DeleteAll{}) })
			})
		})

		widgets.ScrollView(b, func(widgets.FrameLayoutNode) {
			widgets.LinearLayout(b, func(list widgets.LinearLayoutNode) {
				list.Orientation(widgets.Vertical)
				for _, item := range m.Todos {
					viewItem(b, item, dispatch)
				}
			})
		})
	})
}

func viewItem(b *vnode.Builder, title string, dispatch func(Msg)) {
	widgets.LinearLayout(b, func(row widgets.LinearLayoutNode) {
		row.Orientation(widgets.Horizontal)

		widgets.FillHorizontal(widgets.TextView(b, func(t widgets.TextViewNode) {
			t.Text(title)
		}))
		widgets.Button(b, func(btn widgets.ButtonNode) {
			btn.Text("Delete")
			btn.OnClick(func() { dispatch(Delete{Title: title}) })
		})
	})
}

// Build renders m into a standalone tree. Callbacks are no-ops; the tree is
// meant for shipping to a running app.
func Build(m Model) (*vnode.Node, error) {
	b := vnode.NewBuilder()
	return b.Build(func() { App{}.View(b, m, func(Msg) {}) })
}
