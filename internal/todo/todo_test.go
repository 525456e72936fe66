package todo

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/vui/pkg/vnode"
)

func TestUpdate(t *testing.T) {
	tests := []struct {
		name  string
		model Model
		msg   Msg
		want  Model
	}{
		{
			name:  "add appends text and clears field",
			model: Model{Todos: []string{"eggs"}, Text: "milk"},
			msg:   Add{},
			want:  Model{Todos: []string{"eggs", "milk"}},
		},
		{
			name:  "delete all keeps text",
			model: Model{Todos: []string{"eggs", "milk"}, Text: "tea"},
			msg:   DeleteAll{},
			want:  Model{Text: "tea"},
		},
		{
			name:  "delete removes every match",
			model: Model{Todos: []string{"milk", "eggs", "milk"}},
			msg:   Delete{Title: "milk"},
			want:  Model{Todos: []string{"eggs"}},
		},
		{
			name:  "changed replaces text",
			model: Model{Todos: []string{"eggs"}, Text: "m"},
			msg:   Changed{Text: "mi"},
			want:  Model{Todos: []string{"eggs"}, Text: "mi"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := App{}.Update(tt.model, tt.msg)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Update mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateDoesNotMutateInput(t *testing.T) {
	todos := []string{"eggs", "milk"}
	App{}.Update(Model{Todos: todos}, Delete{Title: "eggs"})
	if diff := cmp.Diff([]string{"eggs", "milk"}, todos); diff != "" {
		t.Errorf("input slice modified (-want +got):\n%s", diff)
	}
}

func TestBuild(t *testing.T) {
	tree, err := Build(Model{Todos: []string{"milk"}, Text: "tea"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var rows []string
	vnode.Walk(tree, func(p vnode.Path, n *vnode.Node) bool {
		if n.Tag() == "TextView" {
			rows = append(rows, p.String())
		}
		return true
	})
	if diff := cmp.Diff([]string{"/2/0/0/0"}, rows); diff != "" {
		t.Errorf("text rows mismatch (-want +got):\n%s", diff)
	}
	if got := tree.Child(0).Prop("text").Value(); got != "tea" {
		t.Errorf("field text = %v, want tea", got)
	}
}
