package vnode

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node (and its live host widget) structurally: the
// sequence of child indices from the root. The root itself is the empty path.
type Path []int

// Append returns a new path extended by child index i.
func (p Path) Append(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, i := range p {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(path Path, n *Node) bool) {
	walk(n, nil, fn)
}

func walk(n *Node, path Path, fn func(Path, *Node) bool) {
	if n == nil || !fn(path, n) {
		return
	}
	for i, c := range n.children {
		walk(c, path.Append(i), fn)
	}
}

// Dump renders the tree as indented text, one node per line with its
// non-transient properties. Used by diagnostics and tests.
func Dump(n *Node) string {
	var sb strings.Builder
	Walk(n, func(path Path, n *Node) bool {
		sb.WriteString(strings.Repeat("  ", len(path)))
		sb.WriteString(n.Tag())
		for _, p := range n.props {
			if p.Transient() {
				continue
			}
			sb.WriteByte(' ')
			sb.WriteString(p.Name())
			sb.WriteByte('=')
			sb.WriteString(strconv.Quote(fmt.Sprint(p.Value())))
		}
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}
