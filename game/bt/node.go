package bt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoChildren is returned by ChildAt on condition and leaf nodes.
	// It wraps errors.ErrUnsupported: callers must check ChildCount first.
	ErrNoChildren = fmt.Errorf("bt: node has no children: %w", errors.ErrUnsupported)
	// ErrChildIndex is returned by ChildAt when the index is outside [0, ChildCount).
	ErrChildIndex = errors.New("bt: child index out of range")
)

// Node is a single node in a behaviour tree.
//
// Execute may be called every tick and must leave the node ready for the next call.
// Child slots may hold nil, which means "no node here".
type Node interface {
	Execute() Result
	ChildCount() int
	ChildAt(index int) (Node, error)
}

// Leaf is embedded by nodes that structurally cannot have children.
type Leaf struct{}

func (Leaf) ChildCount() int { return 0 }

func (Leaf) ChildAt(int) (Node, error) { return nil, ErrNoChildren }

// Collect returns root and all of its descendants in pre-order.
// Nil nodes contribute nothing, not even themselves.
func Collect(root Node) []Node {
	var list []Node
	Walk(root, func(_ int, n Node) {
		list = append(list, n)
	})
	return list
}

// Walk visits root and its descendants in pre-order, skipping nil slots.
// depth is 0 for root.
func Walk(root Node, fn func(depth int, n Node)) {
	walk(root, 0, fn)
}

func walk(n Node, depth int, fn func(int, Node)) {
	if n == nil {
		return
	}
	fn(depth, n)
	count := n.ChildCount()
	for i := 0; i < count; i++ {
		child, err := n.ChildAt(i)
		if err != nil {
			// ChildCount promised this index exists.
			panic(fmt.Sprintf("bt: %s reported %d children but ChildAt(%d) failed: %v", Describe(n), count, i, err))
		}
		walk(child, depth+1, fn)
	}
}

// Named is implemented by nodes that want a custom label in dumps.
type Named interface {
	NodeName() string
}

// Describe returns a short label for n, used by logs and the debug API.
func Describe(n Node) string {
	if n == nil {
		return "<nil>"
	}
	if named, ok := n.(Named); ok {
		return named.NodeName()
	}
	name := fmt.Sprintf("%T", n)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Dump renders the tree as indented lines, one node per line.
func Dump(root Node) string {
	var b strings.Builder
	Walk(root, func(depth int, n Node) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(Describe(n))
		b.WriteByte('\n')
	})
	return b.String()
}
