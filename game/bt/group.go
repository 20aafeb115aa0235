package bt

// ---- Group nodes ----

// Group holds an ordered list of children. Nil entries are skipped.
type Group struct {
	Children []Node
}

func (g *Group) ChildCount() int { return len(g.Children) }

func (g *Group) ChildAt(index int) (Node, error) {
	if index < 0 || index >= len(g.Children) {
		return nil, ErrChildIndex
	}
	return g.Children[index], nil
}

// Sequence passes only when every child passes (logical AND).
// It stops at the first child that does not pass and returns that result.
type Sequence struct {
	Group
}

// NewSequence creates a Sequence over children.
func NewSequence(children ...Node) *Sequence {
	return &Sequence{Group{Children: children}}
}

func (s *Sequence) Execute() Result {
	for _, c := range s.Children {
		if c == nil {
			continue
		}
		if r := c.Execute(); r != Pass {
			return r
		}
	}
	return Pass
}

// Selector passes as soon as one child does not fail (logical OR).
// An empty Selector fails.
type Selector struct {
	Group
}

// NewSelector creates a Selector over children.
func NewSelector(children ...Node) *Selector {
	return &Selector{Group{Children: children}}
}

func (s *Selector) Execute() Result {
	for _, c := range s.Children {
		if c == nil {
			continue
		}
		if r := c.Execute(); r != Fail {
			return r
		}
	}
	return Fail
}
