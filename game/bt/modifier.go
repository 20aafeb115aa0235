package bt

// ---- Modifier nodes ----

// Modifier wraps exactly one child slot and returns its result unchanged.
// With no child it fails.
type Modifier struct {
	Child Node
}

func (m *Modifier) ChildCount() int { return 1 }

func (m *Modifier) ChildAt(index int) (Node, error) {
	if index != 0 {
		return nil, ErrChildIndex
	}
	return m.Child, nil
}

func (m *Modifier) Execute() Result {
	if m.Child == nil {
		return Fail
	}
	return m.Child.Execute()
}

// Invert negates the result of its child.
// A missing child yields Pass, unlike the Modifier base which fails.
type Invert struct {
	Modifier
}

// NewInvert wraps child.
func NewInvert(child Node) *Invert {
	return &Invert{Modifier{Child: child}}
}

func (i *Invert) Execute() Result {
	if i.Child == nil {
		return Pass
	}
	return i.Child.Execute().Invert()
}

// Ignore runs its child for the side effects and always returns Result.
type Ignore struct {
	Modifier
	Result Result
}

// NewIgnore wraps child and returns Pass regardless of its outcome.
func NewIgnore(child Node) *Ignore {
	return &Ignore{Modifier: Modifier{Child: child}, Result: Pass}
}

func (i *Ignore) Execute() Result {
	if i.Child != nil {
		i.Child.Execute()
	}
	return i.Result
}
