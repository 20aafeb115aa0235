// Package ambient provides a scoped "current value" slot for code that reads
// shared context deep inside a call tree, such as behaviour tree nodes reading
// the character being evaluated.
//
// A Slot is owned by one evaluation task (one goroutine at a time). Independent
// tasks use independent slots, so they never see each other's values.
package ambient

// Slot holds the current value of type T for one evaluation task.
type Slot[T any] struct {
	current T
	depth   int
}

// NewSlot returns an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{}
}

// Current returns the innermost entered value, or the zero value outside any scope.
func (s *Slot[T]) Current() T {
	return s.current
}

// Active reports whether at least one scope is open.
func (s *Slot[T]) Active() bool {
	return s.depth > 0
}

// Depth returns the number of open scopes.
func (s *Slot[T]) Depth() int {
	return s.depth
}

// Enter makes v the current value until the returned scope is exited.
// Every Enter must be paired with exactly one Exit; prefer Do, or defer Exit.
func (s *Slot[T]) Enter(v T) *Scope[T] {
	sc := &Scope[T]{slot: s, previous: s.current}
	s.current = v
	s.depth++
	return sc
}

// Reset clears the slot and reports whether it was left active.
func (s *Slot[T]) Reset() (leaked bool) {
	leaked = s.depth > 0
	var zero T
	s.current = zero
	s.depth = 0
	return leaked
}

// Scope restores the previous value of its slot on Exit.
type Scope[T any] struct {
	slot     *Slot[T]
	previous T
	exited   bool
}

// Exit restores the value that was current before the scope was entered.
// Calling Exit more than once has no further effect.
func (sc *Scope[T]) Exit() {
	if sc.exited {
		return
	}
	sc.exited = true
	sc.slot.current = sc.previous
	sc.slot.depth--
}

// Do runs fn with v as the current value of s. The previous value is restored
// when fn returns or panics.
func Do[T any](s *Slot[T], v T, fn func()) {
	sc := s.Enter(v)
	defer sc.Exit()
	fn()
}
