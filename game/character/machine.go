package character

import "time"

// State is one mutually exclusive action a character can be in.
type State interface {
	Name() string
	CanEnter() bool
	CanExit() bool
	// MovementSpeedMultiplier scales the character's walking speed while in this state.
	MovementSpeedMultiplier() float64
	CanTurn() bool
	Enter()
	Exit()
	Update(dt time.Duration)
}

// Transition records one change of state. From or To may be nil.
type Transition struct {
	From   State
	To     State
	Forced bool
}

// StateMachine keeps track of the current state and a default to fall back to.
type StateMachine struct {
	current   State
	def       State
	listeners []func(Transition)
}

// Current returns the active state, or nil if there is none.
func (m *StateMachine) Current() State { return m.current }

// Default returns the state used by TrySetDefaultState and ForceSetDefaultState.
func (m *StateMachine) Default() State { return m.def }

// SetDefault sets the fallback state. If no state is active yet, s is entered.
func (m *StateMachine) SetDefault(s State) {
	m.def = s
	if m.current == nil && s != nil {
		m.ForceSetState(s)
	}
}

// OnTransition registers fn to run after every state change.
func (m *StateMachine) OnTransition(fn func(Transition)) {
	m.listeners = append(m.listeners, fn)
}

// CanSetState reports whether TrySetState(s) would succeed.
// Re-selecting the current state always succeeds without re-entering it.
func (m *StateMachine) CanSetState(s State) bool {
	if s == m.current {
		return true
	}
	if m.current != nil && !m.current.CanExit() {
		return false
	}
	return s == nil || s.CanEnter()
}

// TrySetState enters s if it allows entry and the current state allows exit.
func (m *StateMachine) TrySetState(s State) bool {
	if s == m.current {
		return true
	}
	if !m.CanSetState(s) {
		return false
	}
	m.change(s, false)
	return true
}

// CanSetAny returns the first of states that TrySetState would accept, or nil.
func (m *StateMachine) CanSetAny(states ...State) State {
	for _, s := range states {
		if s != nil && m.CanSetState(s) {
			return s
		}
	}
	return nil
}

// TrySetAny tries each state in order and stops at the first that succeeds.
func (m *StateMachine) TrySetAny(states ...State) bool {
	for _, s := range states {
		if s != nil && m.TrySetState(s) {
			return true
		}
	}
	return false
}

// ForceSetState enters s without checking either guard. Forcing the current
// state exits and re-enters it.
func (m *StateMachine) ForceSetState(s State) {
	m.change(s, true)
}

// TrySetDefaultState is TrySetState on the default state.
func (m *StateMachine) TrySetDefaultState() bool {
	return m.TrySetState(m.def)
}

// ForceSetDefaultState is ForceSetState on the default state.
func (m *StateMachine) ForceSetDefaultState() {
	m.ForceSetState(m.def)
}

func (m *StateMachine) change(s State, forced bool) {
	prev := m.current
	if prev != nil {
		prev.Exit()
	}
	m.current = s
	// Listeners see this transition before Enter can chain into another one.
	t := Transition{From: prev, To: s, Forced: forced}
	for _, fn := range m.listeners {
		fn(t)
	}
	if s != nil {
		s.Enter()
	}
}

// StateName returns s.Name(), or "none" for nil.
func StateName(s State) string {
	if s == nil {
		return "none"
	}
	return s.Name()
}
