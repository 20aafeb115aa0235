package character

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// guarded is a state whose guards tests flip directly.
type guarded struct {
	name    string
	enter   bool
	exit    bool
	entered int
	exited  int
}

func newGuarded(name string) *guarded {
	return &guarded{name: name, enter: true, exit: true}
}

func (g *guarded) Name() string                     { return g.name }
func (g *guarded) CanEnter() bool                   { return g.enter }
func (g *guarded) CanExit() bool                    { return g.exit }
func (g *guarded) MovementSpeedMultiplier() float64 { return 1 }
func (g *guarded) CanTurn() bool                    { return true }
func (g *guarded) Enter()                           { g.entered++ }
func (g *guarded) Exit()                            { g.exited++ }
func (g *guarded) Update(time.Duration)             {}

func TestStateMachine_SetDefaultEntersWhenEmpty(t *testing.T) {
	var m StateMachine
	idle := newGuarded("idle")
	m.SetDefault(idle)

	assert.Equal(t, idle, m.Current())
	assert.Equal(t, 1, idle.entered)

	other := newGuarded("other")
	m.SetDefault(other)
	assert.Equal(t, idle, m.Current(), "default only auto-enters when no state is active")
}

func TestStateMachine_TrySetState_Guards(t *testing.T) {
	var m StateMachine
	idle := newGuarded("idle")
	attack := newGuarded("attack")
	jump := newGuarded("jump")
	m.SetDefault(idle)

	jump.enter = false
	assert.False(t, m.TrySetState(jump))
	assert.Equal(t, idle, m.Current())

	require.True(t, m.TrySetState(attack))
	assert.Equal(t, 1, idle.exited)

	attack.exit = false
	assert.False(t, m.TrySetState(idle))
	assert.False(t, m.TrySetDefaultState())
	assert.Equal(t, attack, m.Current())

	m.ForceSetDefaultState()
	assert.Equal(t, idle, m.Current())
	assert.Equal(t, 1, attack.exited)
}

func TestStateMachine_TrySameStateIsNoop(t *testing.T) {
	var m StateMachine
	idle := newGuarded("idle")
	m.SetDefault(idle)
	idle.exit = false

	assert.True(t, m.TrySetState(idle))
	assert.Equal(t, 1, idle.entered)
	assert.Equal(t, 0, idle.exited)
}

func TestStateMachine_ForceReentersCurrent(t *testing.T) {
	var m StateMachine
	s := newGuarded("flinch")
	m.ForceSetState(s)
	m.ForceSetState(s)

	assert.Equal(t, 2, s.entered)
	assert.Equal(t, 1, s.exited)
}

func TestStateMachine_TrySetAny(t *testing.T) {
	var m StateMachine
	a := newGuarded("a")
	b := newGuarded("b")
	c := newGuarded("c")
	a.enter = false

	assert.Equal(t, State(b), m.CanSetAny(nil, a, b, c))
	assert.Nil(t, m.CanSetAny(a))

	assert.True(t, m.TrySetAny(nil, a, b, c))
	assert.Equal(t, b, m.Current())
	assert.Equal(t, 0, c.entered)

	b.exit = false
	assert.Nil(t, m.CanSetAny(c))
	assert.False(t, m.TrySetAny(c))
}

func TestStateMachine_Listeners(t *testing.T) {
	var m StateMachine
	var got []Transition
	m.OnTransition(func(tr Transition) { got = append(got, tr) })

	idle := newGuarded("idle")
	move := newGuarded("move")
	m.SetDefault(idle)
	m.TrySetState(move)
	m.ForceSetState(nil)

	require.Len(t, got, 3)
	assert.Nil(t, got[0].From)
	assert.True(t, got[0].Forced)
	assert.Equal(t, "idle", StateName(got[1].From))
	assert.Equal(t, "move", StateName(got[1].To))
	assert.False(t, got[1].Forced)
	assert.Equal(t, "none", StateName(got[2].To))
	assert.Nil(t, m.Current())
}
