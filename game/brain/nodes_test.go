package brain

import (
	"testing"
	"time"

	"github.com/kasuganosora/platformerkit/server/game/ambient"
	"github.com/kasuganosora/platformerkit/server/game/bt"
	"github.com/kasuganosora/platformerkit/server/game/character"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEnv struct {
	wall, ground bool
	targets      []*character.Character
}

func (e *stubEnv) WallAhead(*character.Character, float64) bool   { return e.wall }
func (e *stubEnv) GroundAhead(*character.Character, float64) bool { return e.ground }
func (e *stubEnv) TargetsAhead(*character.Character, float64) []*character.Character {
	return e.targets
}

func newTestCharacter(t *testing.T, name string, team *character.Team) *character.Character {
	t.Helper()
	c := character.New(name, character.NewHealth(10, team))
	idle := character.NewLocomotion(c, "idle")
	require.NoError(t, c.AddState(idle))
	require.NoError(t, c.AddState(character.NewAttack(c, "attack", 500*time.Millisecond, 1, 1)))
	require.NoError(t, c.AddState(character.NewFlinch(c, "flinch", 200*time.Millisecond, 200*time.Millisecond)))
	c.StateMachine.SetDefault(idle)
	c.Env = &stubEnv{}
	return c
}

func run(ctx *Context, c *character.Character, n bt.Node) bt.Result {
	var r bt.Result
	ambient.Do(ctx, c, func() { r = n.Execute() })
	return r
}

func TestNodes_FailWithoutCharacter(t *testing.T) {
	ctx := NewContext()
	base := characterNode{Ctx: ctx}
	for _, n := range []bt.Node{
		&IsIdle{base},
		&IsWallInFront{characterNode: base},
		&IsGroundInFront{characterNode: base},
		&IsEnemyInFront{characterNode: base},
		&TrySetState{characterNode: base, States: []string{"idle"}},
		&TurnAround{base},
		&SetMovementForward{characterNode: base},
		&FaceAttacker{characterNode: base},
	} {
		assert.Equal(t, bt.Fail, n.Execute(), bt.Describe(n))
		assert.Equal(t, 0, n.ChildCount())
		_, err := n.ChildAt(0)
		assert.ErrorIs(t, err, bt.ErrNoChildren)
	}
}

func TestIsIdle(t *testing.T) {
	ctx := NewContext()
	c := newTestCharacter(t, "c", nil)
	n := &IsIdle{characterNode{Ctx: ctx}}

	assert.Equal(t, bt.Pass, run(ctx, c, n))
	attack, _ := c.State("attack")
	require.True(t, c.StateMachine.TrySetState(attack))
	assert.Equal(t, bt.Fail, run(ctx, c, n))
}

func TestSensorConditions(t *testing.T) {
	ctx := NewContext()
	c := newTestCharacter(t, "c", nil)
	env := c.Env.(*stubEnv)
	wall := &IsWallInFront{characterNode: characterNode{Ctx: ctx}, Range: 1}
	ground := &IsGroundInFront{characterNode: characterNode{Ctx: ctx}, Range: 1}

	assert.Equal(t, bt.Fail, run(ctx, c, wall))
	assert.Equal(t, bt.Fail, run(ctx, c, ground))
	env.wall, env.ground = true, true
	assert.Equal(t, bt.Pass, run(ctx, c, wall))
	assert.Equal(t, bt.Pass, run(ctx, c, ground))
}

func TestIsEnemyInFront(t *testing.T) {
	ctx := NewContext()
	heroes := &character.Team{Name: "heroes"}
	monsters := &character.Team{Name: "monsters"}
	c := newTestCharacter(t, "hero", heroes)
	friend := newTestCharacter(t, "friend", heroes)
	foe := newTestCharacter(t, "foe", monsters)
	env := c.Env.(*stubEnv)
	n := &IsEnemyInFront{characterNode: characterNode{Ctx: ctx}, Range: 1}

	env.targets = []*character.Character{c, friend}
	assert.Equal(t, bt.Fail, run(ctx, c, n))

	env.targets = append(env.targets, foe)
	assert.Equal(t, bt.Pass, run(ctx, c, n))

	foe.Health.SetCurrent(0)
	assert.Equal(t, bt.Fail, run(ctx, c, n), "dead enemies cannot be hit")
}

func TestTrySetState(t *testing.T) {
	ctx := NewContext()
	c := newTestCharacter(t, "c", nil)
	toAttack := &TrySetState{characterNode: characterNode{Ctx: ctx}, States: []string{"attack"}}
	toIdle := &TrySetState{characterNode: characterNode{Ctx: ctx}, States: []string{"idle"}}
	missing := &TrySetState{characterNode: characterNode{Ctx: ctx}, States: []string{"fly"}}

	assert.Equal(t, bt.Pass, run(ctx, c, toAttack))
	assert.Equal(t, bt.Fail, run(ctx, c, toIdle), "attack cannot be interrupted")
	assert.Equal(t, bt.Fail, run(ctx, c, missing))
	assert.Equal(t, "TrySetState(attack)", bt.Describe(toAttack))
}

func TestTrySetState_FirstAccepted(t *testing.T) {
	ctx := NewContext()
	c := newTestCharacter(t, "c", nil)
	require.NoError(t, c.AddState(character.NewJump(c, "jump", time.Second)))
	n := &TrySetState{characterNode: characterNode{Ctx: ctx}, States: []string{"fly", "jump", "attack"}}

	assert.Equal(t, bt.Pass, run(ctx, c, n))
	assert.Equal(t, "attack", character.StateName(c.StateMachine.Current()), "jump needs ground")
	assert.Equal(t, "TrySetState(fly|jump|attack)", bt.Describe(n))

	c.StateMachine.ForceSetDefaultState()
	c.Body.Grounded = true
	assert.Equal(t, bt.Pass, run(ctx, c, n))
	assert.Equal(t, "jump", character.StateName(c.StateMachine.Current()))
}

func TestTurnAroundAndForward(t *testing.T) {
	ctx := NewContext()
	c := newTestCharacter(t, "c", nil)
	base := characterNode{Ctx: ctx}

	assert.Equal(t, bt.Pass, run(ctx, c, &SetMovementForward{characterNode: base}))
	assert.Equal(t, 1.0, c.MovementDirection().X)

	assert.Equal(t, bt.Pass, run(ctx, c, &TurnAround{base}))
	assert.Equal(t, -1.0, c.MovementDirection().X)
	assert.Equal(t, bt.Pass, run(ctx, c, &TurnAround{base}))
	assert.Equal(t, 1.0, c.MovementDirection().X)
}

func TestFaceAttacker(t *testing.T) {
	ctx := NewContext()
	c := newTestCharacter(t, "c", &character.Team{Name: "a"})
	attacker := newTestCharacter(t, "x", &character.Team{Name: "b"})
	attacker.Body.Position.X = -3
	n := &FaceAttacker{characterNode: characterNode{Ctx: ctx}}

	assert.Equal(t, bt.Pass, run(ctx, c, n))
	assert.Equal(t, bt.Pass, run(ctx, c, n))
	c.SetMovementX(1)

	turns := 0
	c.Health.OnHitReceived(func(*character.Hit) { turns++ })
	character.NewHit(attacker, 1).TryHit(c.Health, true)

	assert.Equal(t, -1.0, c.MovementDirection().X)
	assert.Equal(t, 1, turns)
}
