package brain

import (
	"strings"

	"github.com/kasuganosora/platformerkit/server/game/ambient"
	"github.com/kasuganosora/platformerkit/server/game/bt"
	"github.com/kasuganosora/platformerkit/server/game/character"
)

// Context is the ambient slot holding the character whose brain is running.
type Context = ambient.Slot[*character.Character]

// NewContext returns an empty Context.
func NewContext() *Context {
	return ambient.NewSlot[*character.Character]()
}

// characterNode gives platformer nodes access to the current character.
// Every node fails when executed outside a character scope.
type characterNode struct {
	bt.Leaf
	Ctx *Context
}

func (n characterNode) current() *character.Character {
	if n.Ctx == nil || !n.Ctx.Active() {
		return nil
	}
	return n.Ctx.Current()
}

// ---- Conditions ----

// IsIdle passes when the character is in its default state.
type IsIdle struct {
	characterNode
}

func (n *IsIdle) Execute() bt.Result {
	c := n.current()
	if c == nil {
		return bt.Fail
	}
	return bt.ToResult(c.StateMachine.Current() != nil && c.StateMachine.Current() == c.Idle())
}

// IsWallInFront passes when a wall blocks the way within Range tiles.
type IsWallInFront struct {
	characterNode
	Range float64
}

func (n *IsWallInFront) Execute() bt.Result {
	c := n.current()
	if c == nil || c.Env == nil {
		return bt.Fail
	}
	return bt.ToResult(c.Env.WallAhead(c, n.Range))
}

// IsGroundInFront passes when there is ground to stand on Range tiles ahead.
type IsGroundInFront struct {
	characterNode
	Range float64
}

func (n *IsGroundInFront) Execute() bt.Result {
	c := n.current()
	if c == nil || c.Env == nil {
		return bt.Fail
	}
	return bt.ToResult(c.Env.GroundAhead(c, n.Range))
}

// IsEnemyInFront passes when something the character could hit is within Range tiles ahead.
type IsEnemyInFront struct {
	characterNode
	Range float64
}

func (n *IsEnemyInFront) Execute() bt.Result {
	c := n.current()
	if c == nil || c.Env == nil {
		return bt.Fail
	}
	probe := &character.Hit{Source: c, Team: c.Team()}
	for _, target := range c.Env.TargetsAhead(c, n.Range) {
		if target != c && probe.CanHit(target.Health) {
			return bt.Pass
		}
	}
	return bt.Fail
}

// ---- Actions ----

// TrySetState attempts a guarded transition into the first of the named
// states that accepts it.
type TrySetState struct {
	characterNode
	States []string
}

func (n *TrySetState) Execute() bt.Result {
	c := n.current()
	if c == nil {
		return bt.Fail
	}
	states := make([]character.State, 0, len(n.States))
	for _, name := range n.States {
		if s, ok := c.State(name); ok {
			states = append(states, s)
		}
	}
	return bt.ToResult(c.StateMachine.TrySetAny(states...))
}

func (n *TrySetState) NodeName() string {
	return "TrySetState(" + strings.Join(n.States, "|") + ")"
}

// TurnAround reverses the character's horizontal movement intent.
type TurnAround struct {
	characterNode
}

func (n *TurnAround) Execute() bt.Result {
	c := n.current()
	if c == nil {
		return bt.Fail
	}
	c.SetMovementX(-c.MovementDirection().X)
	return bt.Pass
}

// SetMovementForward makes the character move the way it is facing.
type SetMovementForward struct {
	characterNode
}

func (n *SetMovementForward) Execute() bt.Result {
	c := n.current()
	if c == nil {
		return bt.Fail
	}
	c.SetMovementDirection(character.Vec2{X: c.Facing()})
	return bt.Pass
}

// FaceAttacker subscribes the character to turn towards whoever hits it.
// Executing it again for the same character does nothing more.
type FaceAttacker struct {
	characterNode

	subscribed map[*character.Character]struct{}
}

func (n *FaceAttacker) Execute() bt.Result {
	c := n.current()
	if c == nil {
		return bt.Fail
	}
	if n.subscribed == nil {
		n.subscribed = make(map[*character.Character]struct{})
	}
	if _, ok := n.subscribed[c]; ok {
		return bt.Pass
	}
	n.subscribed[c] = struct{}{}
	c.Health.OnHitReceived(func(hit *character.Hit) {
		if hit.Source == nil {
			return
		}
		dx := hit.Source.Body.Position.X - c.Body.Position.X
		if dx == 0 {
			return
		}
		c.SetMovementX(sign(dx))
	})
	return bt.Pass
}

func sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	return -1
}
