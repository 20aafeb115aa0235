package character

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Vec2 is a 2D vector in tile units.
type Vec2 struct {
	X, Y float64
}

// Body is the physical state the world keeps for a character.
type Body struct {
	Position Vec2
	Grounded bool
}

// Surroundings answers the spatial questions brains and attacks ask.
// The world implements it; characters only see this narrow view.
type Surroundings interface {
	WallAhead(c *Character, distance float64) bool
	GroundAhead(c *Character, distance float64) bool
	TargetsAhead(c *Character, distance float64) []*Character
}

// Character is one actor in the world: its health, body, movement intent and
// the state machine deciding what it is currently doing.
type Character struct {
	ID           uuid.UUID
	Name         string
	Health       *Health
	Body         Body
	StateMachine StateMachine
	Env          Surroundings

	WalkSpeed float64
	RunSpeed  float64
	Run       bool

	movement Vec2
	facing   float64
	dead     bool

	states []State
	byName map[string]State
}

// New creates a character facing right with no states.
func New(name string, health *Health) *Character {
	return &Character{
		ID:        uuid.New(),
		Name:      name,
		Health:    health,
		WalkSpeed: 1,
		RunSpeed:  2,
		facing:    1,
		byName:    make(map[string]State),
	}
}

// Team is shorthand for Health.Team.
func (c *Character) Team() *Team {
	if c.Health == nil {
		return nil
	}
	return c.Health.Team
}

// AddState registers s under its name. Names must be unique per character.
func (c *Character) AddState(s State) error {
	if _, dup := c.byName[s.Name()]; dup {
		return fmt.Errorf("character %s: duplicate state %q", c.Name, s.Name())
	}
	c.byName[s.Name()] = s
	c.states = append(c.states, s)
	return nil
}

// State looks up a registered state by name.
func (c *Character) State(name string) (State, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// States returns the registered states in registration order.
func (c *Character) States() []State {
	return c.states
}

// Idle returns the default state.
func (c *Character) Idle() State {
	return c.StateMachine.Default()
}

// MovementDirection is the direction the character wants to move in.
func (c *Character) MovementDirection() Vec2 { return c.movement }

// SetMovementDirection clamps both axes to [-1, 1].
func (c *Character) SetMovementDirection(v Vec2) {
	c.movement = Vec2{X: clampf(v.X), Y: clampf(v.Y)}
}

func (c *Character) SetMovementX(x float64) { c.movement.X = clampf(x) }

// Facing is +1 when the character looks right and -1 when it looks left.
func (c *Character) Facing() float64 { return c.facing }

// SetFacing sets the facing from the sign of dir. Zero leaves it unchanged.
func (c *Character) SetFacing(dir float64) {
	if dir > 0 {
		c.facing = 1
	} else if dir < 0 {
		c.facing = -1
	}
}

// Dead reports whether the character has finished dying.
func (c *Character) Dead() bool { return c.dead }

// Speed is the horizontal speed in tiles per second allowed by the current state.
func (c *Character) Speed() float64 {
	s := c.StateMachine.Current()
	if s == nil {
		return 0
	}
	base := c.WalkSpeed
	if c.Run {
		base = c.RunSpeed
	}
	return base * s.MovementSpeedMultiplier()
}

// Update advances the current state by dt and turns the character towards
// its movement direction when the state allows it.
func (c *Character) Update(dt time.Duration) {
	if s := c.StateMachine.Current(); s != nil {
		s.Update(dt)
	}
	if s := c.StateMachine.Current(); s != nil && s.CanTurn() {
		c.SetFacing(c.movement.X)
	}
}

func clampf(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
