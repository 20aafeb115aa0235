package character

import "time"

// baseState carries the owner and name shared by every concrete state.
type baseState struct {
	owner *Character
	name  string
}

func (b *baseState) Name() string           { return b.name }
func (b *baseState) Machine() *StateMachine { return &b.owner.StateMachine }
func (b *baseState) CanEnter() bool         { return true }
func (b *baseState) CanExit() bool          { return true }
func (b *baseState) Enter()                 {}
func (b *baseState) Exit()                  {}
func (b *baseState) Update(time.Duration)   {}

// ---- Locomotion ----

// Locomotion lets the character walk or run freely.
type Locomotion struct {
	baseState
}

// NewLocomotion creates a Locomotion state for c.
func NewLocomotion(c *Character, name string) *Locomotion {
	return &Locomotion{baseState{owner: c, name: name}}
}

func (s *Locomotion) MovementSpeedMultiplier() float64 { return 1 }
func (s *Locomotion) CanTurn() bool                    { return true }

// ---- Timed actions ----

// timer counts up to a duration while a state is active.
type timer struct {
	Duration time.Duration
	elapsed  time.Duration
}

func (t *timer) reset() { t.elapsed = 0 }

// advance adds dt and reports whether the duration has been reached.
func (t *timer) advance(dt time.Duration) bool {
	t.elapsed += dt
	return t.elapsed >= t.Duration
}

// Jump can only start from the ground and returns to the default state
// once its duration has elapsed.
type Jump struct {
	baseState
	timer
}

// NewJump creates a Jump state for c lasting d.
func NewJump(c *Character, name string, d time.Duration) *Jump {
	return &Jump{baseState: baseState{owner: c, name: name}, timer: timer{Duration: d}}
}

func (s *Jump) CanEnter() bool                   { return s.owner.Body.Grounded }
func (s *Jump) MovementSpeedMultiplier() float64 { return 1 }
func (s *Jump) CanTurn() bool                    { return true }
func (s *Jump) Enter()                           { s.reset() }

func (s *Jump) Update(dt time.Duration) {
	if s.advance(dt) {
		s.Machine().ForceSetDefaultState()
	}
}

// Attack locks the character in place until the swing ends. Its hit lands
// once, HitDelay after entering, on every enemy within Range ahead.
type Attack struct {
	baseState
	timer
	Damage   int
	Range    float64
	HitDelay time.Duration

	struck bool
}

// NewAttack creates an Attack state for c.
func NewAttack(c *Character, name string, d time.Duration, damage int, reach float64) *Attack {
	return &Attack{
		baseState: baseState{owner: c, name: name},
		timer:     timer{Duration: d},
		Damage:    damage,
		Range:     reach,
	}
}

func (s *Attack) CanExit() bool                    { return false }
func (s *Attack) CanTurn() bool                    { return false }
func (s *Attack) MovementSpeedMultiplier() float64 { return 0 }

func (s *Attack) Enter() {
	s.reset()
	s.struck = false
}

func (s *Attack) Update(dt time.Duration) {
	done := s.advance(dt)
	if !s.struck && s.elapsed >= s.HitDelay {
		s.struck = true
		s.strike()
	}
	if done {
		s.Machine().ForceSetDefaultState()
	}
}

func (s *Attack) strike() {
	if s.owner.Env == nil {
		return
	}
	hit := NewHit(s.owner, s.Damage)
	for _, target := range s.owner.Env.TargetsAhead(s.owner, s.Range) {
		hit.TryHit(target.Health, true)
	}
}

// Flinch interrupts whatever the character was doing when it takes damage.
// At zero health it plays out the death instead and then marks the character dead.
type Flinch struct {
	baseState
	FlinchDuration time.Duration
	DieDuration    time.Duration
	// SpeedMultiplier applies while flinching; the dying never move.
	SpeedMultiplier float64

	elapsed time.Duration
}

// NewFlinch creates a Flinch state for c and subscribes it to c's health.
func NewFlinch(c *Character, name string, flinch, die time.Duration) *Flinch {
	s := &Flinch{
		baseState:      baseState{owner: c, name: name},
		FlinchDuration: flinch,
		DieDuration:    die,
	}
	c.Health.OnHitReceived(func(hit *Hit) {
		if hit.Damage > 0 {
			c.StateMachine.ForceSetState(s)
		}
	})
	c.Health.OnCurrentChanged(func(_, to int) {
		if to <= 0 {
			c.StateMachine.ForceSetState(s)
		}
	})
	return s
}

func (s *Flinch) CanExit() bool { return false }
func (s *Flinch) CanTurn() bool { return false }
func (s *Flinch) Enter()        { s.elapsed = 0 }

func (s *Flinch) MovementSpeedMultiplier() float64 {
	if s.owner.Health.Alive() {
		return s.SpeedMultiplier
	}
	return 0
}

func (s *Flinch) Update(dt time.Duration) {
	s.elapsed += dt
	if s.owner.Health.Alive() {
		if s.elapsed >= s.FlinchDuration {
			s.Machine().ForceSetDefaultState()
		}
		return
	}
	if s.elapsed >= s.DieDuration {
		s.owner.dead = true
	}
}

// ---- Multi ----

// Multi redirects to the first of States that can be entered. It is never
// current for longer than its own Enter unless every redirect fails, in which
// case the character falls back to its default state.
type Multi struct {
	baseState
	States []State
}

// NewMulti creates a Multi state for c trying states in order.
func NewMulti(c *Character, name string, states ...State) *Multi {
	return &Multi{baseState: baseState{owner: c, name: name}, States: states}
}

func (s *Multi) CanEnter() bool {
	return s.Machine().CanSetAny(s.States...) != nil
}

func (s *Multi) MovementSpeedMultiplier() float64 { return 1 }
func (s *Multi) CanTurn() bool                    { return true }

func (s *Multi) Enter() {
	m := s.Machine()
	if m.TrySetAny(s.States...) {
		return
	}
	if def := m.Default(); def != nil && def != State(s) {
		m.ForceSetDefaultState()
	}
}
