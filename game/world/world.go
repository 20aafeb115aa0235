package world

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/platformerkit/server/game/ambient"
	"github.com/kasuganosora/platformerkit/server/game/brain"
	"github.com/kasuganosora/platformerkit/server/game/bt"
	"github.com/kasuganosora/platformerkit/server/game/character"
	"go.uber.org/zap"
)

// ErrUnknownCharacter is returned when no character has the requested ID.
var ErrUnknownCharacter = errors.New("world: unknown character")

// TransitionFunc observes every state change of every character.
type TransitionFunc func(c *character.Character, t character.Transition, tick uint64)

// BrainSource resolves the brain name in a CharacterSpec to a definition.
type BrainSource func(name string) (*brain.Definition, error)

// DirBrains loads brain files relative to dir, caching each parsed file.
func DirBrains(dir string) BrainSource {
	cache := make(map[string]*brain.Definition)
	return func(name string) (*brain.Definition, error) {
		if def, ok := cache[name]; ok {
			return def, nil
		}
		def, err := brain.LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		cache[name] = def
		return def, nil
	}
}

type entry struct {
	c     *character.Character
	brain *brain.Brain
	died  bool
}

// World owns the terrain and characters of one level and advances them in
// fixed steps. All brains of a world are evaluated sequentially on the
// goroutine calling Tick, sharing one character context.
type World struct {
	mu        sync.RWMutex
	terrain   *Terrain
	teams     map[string]*character.Team
	entries   []*entry
	byID      map[uuid.UUID]*entry
	ctx       *brain.Context
	clock     *bt.FixedClock
	env       *sensors
	tick      uint64
	listeners []TransitionFunc
	logger    *zap.Logger
}

// New creates an empty world advancing step per Tick.
func New(terrain *Terrain, step time.Duration, logger *zap.Logger) *World {
	w := &World{
		terrain: terrain,
		teams:   make(map[string]*character.Team),
		byID:    make(map[uuid.UUID]*entry),
		ctx:     brain.NewContext(),
		clock:   &bt.FixedClock{Step: step},
		logger:  logger,
	}
	w.env = &sensors{w: w}
	return w
}

// FromLevel builds a world from a level definition and spawns its characters.
func FromLevel(lvl *Level, brains BrainSource, step time.Duration, logger *zap.Logger, listeners ...TransitionFunc) (*World, error) {
	terrain, err := ParseTerrain(lvl.Terrain)
	if err != nil {
		return nil, err
	}
	w := New(terrain, step, logger)
	for _, fn := range listeners {
		w.OnTransition(fn)
	}
	if err := w.AddTeams(lvl.Teams); err != nil {
		return nil, err
	}
	for _, spec := range lvl.Characters {
		def, err := brains(spec.Brain)
		if err != nil {
			return nil, fmt.Errorf("world: character %s: %w", spec.Name, err)
		}
		if _, err := w.Spawn(spec, def); err != nil {
			return nil, err
		}
	}
	logger.Info("world loaded",
		zap.String("level", lvl.Name),
		zap.Int("characters", len(lvl.Characters)),
		zap.Int("width", terrain.Width()),
		zap.Int("height", terrain.Height()))
	return w, nil
}

// OnTransition registers fn for characters spawned afterwards.
func (w *World) OnTransition(fn TransitionFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// AddTeams declares teams; allies may refer to any team in the same call or earlier.
func (w *World) AddTeams(specs []TeamSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range specs {
		if _, dup := w.teams[s.Name]; dup {
			return fmt.Errorf("world: duplicate team %q", s.Name)
		}
		w.teams[s.Name] = &character.Team{Name: s.Name}
	}
	for _, s := range specs {
		t := w.teams[s.Name]
		for _, name := range s.Allies {
			ally, ok := w.teams[name]
			if !ok {
				return fmt.Errorf("world: team %q: unknown ally %q", s.Name, name)
			}
			t.Allies = append(t.Allies, ally)
		}
	}
	return nil
}

// Spawn creates a character from spec, driven by def.
func (w *World) Spawn(spec CharacterSpec, def *brain.Definition) (*character.Character, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	spec = spec.withDefaults()
	var team *character.Team
	if spec.Team != "" {
		t, ok := w.teams[spec.Team]
		if !ok {
			return nil, fmt.Errorf("world: character %s: unknown team %q", spec.Name, spec.Team)
		}
		team = t
	}

	c := character.New(spec.Name, character.NewHealth(spec.Health, team))
	c.WalkSpeed = spec.WalkSpeed
	c.RunSpeed = spec.RunSpeed
	c.Run = spec.Run
	c.Body.Position = character.Vec2{X: spec.X, Y: spec.Y}
	c.Body.Grounded = w.terrain.SolidAt(spec.X, spec.Y+1)
	c.Env = w.env

	idle := character.NewLocomotion(c, "idle")
	attack := character.NewAttack(c, "attack", spec.Attack.Duration, spec.Attack.Damage, spec.Attack.Range)
	attack.HitDelay = spec.Attack.HitDelay
	flinch := character.NewFlinch(c, "flinch", spec.Flinch.Duration, spec.Flinch.DieDuration)
	flinch.SpeedMultiplier = spec.Flinch.Speed
	for _, s := range []character.State{
		idle,
		character.NewJump(c, "jump", spec.Jump.Duration),
		attack,
		flinch,
	} {
		if err := c.AddState(s); err != nil {
			return nil, err
		}
	}
	for _, ms := range spec.Multi {
		states := make([]character.State, 0, len(ms.States))
		for _, name := range ms.States {
			s, ok := c.State(name)
			if !ok {
				return nil, fmt.Errorf("world: character %s: multi state %q: unknown state %q", spec.Name, ms.Name, name)
			}
			states = append(states, s)
		}
		if err := c.AddState(character.NewMulti(c, ms.Name, states...)); err != nil {
			return nil, fmt.Errorf("world: character %s: %w", spec.Name, err)
		}
	}

	listeners := append([]TransitionFunc(nil), w.listeners...)
	c.StateMachine.OnTransition(func(t character.Transition) {
		for _, fn := range listeners {
			fn(c, t, w.tick)
		}
	})
	c.StateMachine.SetDefault(idle)

	builder := &brain.Builder{
		Ctx:    w.ctx,
		Clock:  w.clock,
		Logger: w.logger.With(zap.String("character", c.Name)),
		HasState: func(name string) bool {
			_, ok := c.State(name)
			return ok
		},
	}
	b, err := builder.Brain(def)
	if err != nil {
		return nil, fmt.Errorf("world: character %s: %w", spec.Name, err)
	}

	e := &entry{c: c, brain: b}
	w.entries = append(w.entries, e)
	w.byID[c.ID] = e
	w.logger.Info("character spawned",
		zap.String("id", c.ID.String()),
		zap.String("name", c.Name),
		zap.String("team", team.String()),
		zap.String("brain", b.Name))
	return c, nil
}

// Tick advances the world by one fixed step: every living brain thinks once,
// in spawn order, then states and bodies are updated.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	for _, e := range w.entries {
		if !e.c.Dead() {
			w.think(e)
		}
	}
	if w.ctx.Reset() {
		w.logger.Warn("character context still set after tick", zap.Uint64("tick", w.tick))
	}

	dt := w.clock.Step
	for _, e := range w.entries {
		if e.c.Dead() {
			continue
		}
		e.c.Update(dt)
		w.move(e.c, dt)
		if e.c.Dead() && !e.died {
			e.died = true
			w.logger.Info("character died",
				zap.String("id", e.c.ID.String()),
				zap.String("name", e.c.Name),
				zap.Uint64("tick", w.tick))
		}
	}
}

// think runs one brain tick. A panic escaping the tree only costs this
// character its turn.
func (w *World) think(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("brain panicked",
				zap.String("character", e.c.Name),
				zap.Any("recover", r))
		}
	}()
	ambient.Do(w.ctx, e.c, func() {
		e.brain.Tick()
	})
}

func (w *World) move(c *character.Character, dt time.Duration) {
	pos := &c.Body.Position
	dx := c.MovementDirection().X * c.Speed() * dt.Seconds()
	if dx != 0 {
		nx := pos.X + dx
		if !w.terrain.SolidAt(nx, pos.Y) {
			pos.X = nx
		}
	}
	c.Body.Grounded = w.terrain.SolidAt(pos.X, pos.Y+1)
	if c.Body.Grounded {
		return
	}
	// No ground below: drop a tile per tick, and out of the level is fatal.
	pos.Y++
	if int(math.Floor(pos.Y)) >= w.terrain.Height() && c.Health.Alive() {
		c.Health.SetCurrent(0)
	}
}

// TickCount returns the number of completed ticks.
func (w *World) TickCount() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// Step returns the simulated duration of one tick.
func (w *World) Step() time.Duration { return w.clock.Step }

// Terrain returns the world's terrain.
func (w *World) Terrain() *Terrain { return w.terrain }

// Snapshot is a read-only view of one character.
type Snapshot struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Team      string  `json:"team"`
	State     string  `json:"state"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"max_health"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Facing    float64 `json:"facing"`
	MoveX     float64 `json:"move_x"`
	Grounded  bool    `json:"grounded"`
	Dead      bool    `json:"dead"`
	Brain     string  `json:"brain"`
	Result    string  `json:"result"`
}

func snapshot(e *entry) Snapshot {
	c := e.c
	return Snapshot{
		ID:        c.ID.String(),
		Name:      c.Name,
		Team:      c.Team().String(),
		State:     character.StateName(c.StateMachine.Current()),
		Health:    c.Health.Current(),
		MaxHealth: c.Health.Maximum(),
		X:         c.Body.Position.X,
		Y:         c.Body.Position.Y,
		Facing:    c.Facing(),
		MoveX:     c.MovementDirection().X,
		Grounded:  c.Body.Grounded,
		Dead:      c.Dead(),
		Brain:     e.brain.Name,
		Result:    e.brain.Last().String(),
	}
}

// Snapshots returns every character in spawn order.
func (w *World) Snapshots() []Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Snapshot, len(w.entries))
	for i, e := range w.entries {
		out[i] = snapshot(e)
	}
	return out
}

// Snapshot returns one character by ID.
func (w *World) Snapshot(id uuid.UUID) (Snapshot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.byID[id]
	if !ok {
		return Snapshot{}, ErrUnknownCharacter
	}
	return snapshot(e), nil
}

// TreeNode is one line of a brain dump.
type TreeNode struct {
	Depth int    `json:"depth"`
	Node  string `json:"node"`
}

// Tree returns the OnAwake and OnTick trees of a character's brain in pre-order.
func (w *World) Tree(id uuid.UUID) (awake, tick []TreeNode, err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.byID[id]
	if !ok {
		return nil, nil, ErrUnknownCharacter
	}
	flatten := func(root bt.Node) []TreeNode {
		out := []TreeNode{}
		bt.Walk(root, func(depth int, n bt.Node) {
			out = append(out, TreeNode{Depth: depth, Node: bt.Describe(n)})
		})
		return out
	}
	return flatten(e.brain.OnAwake), flatten(e.brain.OnTick), nil
}

// Hit applies damage from the environment to a character.
// It reports whether the hit landed.
func (w *World) Hit(id uuid.UUID, damage int) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.byID[id]
	if !ok {
		return false, ErrUnknownCharacter
	}
	hit := &character.Hit{Damage: damage}
	return hit.TryHit(e.c.Health, false), nil
}

// sensors implements character.Surroundings over the world's terrain.
// It is only used while Tick holds the world lock.
type sensors struct {
	w *World
}

const sensorStep = 0.25

func direction(c *character.Character) float64 {
	x := c.MovementDirection().X
	if x == 0 {
		return c.Facing()
	}
	if x > 0 {
		return 1
	}
	return -1
}

func (s *sensors) WallAhead(c *character.Character, distance float64) bool {
	dir := direction(c)
	pos := c.Body.Position
	for d := sensorStep; d < distance+sensorStep/2; d += sensorStep {
		if s.w.terrain.SolidAt(pos.X+dir*math.Min(d, distance), pos.Y) {
			return true
		}
	}
	return false
}

func (s *sensors) GroundAhead(c *character.Character, distance float64) bool {
	pos := c.Body.Position
	return s.w.terrain.SolidAt(pos.X+direction(c)*distance, pos.Y+1)
}

func (s *sensors) TargetsAhead(c *character.Character, distance float64) []*character.Character {
	dir := direction(c)
	pos := c.Body.Position
	var out []*character.Character
	for _, e := range s.w.entries {
		o := e.c
		if o == c || o.Dead() {
			continue
		}
		if math.Floor(o.Body.Position.Y) != math.Floor(pos.Y) {
			continue
		}
		rel := (o.Body.Position.X - pos.X) * dir
		if rel >= -0.5 && rel <= distance {
			out = append(out, o)
		}
	}
	return out
}
