package brain

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kasuganosora/platformerkit/server/game/bt"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownKind is returned for node definitions with an unrecognised kind.
	ErrUnknownKind = errors.New("brain: unknown node kind")
	// ErrUnknownState is returned when try_set_state names a state the character lacks.
	ErrUnknownState = errors.New("brain: unknown state")
)

// Node kinds understood by the Builder.
const (
	KindSequence           = "sequence"
	KindSelector           = "selector"
	KindInvert             = "invert"
	KindIgnore             = "ignore"
	KindWait               = "wait"
	KindLog                = "log"
	KindTrySetState        = "try_set_state"
	KindTurnAround         = "turn_around"
	KindSetMovementForward = "set_movement_forward"
	KindFaceAttacker       = "face_attacker"
	KindIsIdle             = "is_idle"
	KindIsWallInFront      = "is_wall_in_front"
	KindIsGroundInFront    = "is_ground_in_front"
	KindIsEnemyInFront     = "is_enemy_in_front"
)

// Definition is a brain as written in a YAML file.
type Definition struct {
	Name    string   `yaml:"name"`
	OnAwake *NodeDef `yaml:"on_awake"`
	OnTick  *NodeDef `yaml:"on_tick"`
}

// NodeDef is one node of a brain file. Only the fields relevant to Kind are read.
// A null entry in children is kept as an empty slot.
type NodeDef struct {
	Kind     string        `yaml:"kind"`
	Children []*NodeDef    `yaml:"children,omitempty"`
	Child    *NodeDef      `yaml:"child,omitempty"`
	Range    float64       `yaml:"range,omitempty"`
	State    string        `yaml:"state,omitempty"`
	States   []string      `yaml:"states,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
	Result   *bt.Result    `yaml:"result,omitempty"`
	Message  string        `yaml:"message,omitempty"`
}

// Parse decodes a brain definition.
func Parse(data []byte) (*Definition, error) {
	def := &Definition{}
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, fmt.Errorf("brain: parse: %w", err)
	}
	return def, nil
}

// LoadFile reads and decodes a brain definition from path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("brain: read %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = path
	}
	return def, nil
}

// Builder turns definitions into node trees bound to one Context and Clock.
type Builder struct {
	Ctx    *Context
	Clock  bt.Clock
	Logger *zap.Logger
	// HasState validates try_set_state targets when set.
	HasState func(name string) bool
}

// Brain builds both trees of def.
func (b *Builder) Brain(def *Definition) (*Brain, error) {
	awake, err := b.Build(def.OnAwake)
	if err != nil {
		return nil, fmt.Errorf("brain %s: on_awake: %w", def.Name, err)
	}
	tick, err := b.Build(def.OnTick)
	if err != nil {
		return nil, fmt.Errorf("brain %s: on_tick: %w", def.Name, err)
	}
	return &Brain{Name: def.Name, OnAwake: awake, OnTick: tick}, nil
}

// Build creates the node tree for def. A nil def yields a nil node.
func (b *Builder) Build(def *NodeDef) (bt.Node, error) {
	if def == nil {
		return nil, nil
	}
	base := characterNode{Ctx: b.Ctx}
	switch def.Kind {
	case KindSequence, KindSelector:
		children, err := b.buildAll(def.Children)
		if err != nil {
			return nil, err
		}
		if def.Kind == KindSequence {
			return bt.NewSequence(children...), nil
		}
		return bt.NewSelector(children...), nil
	case KindInvert, KindIgnore:
		child, err := b.Build(def.Child)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Kind, err)
		}
		if def.Kind == KindInvert {
			return bt.NewInvert(child), nil
		}
		ign := bt.NewIgnore(child)
		if def.Result != nil {
			ign.Result = *def.Result
		}
		return ign, nil
	case KindWait:
		if def.Duration < 0 {
			return nil, fmt.Errorf("wait: negative duration %s", def.Duration)
		}
		return bt.NewWait(def.Duration, b.Clock), nil
	case KindLog:
		return b.logNode(def.Message), nil
	case KindTrySetState:
		var states []string
		if def.State != "" {
			states = append(states, def.State)
		}
		states = append(states, def.States...)
		if len(states) == 0 {
			return nil, fmt.Errorf("%s: missing state", def.Kind)
		}
		for _, name := range states {
			if name == "" {
				return nil, fmt.Errorf("%s: empty state name", def.Kind)
			}
			if b.HasState != nil && !b.HasState(name) {
				return nil, fmt.Errorf("%w %q", ErrUnknownState, name)
			}
		}
		return &TrySetState{characterNode: base, States: states}, nil
	case KindTurnAround:
		return &TurnAround{base}, nil
	case KindSetMovementForward:
		return &SetMovementForward{characterNode: base}, nil
	case KindFaceAttacker:
		return &FaceAttacker{characterNode: base}, nil
	case KindIsIdle:
		return &IsIdle{base}, nil
	case KindIsWallInFront:
		return &IsWallInFront{characterNode: base, Range: def.Range}, nil
	case KindIsGroundInFront:
		return &IsGroundInFront{characterNode: base, Range: def.Range}, nil
	case KindIsEnemyInFront:
		return &IsEnemyInFront{characterNode: base, Range: def.Range}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, def.Kind)
}

func (b *Builder) buildAll(defs []*NodeDef) ([]bt.Node, error) {
	nodes := make([]bt.Node, len(defs))
	for i, d := range defs {
		n, err := b.Build(d)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		nodes[i] = n
	}
	return nodes, nil
}

func (b *Builder) logNode(msg string) bt.Node {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return bt.NewAction("Log", func() error {
		fields := []zap.Field{zap.String("message", msg)}
		if b.Ctx != nil && b.Ctx.Active() {
			c := b.Ctx.Current()
			fields = append(fields, zap.String("character", c.Name))
		}
		logger.Info("brain log", fields...)
		return nil
	}, logger)
}
