package world

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Level is a world as written in a YAML file.
type Level struct {
	Name       string          `yaml:"name"`
	Terrain    []string        `yaml:"terrain"`
	Teams      []TeamSpec      `yaml:"teams"`
	Characters []CharacterSpec `yaml:"characters"`
}

// TeamSpec declares a team and the teams it will not attack.
type TeamSpec struct {
	Name   string   `yaml:"name"`
	Allies []string `yaml:"allies"`
}

// CharacterSpec declares one character to spawn.
type CharacterSpec struct {
	Name      string  `yaml:"name"`
	Team      string  `yaml:"team"`
	Brain     string  `yaml:"brain"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Health    int     `yaml:"health"`
	WalkSpeed float64 `yaml:"walk_speed"`
	RunSpeed  float64 `yaml:"run_speed"`
	Run       bool    `yaml:"run"`

	Jump   JumpSpec    `yaml:"jump"`
	Attack AttackSpec  `yaml:"attack"`
	Flinch FlinchSpec  `yaml:"flinch"`
	Multi  []MultiSpec `yaml:"multi"`
}

// MultiSpec declares a state that redirects to the first enterable of States.
// States may name the built-in states or multi states declared before it.
type MultiSpec struct {
	Name   string   `yaml:"name"`
	States []string `yaml:"states"`
}

type JumpSpec struct {
	Duration time.Duration `yaml:"duration"`
}

type AttackSpec struct {
	Duration time.Duration `yaml:"duration"`
	HitDelay time.Duration `yaml:"hit_delay"`
	Damage   int           `yaml:"damage"`
	Range    float64       `yaml:"range"`
}

type FlinchSpec struct {
	Duration    time.Duration `yaml:"duration"`
	DieDuration time.Duration `yaml:"die_duration"`
	Speed       float64       `yaml:"speed"`
}

// withDefaults fills in zero fields.
func (s CharacterSpec) withDefaults() CharacterSpec {
	if s.Health <= 0 {
		s.Health = 3
	}
	if s.WalkSpeed <= 0 {
		s.WalkSpeed = 1
	}
	if s.RunSpeed <= 0 {
		s.RunSpeed = 2 * s.WalkSpeed
	}
	if s.Jump.Duration <= 0 {
		s.Jump.Duration = 500 * time.Millisecond
	}
	if s.Attack.Duration <= 0 {
		s.Attack.Duration = 400 * time.Millisecond
	}
	if s.Attack.Damage <= 0 {
		s.Attack.Damage = 1
	}
	if s.Attack.Range <= 0 {
		s.Attack.Range = 1
	}
	if s.Flinch.Duration <= 0 {
		s.Flinch.Duration = 300 * time.Millisecond
	}
	if s.Flinch.DieDuration <= 0 {
		s.Flinch.DieDuration = time.Second
	}
	return s
}

// ParseLevel decodes a level definition.
func ParseLevel(data []byte) (*Level, error) {
	lvl := &Level{}
	if err := yaml.Unmarshal(data, lvl); err != nil {
		return nil, fmt.Errorf("level: parse: %w", err)
	}
	return lvl, nil
}

// LoadLevel reads and decodes a level definition from path.
func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	return ParseLevel(data)
}
