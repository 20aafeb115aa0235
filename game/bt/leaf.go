package bt

import (
	"fmt"

	"go.uber.org/zap"
)

// ---- Leaf nodes ----

// Condition evaluates a boolean predicate. It never returns Pending.
type Condition struct {
	Leaf
	Name      string
	Predicate func() bool
}

// NewCondition creates a Condition labelled name.
func NewCondition(name string, predicate func() bool) *Condition {
	return &Condition{Name: name, Predicate: predicate}
}

func (c *Condition) Execute() Result {
	if c.Predicate == nil {
		return Fail
	}
	return ToResult(c.Predicate())
}

func (c *Condition) NodeName() string {
	if c.Name == "" {
		return "Condition"
	}
	return c.Name
}

// Action runs a side-effecting function.
//
// A returned error or a panic inside Fn is contained here and reported as Fail,
// so one broken action cannot abort the rest of the tree.
type Action struct {
	Leaf
	Name   string
	Fn     func() error
	Logger *zap.Logger
}

// NewAction creates an Action labelled name.
func NewAction(name string, fn func() error, logger *zap.Logger) *Action {
	return &Action{Name: name, Fn: fn, Logger: logger}
}

func (a *Action) Execute() (result Result) {
	if a.Fn == nil {
		return Pass
	}
	defer func() {
		if r := recover(); r != nil {
			a.log().Warn("bt action panicked",
				zap.String("node", a.NodeName()),
				zap.String("recover", fmt.Sprint(r)))
			result = Fail
		}
	}()
	if err := a.Fn(); err != nil {
		a.log().Debug("bt action failed",
			zap.String("node", a.NodeName()),
			zap.Error(err))
		return Fail
	}
	return Pass
}

func (a *Action) NodeName() string {
	if a.Name == "" {
		return "Action"
	}
	return a.Name
}

func (a *Action) log() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// Func lets a function compute the node's result directly.
// Unlike Action, panics are not contained. A nil Fn fails.
type Func struct {
	Leaf
	Name string
	Fn   func() Result
}

func (f *Func) Execute() Result {
	if f.Fn == nil {
		return Fail
	}
	return f.Fn()
}

func (f *Func) NodeName() string {
	if f.Name == "" {
		return "Func"
	}
	return f.Name
}
