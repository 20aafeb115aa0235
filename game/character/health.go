package character

import (
	"fmt"
	"math"
)

// ChangeMode controls what happens to current health when the maximum changes.
type ChangeMode int

const (
	// ChangeScale keeps the same percentage of health.
	ChangeScale ChangeMode = iota
	// ChangeOffset adds the difference between the old and new maximum.
	ChangeOffset
	// ChangeIgnore only clamps the current value to the new maximum.
	ChangeIgnore
)

// Health tracks hit points and the team a character fights for.
type Health struct {
	Team *Team

	max     int
	current int

	onCurrentChanged []func(from, to int)
	onMaxChanged     []func(from, to int)
	onHit            []func(*Hit)
}

// NewHealth creates a Health at full hit points. max is raised to at least 1.
func NewHealth(max int, team *Team) *Health {
	if max < 1 {
		max = 1
	}
	return &Health{Team: team, max: max, current: max}
}

func (h *Health) Maximum() int { return h.max }

func (h *Health) Current() int { return h.current }

// Alive reports whether current health is above zero.
func (h *Health) Alive() bool { return h.current > 0 }

// SetCurrent clamps v to [0, Maximum] and notifies listeners if it changed.
func (h *Health) SetCurrent(v int) {
	old := h.current
	h.current = clamp(v, 0, h.max)
	if h.current == old {
		return
	}
	for _, fn := range h.onCurrentChanged {
		fn(old, h.current)
	}
}

// SetMaximum changes the maximum health, adjusting current health per mode.
func (h *Health) SetMaximum(v int, mode ChangeMode) error {
	if v < 1 {
		v = 1
	}
	if v == h.max {
		return nil
	}
	old := h.max
	switch mode {
	case ChangeScale:
		ratio := float64(h.current) / float64(old)
		h.setMax(v)
		h.SetCurrent(int(math.Round(float64(v) * ratio)))
	case ChangeOffset:
		h.setMax(v)
		h.SetCurrent(h.current + v - old)
	case ChangeIgnore:
		h.setMax(v)
		h.SetCurrent(h.current)
	default:
		return fmt.Errorf("health: unsupported change mode %d", mode)
	}
	return nil
}

func (h *Health) setMax(v int) {
	old := h.max
	h.max = v
	for _, fn := range h.onMaxChanged {
		fn(old, v)
	}
}

// OnCurrentChanged registers fn to run after current health changes.
func (h *Health) OnCurrentChanged(fn func(from, to int)) {
	h.onCurrentChanged = append(h.onCurrentChanged, fn)
}

// OnMaximumChanged registers fn to run after the maximum changes.
func (h *Health) OnMaximumChanged(fn func(from, to int)) {
	h.onMaxChanged = append(h.onMaxChanged, fn)
}

// OnHitReceived registers fn to run after a hit has been applied.
func (h *Health) OnHitReceived(fn func(*Hit)) {
	h.onHit = append(h.onHit, fn)
}

// CanBeHit implements Target: only living members of an enemy team can be hit.
func (h *Health) CanBeHit(hit *Hit) bool {
	return h.current > 0 && h.Team.IsEnemy(hit.Team)
}

// ReceiveHit implements Target.
func (h *Health) ReceiveHit(hit *Hit) {
	h.SetCurrent(h.current - hit.Damage)
	for _, fn := range h.onHit {
		fn(hit)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
