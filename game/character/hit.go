package character

// Target is anything a Hit can land on.
type Target interface {
	CanBeHit(hit *Hit) bool
	ReceiveHit(hit *Hit)
}

// Hit describes one attack: who made it, for which team, and how hard.
type Hit struct {
	Source *Character
	Team   *Team
	Damage int

	// Ignore collects targets that must not be hit again by the same attack.
	// Nil disables the check.
	Ignore map[Target]struct{}
}

// NewHit creates a Hit from source's team that remembers its targets.
func NewHit(source *Character, damage int) *Hit {
	return &Hit{
		Source: source,
		Team:   source.Team(),
		Damage: damage,
		Ignore: make(map[Target]struct{}),
	}
}

// CanHit reports whether target would accept this hit.
func (h *Hit) CanHit(target Target) bool {
	if target == nil {
		return false
	}
	if _, skip := h.Ignore[target]; skip {
		return false
	}
	return target.CanBeHit(h)
}

// TryHit applies the hit to target if allowed. With dontHitAgain the target is
// remembered so later calls skip it.
func (h *Hit) TryHit(target Target, dontHitAgain bool) bool {
	if !h.CanHit(target) {
		return false
	}
	if dontHitAgain && h.Ignore != nil {
		h.Ignore[target] = struct{}{}
	}
	target.ReceiveHit(h)
	return true
}
