package character

// Team groups characters that do not hurt each other.
// Teams are enemies of every other team unless listed as allies.
type Team struct {
	Name   string
	Allies []*Team
}

// IsAlly reports whether other is t itself or one of t's allies.
// A nil team has no allies, not even itself.
func (t *Team) IsAlly(other *Team) bool {
	if t == nil {
		return false
	}
	if t == other {
		return true
	}
	for _, a := range t.Allies {
		if a == other {
			return true
		}
	}
	return false
}

// IsEnemy is the negation of IsAlly.
func (t *Team) IsEnemy(other *Team) bool {
	return !t.IsAlly(other)
}

func (t *Team) String() string {
	if t == nil {
		return "<none>"
	}
	return t.Name
}
