package bt

import "time"

// Clock reports the simulated time that passed since the previous tick.
type Clock interface {
	Delta() time.Duration
}

// FixedClock is a Clock with a constant step. Tests and the world tick loop use it.
type FixedClock struct {
	Step time.Duration
}

func (c *FixedClock) Delta() time.Duration { return c.Step }

// Wait stays Pending until Duration has accumulated across calls, then passes
// and starts counting again from zero.
type Wait struct {
	Leaf
	Duration time.Duration
	Clock    Clock

	elapsed time.Duration
}

// NewWait creates a Wait driven by clock.
func NewWait(d time.Duration, clock Clock) *Wait {
	return &Wait{Duration: d, Clock: clock}
}

func (w *Wait) Execute() Result {
	if w.Clock != nil {
		w.elapsed += w.Clock.Delta()
	}
	if w.elapsed < w.Duration {
		return Pending
	}
	w.elapsed = 0
	return Pass
}

// Elapsed returns the time accumulated towards the current wait.
func (w *Wait) Elapsed() time.Duration { return w.elapsed }
