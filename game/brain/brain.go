package brain

import "github.com/kasuganosora/platformerkit/server/game/bt"

// Brain drives one character with two trees: OnAwake runs once before the
// first tick, OnTick runs every tick.
//
// Both expect the character to be current in the Context the nodes were built with.
type Brain struct {
	Name    string
	OnAwake bt.Node
	OnTick  bt.Node

	awake bool
	last  bt.Result
}

// Awake runs OnAwake the first time it is called. Later calls return Pass.
func (b *Brain) Awake() bt.Result {
	if b.awake {
		return bt.Pass
	}
	b.awake = true
	if b.OnAwake == nil {
		return bt.Pass
	}
	return b.OnAwake.Execute()
}

// Tick runs one step of OnTick, waking the brain first if needed.
// A brain without an OnTick tree fails, like an empty selector.
func (b *Brain) Tick() bt.Result {
	b.Awake()
	if b.OnTick == nil {
		b.last = bt.Fail
	} else {
		b.last = b.OnTick.Execute()
	}
	return b.last
}

// Last returns the result of the most recent Tick.
func (b *Brain) Last() bt.Result { return b.last }

// Nodes lists every node in both trees, OnAwake first.
func (b *Brain) Nodes() []bt.Node {
	return append(bt.Collect(b.OnAwake), bt.Collect(b.OnTick)...)
}
