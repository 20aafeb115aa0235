package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrLoopRunning is returned by Start when the loop is already running.
var ErrLoopRunning = errors.New("scheduler: loop already running")

// DefaultMaxCatchUp bounds how many steps a late loop replays at once.
const DefaultMaxCatchUp = 5

// Loop calls a step function at a fixed timestep on a single goroutine.
//
// When the process falls behind, up to MaxCatchUp steps run back to back;
// time beyond that is dropped so a stall never turns into a burst.
// A panicking step is recovered and logged, and the loop continues.
type Loop struct {
	Name       string
	Interval   time.Duration
	MaxCatchUp int

	step   func()
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	steps   atomic.Uint64
	panics  atomic.Uint64
	dropped atomic.Uint64
}

// NewLoop creates a stopped loop running step every interval.
func NewLoop(name string, interval time.Duration, step func(), logger *zap.Logger) *Loop {
	return &Loop{
		Name:       name,
		Interval:   interval,
		MaxCatchUp: DefaultMaxCatchUp,
		step:       step,
		logger:     logger,
	}
}

// Start runs the loop in the background until ctx is done or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		select {
		case <-l.done:
			// Ended with its parent context; start afresh.
			l.cancel()
		default:
			return ErrLoopRunning
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
	l.logger.Info("loop started", zap.String("loop", l.Name), zap.Duration("interval", l.Interval))
	return nil
}

// Stop cancels the loop and waits for the current step to finish.
// It is safe to call on a stopped loop.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	l.mu.Lock()
	if l.done == done {
		l.cancel, l.done = nil, nil
	}
	l.mu.Unlock()
}

// Running reports whether the loop goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// Steps returns how many steps have run.
func (l *Loop) Steps() uint64 { return l.steps.Load() }

// Panics returns how many steps panicked.
func (l *Loop) Panics() uint64 { return l.panics.Load() }

// Dropped returns how many steps were skipped to catch up.
func (l *Loop) Dropped() uint64 { return l.dropped.Load() }

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	last := time.Now()
	var owed time.Duration
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped",
				zap.String("loop", l.Name),
				zap.Uint64("steps", l.steps.Load()))
			return
		case now := <-ticker.C:
			owed += now.Sub(last)
			last = now
			n := 0
			for owed >= l.Interval && n < l.maxCatchUp() {
				l.once()
				owed -= l.Interval
				n++
			}
			if owed >= l.Interval {
				skipped := uint64(owed / l.Interval)
				l.dropped.Add(skipped)
				l.logger.Warn("loop falling behind, dropping steps",
					zap.String("loop", l.Name),
					zap.Uint64("dropped", skipped))
				owed %= l.Interval
			}
		}
	}
}

func (l *Loop) maxCatchUp() int {
	if l.MaxCatchUp <= 0 {
		return 1
	}
	return l.MaxCatchUp
}

func (l *Loop) once() {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.logger.Error("loop step panicked",
				zap.String("loop", l.Name),
				zap.Any("recover", r))
		}
	}()
	l.steps.Add(1)
	l.step()
}
