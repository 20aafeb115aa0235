package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/platformerkit/server/game/world"
	"github.com/kasuganosora/platformerkit/server/journal"
	"github.com/kasuganosora/platformerkit/server/scheduler"
	"go.uber.org/zap"
)

// LoopControl is the part of the tick loop the admin endpoints drive.
type LoopControl interface {
	Start(ctx context.Context) error
	Stop()
	Running() bool
	Steps() uint64
	Panics() uint64
	Dropped() uint64
}

// AdminHandler handles simulation control endpoints.
type AdminHandler struct {
	ctx     context.Context
	world   *world.World
	loop    LoopControl
	sched   *scheduler.Scheduler
	journal *journal.Service
	logger  *zap.Logger
}

// NewAdminHandler creates an AdminHandler. ctx bounds a loop restarted through Resume.
// j may be nil when the journal is disabled.
func NewAdminHandler(
	ctx context.Context,
	w *world.World,
	loop LoopControl,
	sched *scheduler.Scheduler,
	j *journal.Service,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{ctx: ctx, world: w, loop: loop, sched: sched, journal: j, logger: logger}
}

// Metrics returns simulation health metrics.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	alive := 0
	snaps := h.world.Snapshots()
	for _, s := range snaps {
		if !s.Dead {
			alive++
		}
	}
	var journalDropped int64
	if h.journal != nil {
		journalDropped = h.journal.Dropped()
	}
	c.JSON(http.StatusOK, gin.H{
		"tick":            h.world.TickCount(),
		"step_ms":         h.world.Step().Milliseconds(),
		"characters":      len(snaps),
		"alive":           alive,
		"running":         h.loop.Running(),
		"loop_steps":      h.loop.Steps(),
		"loop_panics":     h.loop.Panics(),
		"loop_dropped":    h.loop.Dropped(),
		"journal_enabled": h.journal != nil,
		"journal_dropped": journalDropped,
		"scheduler_tasks": h.sched.Tasks(),
	})
}

// Pause stops the tick loop.
// POST /api/admin/pause
func (h *AdminHandler) Pause(c *gin.Context) {
	h.loop.Stop()
	h.logger.Info("simulation paused", zap.Uint64("tick", h.world.TickCount()))
	c.JSON(http.StatusOK, gin.H{"running": false, "tick": h.world.TickCount()})
}

// Resume restarts the tick loop.
// POST /api/admin/resume
func (h *AdminHandler) Resume(c *gin.Context) {
	if err := h.loop.Start(h.ctx); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("simulation resumed", zap.Uint64("tick", h.world.TickCount()))
	c.JSON(http.StatusOK, gin.H{"running": true, "tick": h.world.TickCount()})
}

// Step advances a paused world by one tick.
// POST /api/admin/step
func (h *AdminHandler) Step(c *gin.Context) {
	if h.loop.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": "pause the simulation before stepping"})
		return
	}
	h.world.Tick()
	c.JSON(http.StatusOK, gin.H{"tick": h.world.TickCount()})
}
