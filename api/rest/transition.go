package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/platformerkit/server/journal"
	"go.uber.org/zap"
)

// TransitionHandler serves the state transition journal.
type TransitionHandler struct {
	journal *journal.Service
	logger  *zap.Logger
}

// NewTransitionHandler creates a TransitionHandler.
func NewTransitionHandler(j *journal.Service, logger *zap.Logger) *TransitionHandler {
	return &TransitionHandler{journal: j, logger: logger}
}

// List returns journaled transitions, newest first.
// GET /api/transitions?character_id=...&since_tick=100&limit=50
func (h *TransitionHandler) List(c *gin.Context) {
	q := journal.Query{
		CharacterID: c.Query("character_id"),
		Limit:       50,
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= journal.MaxLimit {
		q.Limit = l
	}
	if s := c.Query("since_tick"); s != "" {
		tick, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since_tick"})
			return
		}
		q.SinceTick = tick
	}
	rows, err := h.journal.Recent(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("journal query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": rows, "count": len(rows)})
}
