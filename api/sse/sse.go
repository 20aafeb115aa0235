package sse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/platformerkit/server/events"
	"go.uber.org/zap"
)

// Keepalive is the interval between comment lines on an idle stream.
var Keepalive = 30 * time.Second

// Handler handles the SSE endpoint.
type Handler struct {
	hub    *events.Hub
	logger *zap.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(hub *events.Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// ServeSSE streams state transitions as server-sent events.
// GET /api/events?character_id=<uuid>
func (h *Handler) ServeSSE(c *gin.Context) {
	filter := c.Query("character_id")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	evCh, unsub := h.hub.Subscribe(events.TopicTransition)
	defer unsub()

	// Send initial connected event.
	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(Keepalive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-evCh:
			if !ok {
				return
			}
			if filter != "" && ev.CharacterID != filter {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Warn("sse encode failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Topic, data)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
