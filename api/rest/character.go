package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasuganosora/platformerkit/server/game/world"
	"go.uber.org/zap"
)

// CharacterHandler exposes the live world for inspection.
type CharacterHandler struct {
	world  *world.World
	logger *zap.Logger
}

// NewCharacterHandler creates a CharacterHandler.
func NewCharacterHandler(w *world.World, logger *zap.Logger) *CharacterHandler {
	return &CharacterHandler{world: w, logger: logger}
}

// List returns every character in spawn order.
// GET /api/characters
func (h *CharacterHandler) List(c *gin.Context) {
	snaps := h.world.Snapshots()
	c.JSON(http.StatusOK, gin.H{
		"tick":       h.world.TickCount(),
		"characters": snaps,
		"count":      len(snaps),
	})
}

// Detail returns one character.
// GET /api/characters/:id
func (h *CharacterHandler) Detail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	snap, err := h.world.Snapshot(id)
	if err != nil {
		writeWorldError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Tree returns the brain trees of one character in pre-order with depths.
// GET /api/characters/:id/tree
func (h *CharacterHandler) Tree(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	awake, tick, err := h.world.Tree(id)
	if err != nil {
		writeWorldError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"on_awake": awake, "on_tick": tick})
}

// HitRequest is the body of a debug hit.
type HitRequest struct {
	Damage int `json:"damage" binding:"min=0,max=1000"`
}

// Hit damages a character from the environment.
// POST /api/characters/:id/hit
func (h *CharacterHandler) Hit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req := HitRequest{Damage: 1}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	landed, err := h.world.Hit(id, req.Damage)
	if err != nil {
		writeWorldError(c, err)
		return
	}
	h.logger.Info("debug hit",
		zap.String("character_id", id.String()),
		zap.Int("damage", req.Damage),
		zap.Bool("landed", landed))
	snap, _ := h.world.Snapshot(id)
	c.JSON(http.StatusOK, gin.H{"landed": landed, "character": snap})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeWorldError(c *gin.Context, err error) {
	if errors.Is(err, world.ErrUnknownCharacter) {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
