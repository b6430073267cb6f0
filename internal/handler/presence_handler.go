package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/service"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/response"
)

// PresenceHandler serves presence status and typing indicators.
type PresenceHandler struct {
	presence service.PresenceService
}

// NewPresenceHandler creates the presence handler.
func NewPresenceHandler(presence service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

func (h *PresenceHandler) SetPresence(c *gin.Context) {
	var req domain.PresenceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, err := h.presence.SetPresence(c.Request.Context(), CallerID(c), c.Param("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, rec)
}

func (h *PresenceHandler) GetPresence(c *gin.Context) {
	rec, err := h.presence.GetPresence(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, rec)
}

func (h *PresenceHandler) CommunityPresence(c *gin.Context) {
	summary, err := h.presence.CommunityPresence(c.Request.Context(), c.Param("community_id"), CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, summary)
}

func (h *PresenceHandler) SetTyping(c *gin.Context) {
	var req domain.TypingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.presence.SetTyping(c.Request.Context(),
		c.Param("community_id"), c.Param("channel_id"), CallerID(c), *req.Typing)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"typing": *req.Typing})
}

func (h *PresenceHandler) ListTyping(c *gin.Context) {
	typists, err := h.presence.ListTyping(c.Request.Context(),
		c.Param("community_id"), c.Param("channel_id"), CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, typists)
}
