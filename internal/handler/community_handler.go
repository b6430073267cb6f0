package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/service"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/response"
)

// CommunityHandler serves community reads and membership changes.
type CommunityHandler struct {
	communities service.CommunityService
}

// NewCommunityHandler creates the community handler.
func NewCommunityHandler(communities service.CommunityService) *CommunityHandler {
	return &CommunityHandler{communities: communities}
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.communities.Get(c.Request.Context(), c.Param("community_id"), CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, community)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	communityID := c.Param("community_id")
	if err := h.communities.Join(c.Request.Context(), communityID, CallerID(c)); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"community_id": communityID, "joined": true})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	communityID := c.Param("community_id")
	if err := h.communities.Leave(c.Request.Context(), communityID, CallerID(c)); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"community_id": communityID, "joined": false})
}

func (h *CommunityHandler) ListChannels(c *gin.Context) {
	channels, err := h.communities.ListChannels(c.Request.Context(), c.Param("community_id"), CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"channels": channels})
}
