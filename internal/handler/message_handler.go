package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/service"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/response"
)

// MessageHandler serves channel message operations.
type MessageHandler struct {
	messages service.MessageService
}

// NewMessageHandler creates the message handler.
func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messages.Send(c.Request.Context(),
		c.Param("community_id"), c.Param("channel_id"), CallerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, msg)
}

func (h *MessageHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	page, err := h.messages.List(c.Request.Context(),
		c.Param("community_id"), c.Param("channel_id"), CallerID(c),
		c.Query("before"), c.Query("after"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, page)
}

func (h *MessageHandler) Edit(c *gin.Context) {
	var req domain.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messages.Edit(c.Request.Context(), c.Param("message_id"), CallerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, msg)
}
