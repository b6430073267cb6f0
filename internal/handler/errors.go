package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/service"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/response"
)

// respondError maps service sentinels to HTTP responses. Anything unmapped
// is a 500 with the detail kept in the log, not the response.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		response.BadRequest(c, "invalid id")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "resource not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "user not found")
	case errors.Is(err, service.ErrNotMember):
		response.Forbidden(c, "not a member of this community")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, "operation not allowed")
	case errors.Is(err, service.ErrCreatorCannotLeave):
		response.Forbidden(c, "community creator cannot leave")
	case errors.Is(err, service.ErrAlreadyMember):
		response.Conflict(c, "already a member of this community")
	default:
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		response.InternalError(c, "internal server error")
	}
}
