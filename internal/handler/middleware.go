package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/jwt"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/response"
)

const (
	headerAuthorization = "Authorization"
	headerUserID        = "X-User-ID"
	bearerPrefix        = "Bearer "
)

// Identity resolves the caller id for every request. A bearer token's
// subject wins over the X-User-ID header; requests with neither are 401.
func Identity(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var callerID string

		if auth := c.GetHeader(headerAuthorization); strings.HasPrefix(auth, bearerPrefix) {
			claims, err := tokens.ValidateToken(strings.TrimPrefix(auth, bearerPrefix))
			if err != nil {
				response.Unauthorized(c, "invalid or expired token")
				c.Abort()
				return
			}
			callerID = claims.Subject
		}

		if callerID == "" {
			callerID = c.GetHeader(headerUserID)
		}
		if callerID == "" {
			response.Unauthorized(c, "missing identity")
			c.Abort()
			return
		}

		c.Set(log.FieldUserID, callerID)
		c.Next()
	}
}

// CallerID returns the authenticated caller id set by Identity.
func CallerID(c *gin.Context) string {
	return c.GetString(log.FieldUserID)
}
