package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/jwt"
)

// RegisterRoutes mounts the full API surface under /api/v1.
func RegisterRoutes(
	r *gin.Engine,
	tokens *jwt.Manager,
	communities *CommunityHandler,
	messages *MessageHandler,
	presence *PresenceHandler,
	streams *StreamHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1", Identity(tokens))

	users := v1.Group("/users/:user_id")
	{
		users.PUT("/presence", presence.SetPresence)
		users.GET("/presence", presence.GetPresence)
	}

	comm := v1.Group("/communities/:community_id")
	{
		comm.GET("", communities.Get)
		comm.POST("/join", communities.Join)
		comm.POST("/leave", communities.Leave)
		comm.GET("/channels", communities.ListChannels)
		comm.GET("/presence", presence.CommunityPresence)
		comm.GET("/stream", streams.Stream)
		comm.GET("/stream/ws", streams.StreamWS)

		channel := comm.Group("/channels/:channel_id")
		{
			channel.GET("/messages", messages.List)
			channel.POST("/messages", messages.Send)
			channel.PUT("/messages/:message_id", messages.Edit)
			channel.POST("/typing", presence.SetTyping)
			channel.GET("/typing", presence.ListTyping)
		}
	}
}
