package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/stream"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
)

const wsWriteTimeout = 10 * time.Second

// StreamHandler serves the live community update feed over SSE and
// websocket. Both transports share the same session loop; only the sink
// differs.
type StreamHandler struct {
	streams  *stream.Service
	upgrader websocket.Upgrader
}

// NewStreamHandler creates the stream handler.
func NewStreamHandler(streams *stream.Service) *StreamHandler {
	return &StreamHandler{
		streams: streams,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Stream serves GET /communities/:community_id/stream as server-sent events.
// Validation failures respond before any stream bytes are written.
func (h *StreamHandler) Stream(c *gin.Context) {
	session, err := h.open(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	session.Run(c.Request.Context(), &sseSink{w: c.Writer})
}

// StreamWS serves the same feed over a websocket. The read pump exists only
// to observe the close frame and cancel the session.
func (h *StreamHandler) StreamWS(c *gin.Context) {
	session, err := h.open(c)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	session.Run(ctx, &wsSink{conn: conn})
}

func (h *StreamHandler) open(c *gin.Context) (*stream.Session, error) {
	cp := stream.Checkpoint{LastMessageID: c.Query("after")}
	return h.streams.Open(c.Request.Context(),
		c.Param("community_id"), c.Query("channel_id"), CallerID(c), cp)
}

type sseSink struct {
	w gin.ResponseWriter
}

func (s *sseSink) Send(event domain.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Send(event domain.StreamEvent) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}
