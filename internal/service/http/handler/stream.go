package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/service/http/response"
)

// Stream serves the per-session SSE channel. Event ids are strictly
// monotonic within one stream, starting at 0 with the connected event.
// The stream ends when the client disconnects, the session is evicted,
// or a write fails.
func (h *Handler) Stream(c *gin.Context) {
	cfg := config.GConfig
	if !cfg.EnableSSE {
		response.RPCError(c, http.StatusMethodNotAllowed, nil, consts.RPCInvalidRequest, "SSE is disabled")
		return
	}
	sessionID := c.GetHeader(consts.SessionHeader)
	if sessionID == "" {
		response.RPCError(c, http.StatusBadRequest, nil, consts.RPCInvalidRequest,
			"Mcp-Session-Id header is required")
		return
	}
	if cfg.EnableSessions {
		if _, err := h.sessions.Touch(sessionID); err != nil {
			response.RPCError(c, http.StatusNotFound, nil, consts.RPCInvalidRequest,
				fmt.Sprintf("Session '%s' not found or expired", sessionID))
			return
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := h.hub.Subscribe(sessionID)
	defer h.hub.Unsubscribe(sessionID, ch)

	eventID := 0
	send := func(event consts.SSEEvent, data any) bool {
		err := sse.Encode(c.Writer, sse.Event{
			Id:    strconv.Itoa(eventID),
			Event: event.String(),
			Data:  data,
		})
		if err != nil {
			logs.Logger.Debug().Str("session_id", sessionID).Err(err).Msg("sse write failed")
			return false
		}
		eventID++
		c.Writer.Flush()
		return true
	}
	if !send(consts.EventConnected, map[string]string{"session_id": sessionID}) {
		return
	}

	keepalive := time.NewTicker(time.Duration(cfg.SSEKeepaliveInterval) * time.Second)
	defer keepalive.Stop()
	clientGone := c.Request.Context().Done()
	for {
		select {
		case n, ok := <-ch:
			if !ok {
				return
			}
			if !send(consts.EventMessage, n) {
				return
			}
		case <-keepalive.C:
			if !send(consts.EventPing, map[string]string{"type": "keepalive"}) {
				return
			}
		case <-clientGone:
			return
		}
	}
}
