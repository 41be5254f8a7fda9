package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/service/http/response"
)

// DeleteSession terminates a session explicitly. Its SSE stream, if any,
// is closed through the eviction hook.
func (h *Handler) DeleteSession(c *gin.Context) {
	sessionID := c.GetHeader(consts.SessionHeader)
	if sessionID == "" {
		response.RPCError(c, http.StatusBadRequest, nil, consts.RPCInvalidRequest,
			"Mcp-Session-Id header is required")
		return
	}
	if err := h.sessions.Delete(sessionID); err != nil {
		response.RPCError(c, http.StatusNotFound, nil, consts.RPCInvalidRequest,
			fmt.Sprintf("Session '%s' not found", sessionID))
		return
	}
	c.Status(http.StatusNoContent)
}
