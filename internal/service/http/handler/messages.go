package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
	"github.com/reusedev/draw-mcp/internal/service/http/response"
)

// Messages handles JSON-RPC POSTs. Transport-level failures answer with an
// error envelope on a non-200 status; handler-level failures ride a 200
// with the error inside the body. Notifications are accepted with 202 and
// no body.
func (h *Handler) Messages(c *gin.Context) {
	var req mcp.Request
	if err := jsoniter.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		response.RPCError(c, http.StatusBadRequest, nil, consts.RPCParseError, "Parse error: Invalid JSON")
		return
	}
	if req.JSONRPC != "2.0" {
		response.RPCError(c, http.StatusBadRequest, req.ID, consts.RPCInvalidRequest,
			"Invalid Request: Missing or invalid 'jsonrpc' field")
		return
	}
	if req.Method == "" {
		response.RPCError(c, http.StatusBadRequest, req.ID, consts.RPCInvalidRequest,
			"Invalid Request: Missing 'method' field")
		return
	}

	cfg := config.GConfig
	sessionID := c.GetHeader(consts.SessionHeader)
	if cfg.EnableSessions && req.Method != "initialize" {
		if sessionID == "" {
			response.RPCError(c, http.StatusBadRequest, req.ID, consts.RPCInvalidRequest,
				"Mcp-Session-Id header is required")
			return
		}
		if _, err := h.sessions.Touch(sessionID); err != nil {
			response.RPCError(c, http.StatusNotFound, req.ID, consts.RPCInvalidRequest,
				fmt.Sprintf("Session '%s' not found or expired", sessionID))
			return
		}
	}

	resp := h.core.Dispatch(c.Request.Context(), sessionID, &req)
	if resp == nil {
		c.Status(http.StatusAccepted)
		return
	}
	if req.Method == "initialize" && cfg.EnableSessions && resp.Error == nil {
		var params mcp.InitializeParams
		if len(req.Params) > 0 {
			_ = jsoniter.Unmarshal(req.Params, &params)
		}
		sess := h.sessions.Create(params.ProtocolVersion, params.ClientInfo.Name, params.ClientInfo.Version)
		c.Header(consts.SessionHeader, sess.ID)
	}
	c.JSON(http.StatusOK, resp)
}
