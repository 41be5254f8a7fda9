package response

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reusedev/draw-mcp/internal/modules/mcp"
)

// RPCError writes a JSON-RPC error envelope with the given HTTP status.
// A nil id renders as id:null, which transport-level failures require.
func RPCError(c *gin.Context, status int, id json.RawMessage, code int, message string) {
	c.JSON(status, mcp.NewErrorResponse(id, code, message))
}

// AbortRPCError is RPCError for middleware: it stops the handler chain.
func AbortRPCError(c *gin.Context, status, code int, message string) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, mcp.NewErrorResponse(nil, code, message))
}
