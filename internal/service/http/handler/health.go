package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reusedev/draw-mcp/internal/consts"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"transport": consts.TransportHTTP.String(),
		"providers": h.core.Manager().AvailableNames(),
	})
}
