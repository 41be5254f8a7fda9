package handler

import (
	"github.com/reusedev/draw-mcp/internal/modules/notify"
	"github.com/reusedev/draw-mcp/internal/modules/session"
	"github.com/reusedev/draw-mcp/internal/service/mcpserver"
)

// Handler carries the shared state behind every HTTP route.
type Handler struct {
	core     *mcpserver.Core
	sessions *session.Manager
	hub      *notify.Hub
}

func New(core *mcpserver.Core, sessions *session.Manager, hub *notify.Hub) *Handler {
	return &Handler{core: core, sessions: sessions, hub: hub}
}
