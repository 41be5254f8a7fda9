package mcpserver

import (
	"context"
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
	"github.com/reusedev/draw-mcp/internal/modules/notify"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
	"github.com/reusedev/draw-mcp/internal/modules/record"
)

// Core is the transport-agnostic MCP server: one method table shared by
// the HTTP and stdio transports. Only the provider manager is swappable
// after construction; a config reload rebuilds it and swaps the pointer
// under the lock.
type Core struct {
	mu       sync.RWMutex
	manager  *provider.Manager
	records  *record.Store
	hub      *notify.Hub
	imageDir string
}

func NewCore(manager *provider.Manager, records *record.Store, hub *notify.Hub, imageDir string) *Core {
	return &Core{manager: manager, records: records, hub: hub, imageDir: imageDir}
}

// Manager returns the current provider manager snapshot. Callers keep the
// snapshot for the whole request; a concurrent reload never mutates it.
func (c *Core) Manager() *provider.Manager {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manager
}

func (c *Core) swapManager(m *provider.Manager) {
	c.mu.Lock()
	c.manager = m
	c.mu.Unlock()
}

// Dispatch routes one JSON-RPC request. Notifications return nil; they
// are acknowledged at the transport level and never answered in the body.
// sessionID tags server-initiated notifications, empty when the transport
// has no session concept.
func (c *Core) Dispatch(ctx context.Context, sessionID string, req *mcp.Request) (resp *mcp.Response) {
	defer func() {
		if r := recover(); r != nil {
			logs.Logger.Error().Str("method", req.Method).Interface("panic", r).Msg("request handler panicked")
			resp = mcp.NewErrorResponse(req.ID, consts.RPCInternalError, fmt.Sprintf("Internal error: %v", r))
		}
	}()

	if req.IsNotification() {
		logs.Logger.Debug().Str("method", req.Method).Msg("notification received")
		return nil
	}

	switch req.Method {
	case "initialize":
		return c.handleInitialize(req)
	case "tools/list":
		return mcp.NewResponse(req.ID, &mcp.ToolsListResult{Tools: listTools()})
	case "tools/call":
		return c.handleToolsCall(ctx, sessionID, req)
	case "resources/list":
		return mcp.NewResponse(req.ID, &mcp.ResourcesListResult{Resources: listResources()})
	case "resources/read":
		return c.handleResourcesRead(req)
	case "prompts/list":
		return mcp.NewResponse(req.ID, &mcp.PromptsListResult{Prompts: listPrompts()})
	case "prompts/get":
		return c.handlePromptsGet(req)
	default:
		return mcp.NewErrorResponse(req.ID, consts.RPCMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (c *Core) handleInitialize(req *mcp.Request) *mcp.Response {
	var params mcp.InitializeParams
	if len(req.Params) > 0 {
		if err := jsoniter.Unmarshal(req.Params, &params); err != nil {
			return mcp.NewErrorResponse(req.ID, consts.RPCInvalidRequest, fmt.Sprintf("Invalid initialize params: %s", err))
		}
	}
	logs.Logger.Info().
		Str("protocol_version", params.ProtocolVersion).
		Str("client", params.ClientInfo.Name).
		Str("client_version", params.ClientInfo.Version).
		Msg("initialize handshake")
	return mcp.NewResponse(req.ID, &mcp.InitializeResult{
		ProtocolVersion: consts.ProtocolVersion,
		ServerInfo:      mcp.ServerInfo{Name: consts.ServerName, Version: consts.ServerVersion},
	})
}

func (c *Core) handleToolsCall(ctx context.Context, sessionID string, req *mcp.Request) *mcp.Response {
	var params mcp.CallToolParams
	if err := jsoniter.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return mcp.NewErrorResponse(req.ID, consts.RPCInvalidRequest, "Invalid tools/call params: name is required")
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}
	return mcp.NewResponse(req.ID, c.callTool(ctx, sessionID, params.Name, params.Arguments))
}

// notifySession pushes a logging-style notification onto the session's
// SSE stream. Sessions without a subscriber drop it.
func (c *Core) notifySession(sessionID, level string, data map[string]any) {
	if sessionID == "" {
		return
	}
	c.hub.Publish(sessionID, mcp.NewNotification("notifications/message", map[string]any{
		"level":  level,
		"logger": consts.ServerName,
		"data":   data,
	}))
}
