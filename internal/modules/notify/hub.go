package notify

import (
	"sync"

	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
)

// streamBuffer bounds how many undelivered notifications a session may
// hold before new ones are dropped.
const streamBuffer = 16

// Hub fans server-initiated JSON-RPC notifications out to per-session
// subscribers. A session has at most one attached channel; publishes to
// sessions without a subscriber, or with a full buffer, are dropped and
// counted rather than queued.
type Hub struct {
	mu      sync.Mutex
	streams map[string]chan *mcp.Notification
	dropped int64
}

func NewHub() *Hub {
	return &Hub{streams: make(map[string]chan *mcp.Notification)}
}

// Subscribe attaches a fresh channel for the session, closing any
// previous one so stale readers terminate.
func (h *Hub) Subscribe(sessionID string) chan *mcp.Notification {
	ch := make(chan *mcp.Notification, streamBuffer)
	h.mu.Lock()
	if old, ok := h.streams[sessionID]; ok {
		close(old)
	}
	h.streams[sessionID] = ch
	h.mu.Unlock()
	logs.Logger.Debug().Str("session_id", sessionID).Msg("stream subscribed")
	return ch
}

// Unsubscribe detaches ch if it is still the session's current channel
// and closes it. A channel replaced by a later Subscribe is already
// closed, so the call becomes a no-op.
func (h *Hub) Unsubscribe(sessionID string, ch chan *mcp.Notification) {
	h.mu.Lock()
	if cur, ok := h.streams[sessionID]; ok && cur == ch {
		delete(h.streams, sessionID)
		close(cur)
	}
	h.mu.Unlock()
}

// Publish delivers n to the session's subscriber without ever blocking.
func (h *Hub) Publish(sessionID string, n *mcp.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.streams[sessionID]
	if !ok {
		h.dropped++
		logs.Logger.Debug().Str("session_id", sessionID).Str("method", n.Method).Msg("notification dropped, no subscriber")
		return
	}
	select {
	case ch <- n:
	default:
		h.dropped++
		logs.Logger.Warn().Str("session_id", sessionID).Str("method", n.Method).Msg("notification dropped, stream buffer full")
	}
}

// CloseSession tears down the session's stream. The session manager
// calls it from the evict hook on expiry and explicit delete.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	if ch, ok := h.streams[sessionID]; ok {
		delete(h.streams, sessionID)
		close(ch)
	}
	h.mu.Unlock()
}

// Dropped reports how many notifications were discarded since start.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
