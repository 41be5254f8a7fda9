package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
)

func streamRequest(ctx context.Context, sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, consts.MessagesPath, nil).WithContext(ctx)
	if sessionID != "" {
		req.Header.Set(consts.SessionHeader, sessionID)
	}
	return req
}

func TestStreamDisabled(t *testing.T) {
	_, r := newTestHandler(t, func(cfg *config.Config) { cfg.EnableSSE = false })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, streamRequest(context.Background(), "any"))

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "SSE is disabled", decodeEnvelope(t, w).Error.Message)
}

func TestStreamHeaderRequired(t *testing.T) {
	_, r := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, streamRequest(context.Background(), ""))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Mcp-Session-Id header is required", decodeEnvelope(t, w).Error.Message)
}

func TestStreamUnknownSession(t *testing.T) {
	_, r := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, streamRequest(context.Background(), "ghost"))

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Session 'ghost' not found or expired", decodeEnvelope(t, w).Error.Message)
}

// TestStreamDeliversEvents drives a full stream: connected event, one
// published notification, then session eviction closing the stream.
func TestStreamDeliversEvents(t *testing.T) {
	h, r := newTestHandler(t, nil)
	sess := h.sessions.Create(consts.ProtocolVersion, "test-client", "1.0")

	go func() {
		time.Sleep(150 * time.Millisecond)
		h.hub.Publish(sess.ID, mcp.NewNotification("notifications/message", map[string]any{"level": "info"}))
		time.Sleep(150 * time.Millisecond)
		_ = h.sessions.Delete(sess.ID)
	}()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, streamRequest(context.Background(), sess.ID))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	require.Contains(t, body, "id:0")
	require.Contains(t, body, "event:connected")
	require.Contains(t, body, `"session_id":"`+sess.ID+`"`)
	require.Contains(t, body, "id:1")
	require.Contains(t, body, "event:message")
	require.Contains(t, body, `"method":"notifications/message"`)
}

func TestStreamEndsOnClientDisconnect(t *testing.T) {
	h, r := newTestHandler(t, nil)
	sess := h.sessions.Create(consts.ProtocolVersion, "test-client", "1.0")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, streamRequest(ctx, sess.ID))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after client disconnect")
	}
	require.Contains(t, w.Body.String(), "event:connected")
}
