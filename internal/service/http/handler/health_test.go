package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reusedev/draw-mcp/internal/consts"
)

func TestHealth(t *testing.T) {
	_, r := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, consts.HealthPath, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy","transport":"http","providers":[]}`, w.Body.String())
}
