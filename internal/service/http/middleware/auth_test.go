package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/consts"
)

type errEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setConfig(t *testing.T, mutate func(cfg *config.Config)) {
	t.Helper()
	prev := config.GConfig
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	config.Swap(cfg)
	t.Cleanup(func() { config.Swap(prev) })
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.POST(consts.MessagesPath, ok)
	r.GET(consts.HealthPath, ok)
	r.GET(consts.ImagesPath+"/:file", ok)
	r.POST(consts.ImagesPath+"/:file", ok)
	return r
}

func do(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) *errEnvelope {
	t.Helper()
	var env errEnvelope
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &env))
	return &env
}

func TestPublicPath(t *testing.T) {
	tests := []struct {
		method, path string
		want         bool
	}{
		{http.MethodGet, "/health", true},
		{http.MethodPost, "/health", true},
		{http.MethodGet, "/images/cat.png", true},
		{http.MethodPost, "/images/cat.png", false},
		{http.MethodGet, "/images", false},
		{http.MethodPost, "/mcp/v1/messages", false},
	}
	for _, tt := range tests {
		if got := publicPath(tt.method, tt.path); got != tt.want {
			t.Errorf("publicPath(%s, %s) = %v, want %v", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"no origin header", "", []string{"https://app.example.com"}, true},
		{"wildcard all", "http://anything.test", []string{"*"}, true},
		{"exact match", "https://app.example.com", []string{"https://app.example.com"}, true},
		{"exact mismatch", "https://other.example.com", []string{"https://app.example.com"}, false},
		{"localhost variants interchange", "https://127.0.0.1", []string{"http://localhost"}, true},
		{"localhost origin without localhost allowance", "http://localhost", []string{"https://app.example.com"}, false},
		{"subdomain wildcard match", "https://app.example.com", []string{"https://*.example.com"}, true},
		{"subdomain wildcard deep match", "https://a.b.example.com", []string{"https://*.example.com"}, true},
		{"wildcard does not match suffix tricks", "https://app.example.com.evil.org", []string{"https://*.example.com"}, false},
		{"wildcard requires the dot", "https://evil-example.com", []string{"https://*.example.com"}, false},
		{"empty allow list", "https://app.example.com", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := originAllowed(tt.origin, tt.allowed); got != tt.want {
				t.Errorf("originAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	setConfig(t, nil)
	r := newRouter(Auth())

	w := do(r, http.MethodPost, consts.MessagesPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthEnforced(t *testing.T) {
	setConfig(t, func(cfg *config.Config) { cfg.AuthToken = "s3cret" })
	r := newRouter(Auth())

	t.Run("missing header", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.MessagesPath, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

		env := errBody(t, w)
		require.Equal(t, consts.RPCUnauthorized, env.Error.Code)
		require.Equal(t, "Unauthorized: Missing or invalid authentication", env.Error.Message)
	})

	t.Run("wrong token", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.MessagesPath, map[string]string{"Authorization": "Bearer nope"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.MessagesPath, map[string]string{"Authorization": "Token s3cret"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.MessagesPath, map[string]string{"Authorization": "Bearer s3cret"})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.MessagesPath, map[string]string{"Authorization": "BEARER s3cret"})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("health is public", func(t *testing.T) {
		w := do(r, http.MethodGet, consts.HealthPath, nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("image downloads are public", func(t *testing.T) {
		w := do(r, http.MethodGet, consts.ImagesPath+"/cat.png", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("image uploads are not", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.ImagesPath+"/cat.png", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestValidateOrigin(t *testing.T) {
	setConfig(t, func(cfg *config.Config) { cfg.AllowedOrigins = []string{"https://app.example.com"} })
	r := newRouter(ValidateOrigin())

	t.Run("no origin passes", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.MessagesPath, nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("allowed origin passes", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.MessagesPath, map[string]string{"Origin": "https://app.example.com"})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other origin rejected", func(t *testing.T) {
		w := do(r, http.MethodPost, consts.MessagesPath, map[string]string{"Origin": "http://evil.com"})
		require.Equal(t, http.StatusForbidden, w.Code)

		env := errBody(t, w)
		require.Equal(t, consts.RPCForbidden, env.Error.Code)
		require.Equal(t, "Forbidden: Origin 'http://evil.com' is not allowed", env.Error.Message)
	})

	t.Run("health skips the check", func(t *testing.T) {
		w := do(r, http.MethodGet, consts.HealthPath, map[string]string{"Origin": "http://evil.com"})
		require.Equal(t, http.StatusOK, w.Code)
	})
}
