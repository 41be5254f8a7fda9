package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/service/http/response"
)

// publicPath reports paths exempt from auth and origin checks: the health
// probe and the static image tree, which browsers fetch without headers.
func publicPath(method, path string) bool {
	if path == consts.HealthPath {
		return true
	}
	return method == http.MethodGet && strings.HasPrefix(path, consts.ImagesPath+"/")
}

// Auth enforces the optional Bearer token. Token comparison is constant
// time so response latency leaks nothing about the secret.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := config.GConfig
		if !cfg.AuthEnabled() || publicPath(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}
		parts := strings.Fields(c.GetHeader("Authorization"))
		authorized := len(parts) == 2 && strings.EqualFold(parts[0], "bearer") &&
			subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.AuthToken)) == 1
		if !authorized {
			response.AbortRPCError(c, http.StatusUnauthorized, consts.RPCUnauthorized,
				"Unauthorized: Missing or invalid authentication")
			return
		}
		c.Next()
	}
}

// ValidateOrigin rejects browser requests whose Origin header is not on
// the allow-list. Requests without an Origin header pass.
func ValidateOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if publicPath(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if originAllowed(origin, config.GConfig.AllowedOrigins) {
			c.Next()
			return
		}
		response.AbortRPCError(c, http.StatusForbidden, consts.RPCForbidden,
			fmt.Sprintf("Forbidden: Origin '%s' is not allowed", origin))
	}
}

var localhostOrigins = map[string]bool{
	"http://localhost":  true,
	"http://127.0.0.1":  true,
	"https://localhost": true,
	"https://127.0.0.1": true,
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	// Localhost variants stand in for each other during development.
	if localhostOrigins[origin] {
		for _, a := range allowed {
			if localhostOrigins[a] {
				return true
			}
		}
	}
	for _, a := range allowed {
		if strings.Contains(a, "*") {
			pattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(a), `\*`, ".*") + "$"
			if matched, err := regexp.MatchString(pattern, origin); err == nil && matched {
				return true
			}
		}
	}
	return false
}
