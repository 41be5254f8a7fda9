package provider

import (
	"strings"

	"github.com/reusedev/draw-mcp/internal/consts"
)

// NormalizeProviderName lowercases and trims an explicit provider hint so
// "Hunyuan " and "hunyuan" select the same adapter.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseCompound splits a style/resolution token at the first colon when the
// prefix case-insensitively names a known provider. Tokens without a
// provider-shaped prefix stay bare, so "1024:1024" is a plain resolution
// while "hunyuan:1024:1024" names hunyuan with value "1024:1024".
func ParseCompound(token string, known []consts.Provider) (consts.Provider, string, bool) {
	idx := strings.Index(token, ":")
	if idx <= 0 {
		return "", token, false
	}
	prefix := strings.ToLower(strings.TrimSpace(token[:idx]))
	for _, p := range known {
		if prefix == p.String() {
			return p, token[idx+1:], true
		}
	}
	return "", token, false
}
