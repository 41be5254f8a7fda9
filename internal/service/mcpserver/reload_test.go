package mcpserver

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/consts"
)

// reloadEnvKeys is every variable ApplyEnv reads; tests clear them so a
// developer's shell cannot leak into the diff.
var reloadEnvKeys = []string{
	"MCP_TRANSPORT", "MCP_HOST", "MCP_PORT", "MCP_AUTH_TOKEN", "MCP_ALLOWED_ORIGINS",
	"MCP_SESSION_TIMEOUT", "MCP_ENABLE_SESSIONS", "MCP_SESSION_CLEANUP_INTERVAL",
	"MCP_ENABLE_SSE", "MCP_SSE_KEEPALIVE", "MCP_IMAGE_SAVE_DIR", "MCP_PUBLIC_BASE_URL",
	"MCP_IMAGE_RECORD_TTL", "MCP_GET_IMAGE_DATA_MAX_BYTES", "MCP_DEFAULT_PROVIDER",
	"MCP_REQUEST_TIMEOUT", "MCP_THUMBNAIL", "MCP_THUMBNAIL_RATIO", "MCP_LOG_LEVEL", "MCP_DEBUG",
	"TENCENT_SECRET_ID", "TENCENT_SECRET_KEY",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"DOUBAO_API_KEY", "DOUBAO_ENDPOINT", "DOUBAO_MODEL", "DOUBAO_FALLBACK_MODEL",
}

func clearReloadEnv(t *testing.T) {
	t.Helper()
	for _, key := range reloadEnvKeys {
		if value, ok := os.LookupEnv(key); ok {
			key, value := key, value
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

func TestReloadConfigRejectsNonBool(t *testing.T) {
	core := newTestCore(t)
	result := toolResult(t, core.callTool(context.Background(), "", "reload_config", map[string]any{
		"dotenv_override": "yes",
	}))

	require.Equal(t, "invalid_parameters", result.Error.Code)
	require.Equal(t, "dotenv_override must be a boolean", result.Error.Message)
}

func TestReloadConfigNoChanges(t *testing.T) {
	clearReloadEnv(t)
	core := newTestCore(t)

	result := toolResult(t, core.callTool(context.Background(), "", "reload_config", map[string]any{
		"dotenv_override": false,
	}))

	require.True(t, result.Ok)
	require.Equal(t, []string{}, result.Result["changed_fields"])
	require.NotContains(t, result.Result, "providers")
}

func TestReloadConfigRestartRequired(t *testing.T) {
	clearReloadEnv(t)
	core := newTestCore(t)
	t.Setenv("MCP_PORT", "9100")
	t.Setenv("DOUBAO_API_KEY", "ark-key")

	result := toolResult(t, core.callTool(context.Background(), "", "reload_config", map[string]any{
		"dotenv_override": false,
	}))

	require.False(t, result.Ok)
	require.Equal(t, "restart_required", result.Error.Code)
	require.Equal(t, "Configuration includes non hot-reloadable changes. Please restart the MCP server.", result.Error.Message)
	require.Equal(t, []string{"doubao_api_key", "port"}, result.Error.Details["changed_fields"])
	require.Equal(t, []string{"port"}, result.Error.Details["restart_required_fields"])

	diffs := result.Error.Details["field_diffs"].(map[string]map[string]string)
	require.Equal(t, map[string]string{"before": "8000", "after": "9100"}, diffs["port"])
	require.Equal(t, map[string]string{"before": "<empty>", "after": "<set>"}, diffs["doubao_api_key"])

	// Nothing was applied: the live snapshot still has the old values.
	require.Equal(t, 8000, config.GConfig.Port)
	require.Empty(t, config.GConfig.Doubao.APIKey)
}

func TestReloadConfigHotSwap(t *testing.T) {
	clearReloadEnv(t)
	core := newTestCore(t)
	require.Empty(t, core.Manager().AvailableNames())

	t.Setenv("DOUBAO_API_KEY", "ark-key")
	t.Setenv("MCP_DEFAULT_PROVIDER", "doubao")

	result := toolResult(t, core.callTool(context.Background(), "", "reload_config", map[string]any{
		"dotenv_override": false,
	}))

	require.True(t, result.Ok, "error: %+v", result.Error)
	require.Equal(t, []string{"default_provider", "doubao_api_key"}, result.Result["changed_fields"])
	require.Equal(t, []string{"doubao"}, result.Result["providers"])
	require.Equal(t, "doubao", result.Result["default_provider"])
	require.Equal(t, []string{}, result.Result["restart_required_fields"])

	models := result.Result["provider_models"].(map[string]any)
	doubaoModels := models["doubao"].(map[string]any)
	require.Equal(t, "doubao-seedream-4.0", doubaoModels["model"])
	require.Nil(t, doubaoModels["fallback_model"])

	// Both the config snapshot and the provider set were swapped.
	require.Equal(t, "ark-key", config.GConfig.Doubao.APIKey)
	require.Equal(t, "doubao", config.GConfig.DefaultProvider)
	require.Equal(t, []string{"doubao"}, core.Manager().AvailableNames())
	require.Equal(t, consts.Doubao, core.Manager().Default())
}

func TestReloadConfigRejectsBadDefault(t *testing.T) {
	clearReloadEnv(t)
	core := newTestCore(t)
	t.Setenv("MCP_DEFAULT_PROVIDER", "openai")

	result := toolResult(t, core.callTool(context.Background(), "", "reload_config", map[string]any{
		"dotenv_override": false,
	}))

	require.False(t, result.Ok)
	require.Equal(t, "invalid_config", result.Error.Code)
	require.Contains(t, result.Error.Message, "Failed to initialize providers from configuration")

	// The rejected snapshot must not leak into the live config.
	require.Empty(t, config.GConfig.DefaultProvider)
}

func TestReloadConfigInvalidSnapshot(t *testing.T) {
	clearReloadEnv(t)
	core := newTestCore(t)
	t.Setenv("MCP_IMAGE_RECORD_TTL", "0")

	result := toolResult(t, core.callTool(context.Background(), "", "reload_config", map[string]any{
		"dotenv_override": false,
	}))

	require.False(t, result.Ok)
	require.Equal(t, "invalid_config", result.Error.Code)
	require.Contains(t, result.Error.Message, "Failed to parse configuration")
}
