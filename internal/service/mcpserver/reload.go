package mcpserver

import (
	"fmt"
	"sort"

	"github.com/joho/godotenv"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
)

// reloadConfig applies environment changes to a cloned snapshot, verifies
// it, and swaps config plus provider set atomically. Changes touching
// non-reloadable fields are rejected before anything is rebuilt.
func (c *Core) reloadConfig(args map[string]any) *mcp.CallToolResult {
	dotenvOverride := true
	if v, ok := args["dotenv_override"]; ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			return mcp.ErrorResult(consts.ErrInvalidParameters,
				"dotenv_override must be a boolean",
				map[string]any{"parameter": "dotenv_override"}).BuildCallResult(false)
		}
		dotenvOverride = b
	}
	if dotenvOverride {
		if err := godotenv.Overload(); err != nil {
			logs.Logger.Warn().Err(err).Msg("dotenv overload skipped")
		}
	}

	current := config.GConfig
	next := current.Clone()
	next.ApplyEnv()
	if err := next.Verify(); err != nil {
		return mcp.ErrorResult(consts.ErrInvalidConfig,
			fmt.Sprintf("Failed to parse configuration: %s", err),
			nil).BuildCallResult(false)
	}

	changes := config.Diff(current, next)
	if len(changes) == 0 {
		result := mcp.SuccessResult()
		result.Result = map[string]any{"changed_fields": []string{}}
		return result.BuildCallResult(false)
	}

	changedNames := make([]string, 0, len(changes))
	restartNames := make([]string, 0)
	fieldDiffs := make(map[string]map[string]string, len(changes))
	for _, change := range changes {
		changedNames = append(changedNames, change.Field)
		fieldDiffs[change.Field] = map[string]string{"before": change.Old, "after": change.New}
		if !config.ReloadableFields[change.Field] {
			restartNames = append(restartNames, change.Field)
		}
	}
	sort.Strings(changedNames)
	sort.Strings(restartNames)

	if len(restartNames) > 0 {
		return mcp.ErrorResult(consts.ErrRestartRequired,
			"Configuration includes non hot-reloadable changes. Please restart the MCP server.",
			map[string]any{
				"changed_fields":          changedNames,
				"restart_required_fields": restartNames,
				"field_diffs":             fieldDiffs,
			}).BuildCallResult(false)
	}

	manager, err := BuildProviders(next)
	if err != nil {
		return mcp.ErrorResult(consts.ErrInvalidConfig,
			fmt.Sprintf("Failed to initialize providers from configuration: %s", err),
			nil).BuildCallResult(false)
	}

	config.Swap(next)
	c.swapManager(manager)
	logs.Logger.Info().
		Strs("changed_fields", changedNames).
		Strs("providers", manager.AvailableNames()).
		Msg("configuration reloaded")

	result := mcp.SuccessResult()
	result.Result = map[string]any{
		"changed_fields":          changedNames,
		"providers":               manager.AvailableNames(),
		"default_provider":        defaultProviderName(manager),
		"provider_models":         providerModels(manager),
		"restart_required_fields": []string{},
	}
	return result.BuildCallResult(false)
}

func providerModels(m *provider.Manager) map[string]any {
	models := map[string]any{}
	if p, ok := m.Get(consts.OpenAI); ok {
		if withModel, assertOK := p.(interface{ Model() string }); assertOK {
			models["openai"] = map[string]any{"model": withModel.Model()}
		}
	}
	if p, ok := m.Get(consts.Doubao); ok {
		if withModels, assertOK := p.(interface {
			Model() string
			FallbackModel() string
		}); assertOK {
			entry := map[string]any{"model": withModels.Model()}
			if fb := withModels.FallbackModel(); fb != "" {
				entry["fallback_model"] = fb
			} else {
				entry["fallback_model"] = nil
			}
			models["doubao"] = entry
		}
	}
	return models
}
