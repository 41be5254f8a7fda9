package mcpserver

import (
	"time"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
	"github.com/reusedev/draw-mcp/internal/modules/provider/doubao"
	"github.com/reusedev/draw-mcp/internal/modules/provider/hunyuan"
	"github.com/reusedev/draw-mcp/internal/modules/provider/openai"
)

// BuildProviders constructs the provider set for one config snapshot.
// Vendors with incomplete credentials are skipped with a warning; a
// configured default that cannot be satisfied fails construction.
func BuildProviders(cfg *config.Config) (*provider.Manager, error) {
	m := provider.NewManager()
	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	if cfg.Hunyuan.SecretId != "" && cfg.Hunyuan.SecretKey != "" {
		if p, err := hunyuan.New(cfg.Hunyuan.SecretId, cfg.Hunyuan.SecretKey); err != nil {
			logs.Logger.Warn().Err(err).Msg("hunyuan provider skipped")
		} else if err = m.Register(p); err != nil {
			return nil, err
		}
	}
	if cfg.OpenAI.APIKey != "" {
		if p, err := openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, timeout); err != nil {
			logs.Logger.Warn().Err(err).Msg("openai provider skipped")
		} else if err = m.Register(p); err != nil {
			return nil, err
		}
	}
	if cfg.Doubao.APIKey != "" {
		if p, err := doubao.New(cfg.Doubao.APIKey, cfg.Doubao.Endpoint, cfg.Doubao.Model, cfg.Doubao.FallbackModel); err != nil {
			logs.Logger.Warn().Err(err).Msg("doubao provider skipped")
		} else if err = m.Register(p); err != nil {
			return nil, err
		}
	}

	if cfg.DefaultProvider != "" {
		if err := m.SetDefault(cfg.DefaultProvider); err != nil {
			return nil, err
		}
	}
	return m, nil
}
