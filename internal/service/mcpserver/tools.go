package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
	"github.com/reusedev/draw-mcp/internal/modules/record"
)

func listTools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "generate_image",
			Description: "Generate image based on prompt using multiple API providers (Hunyuan, OpenAI, Doubao)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"prompt": map[string]any{
						"type":        "string",
						"description": "Image description text",
					},
					"provider": map[string]any{
						"type":        "string",
						"description": "API provider to use. Available: hunyuan, openai, doubao. Leave empty to use default provider",
						"default":     "",
					},
					"style": map[string]any{
						"type":        "string",
						"description": "Image style. Format: 'provider:style' or just 'style' for default provider",
						"default":     "",
					},
					"resolution": map[string]any{
						"type":        "string",
						"description": "Image resolution. Format: 'provider:resolution' or just 'resolution' for default provider",
						"default":     "",
					},
					"negative_prompt": map[string]any{
						"type":        "string",
						"description": "Negative prompt, describes content you don't want in the image",
						"default":     "",
					},
					"file_prefix": map[string]any{
						"type":        "string",
						"description": "Optional prefix for the output filename (English only)",
						"default":     "",
					},
					"background": map[string]any{
						"type":        "string",
						"description": "OpenAI only. Background of the image: transparent, opaque or auto",
						"default":     "",
					},
					"output_format": map[string]any{
						"type":        "string",
						"description": "OpenAI only. Returned image format: png, jpeg or webp",
						"default":     "",
					},
					"output_compression": map[string]any{
						"type":        "integer",
						"description": "OpenAI only. Compression level 0-100, requires output_format jpeg or webp",
					},
					"moderation": map[string]any{
						"type":        "string",
						"description": "OpenAI only. Content moderation strictness: low or auto",
						"default":     "",
					},
				},
				"required": []string{"prompt"},
			},
			OutputSchema: generateImageOutputSchema(),
		},
		{
			Name:        "get_image_data",
			Description: "Return the base64 payload of a previously generated image by its id",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"image_id": map[string]any{
						"type":        "string",
						"description": "Image id from a generate_image result",
					},
				},
				"required": []string{"image_id"},
			},
		},
		{
			Name:        "list_providers",
			Description: "List available image generation providers and the default provider",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "list_styles",
			Description: "List available image styles, optionally for a single provider",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"provider": map[string]any{
						"type":        "string",
						"description": "Provider name. Leave empty for all providers",
						"default":     "",
					},
				},
			},
		},
		{
			Name:        "list_resolutions",
			Description: "List available image resolutions, optionally for a single provider",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"provider": map[string]any{
						"type":        "string",
						"description": "Provider name. Leave empty for all providers",
						"default":     "",
					},
				},
			},
		},
		{
			Name:        "reload_config",
			Description: "Reload runtime configuration without process restart. Only a safe subset of fields is hot-reloadable (mainly provider credentials/models)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"dotenv_override": map[string]any{
						"type":        "boolean",
						"description": "Whether to force-refresh environment values from .env before reload",
						"default":     true,
					},
				},
			},
		},
	}
}

func generateImageOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"version": map[string]any{"type": "string"},
			"ok":      map[string]any{"type": "boolean"},
			"images": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":             map[string]any{"type": "string"},
						"provider":       map[string]any{"type": "string"},
						"mime_type":      map[string]any{"type": "string"},
						"file_name":      map[string]any{"type": []string{"string", "null"}},
						"local_path":     map[string]any{"type": []string{"string", "null"}},
						"url":            map[string]any{"type": []string{"string", "null"}},
						"size_bytes":     map[string]any{"type": "integer"},
						"revised_prompt": map[string]any{"type": []string{"string", "null"}},
						"save_error":     map[string]any{"type": []string{"string", "null"}},
					},
					"required": []string{
						"id", "provider", "mime_type", "file_name", "local_path",
						"url", "size_bytes", "revised_prompt", "save_error",
					},
				},
			},
			"error": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"code":    map[string]any{"type": "string"},
					"message": map[string]any{"type": "string"},
					"details": map[string]any{"type": "object"},
				},
				"required": []string{"code", "message", "details"},
			},
		},
		"required": []string{"version", "ok", "images", "error"},
	}
}

func (c *Core) callTool(ctx context.Context, sessionID, name string, args map[string]any) *mcp.CallToolResult {
	logs.Logger.Info().Str("tool", name).Msg("tool call")
	switch name {
	case "generate_image":
		return c.generateImage(ctx, sessionID, args)
	case "get_image_data":
		return c.getImageData(args)
	case "list_providers":
		return c.listProviders()
	case "list_styles":
		return c.listStyles(args)
	case "list_resolutions":
		return c.listResolutions(args)
	case "reload_config":
		return c.reloadConfig(args)
	default:
		return mcp.ErrorResult(consts.ErrUnknownTool,
			fmt.Sprintf("Unknown tool: %s", name),
			map[string]any{"tool_name": name}).BuildCallResult(false)
	}
}

func (c *Core) getImageData(args map[string]any) *mcp.CallToolResult {
	imageID := strings.TrimSpace(stringArg(args, "image_id"))
	if imageID == "" {
		return mcp.ErrorResult(consts.ErrInvalidParameters,
			"Parameter 'image_id' is required",
			map[string]any{"parameter": "image_id"}).BuildCallResult(false)
	}
	rec, err := c.records.Get(imageID)
	if err != nil {
		var tooLarge *record.TooLargeError
		if errors.As(err, &tooLarge) {
			return mcp.ErrorResult(consts.ErrPayloadTooLarge,
				fmt.Sprintf("Image '%s' is %d bytes, above the %d byte inline limit", imageID, tooLarge.SizeBytes, tooLarge.MaxBytes),
				map[string]any{
					"image_id":   imageID,
					"size_bytes": tooLarge.SizeBytes,
					"max_bytes":  tooLarge.MaxBytes,
				}).BuildCallResult(false)
		}
		return mcp.ErrorResult(consts.ErrImageNotFound,
			fmt.Sprintf("Image '%s' not found or expired", imageID),
			map[string]any{"image_id": imageID}).BuildCallResult(false)
	}
	return mcp.SuccessResult(rec.Image).BuildCallResult(true)
}

func (c *Core) listProviders() *mcp.CallToolResult {
	mgr := c.Manager()
	result := mcp.SuccessResult()
	result.Result = map[string]any{
		"providers":        mgr.AvailableNames(),
		"default_provider": defaultProviderName(mgr),
	}
	return result.BuildCallResult(false)
}

func (c *Core) listStyles(args map[string]any) *mcp.CallToolResult {
	mgr := c.Manager()
	name := provider.NormalizeProviderName(stringArg(args, "provider"))
	if name == "" {
		result := mcp.SuccessResult()
		result.Result = map[string]any{"styles": mgr.AllStyles()}
		return result.BuildCallResult(false)
	}
	p, fail := providerByName(mgr, name)
	if fail != nil {
		return fail.BuildCallResult(false)
	}
	result := mcp.SuccessResult()
	result.Result = map[string]any{
		"styles": map[string]map[string]string{name: p.Styles().Map()},
	}
	return result.BuildCallResult(false)
}

func (c *Core) listResolutions(args map[string]any) *mcp.CallToolResult {
	mgr := c.Manager()
	name := provider.NormalizeProviderName(stringArg(args, "provider"))
	if name == "" {
		result := mcp.SuccessResult()
		result.Result = map[string]any{"resolutions": mgr.AllResolutions()}
		return result.BuildCallResult(false)
	}
	p, fail := providerByName(mgr, name)
	if fail != nil {
		return fail.BuildCallResult(false)
	}
	result := mcp.SuccessResult()
	result.Result = map[string]any{
		"resolutions": map[string]map[string]string{name: p.Resolutions().Map()},
	}
	return result.BuildCallResult(false)
}

func providerByName(mgr *provider.Manager, name string) (provider.Provider, *mcp.ToolResult) {
	p, ok := mgr.Get(consts.Provider(name))
	if !ok {
		available := mgr.AvailableNames()
		return nil, mcp.ErrorResult(consts.ErrProviderUnavailable,
			fmt.Sprintf("Provider '%s' not available. Available providers: %v", name, available),
			map[string]any{"provider": name, "available_providers": available})
	}
	return p, nil
}

func defaultProviderName(mgr *provider.Manager) any {
	if d := mgr.Default(); d != "" {
		return d.String()
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// compressionArg converts the optional output_compression argument.
// Absent or null yields nil; a non-integer value fails.
func compressionArg(args map[string]any) (*int, bool) {
	v, ok := args["output_compression"]
	if !ok || v == nil {
		return nil, true
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return nil, false
		}
		value := int(n)
		return &value, true
	case string:
		value, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil, false
		}
		return &value, true
	}
	return nil, false
}
