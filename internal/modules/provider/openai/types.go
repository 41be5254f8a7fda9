package openai

import (
	"fmt"

	"github.com/reusedev/draw-mcp/internal/modules/provider"
)

const defaultStyle = "natural"

var styles = provider.Menu{
	{Token: "natural", Label: "自然风格"},
	{Token: "vivid", Label: "生动风格"},
	{Token: "realistic", Label: "写实风格"},
	{Token: "artistic", Label: "艺术风格"},
	{Token: "cartoon", Label: "卡通风格"},
	{Token: "anime", Label: "动漫风格"},
	{Token: "oil_painting", Label: "油画风格"},
	{Token: "watercolor", Label: "水彩风格"},
	{Token: "sketch", Label: "素描风格"},
	{Token: "digital_art", Label: "数字艺术"},
	{Token: "photographic", Label: "摄影风格"},
	{Token: "minimalist", Label: "极简风格"},
}

var resolutions = provider.Menu{
	{Token: "1024x1024", Label: "1024x1024 (1:1 正方形)"},
	{Token: "1536x1024", Label: "1536x1024 (3:2 横向)"},
	{Token: "1024x1536", Label: "1024x1536 (2:3 竖向)"},
	{Token: "auto", Label: "auto (由模型自动选择最佳尺寸)"},
}

var (
	allowedBackgrounds   = []string{"auto", "opaque", "transparent"}
	allowedOutputFormats = []string{"jpeg", "png", "webp"}
	allowedModeration    = []string{"auto", "low"}
)

var outputMimeByFormat = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

// GPT Image models take no style parameter; non-default styles are folded
// into the prompt.
type generationRequest struct {
	Model             string `json:"model"`
	Prompt            string `json:"prompt"`
	Size              string `json:"size"`
	Quality           string `json:"quality"`
	N                 int    `json:"n"`
	Background        string `json:"background,omitempty"`
	OutputFormat      string `json:"output_format,omitempty"`
	OutputCompression *int   `json:"output_compression,omitempty"`
	Moderation        string `json:"moderation,omitempty"`
}

func styledPrompt(input provider.GenerateInput) string {
	prompt := input.Prompt
	if input.Style != "" && input.Style != defaultStyle {
		label, ok := styles.Label(input.Style)
		if !ok || label == "" {
			label = input.Style
		}
		prompt = fmt.Sprintf("%s, %s", prompt, label)
	}
	if input.NegativePrompt != "" {
		prompt = fmt.Sprintf("%s. Avoid: %s", prompt, input.NegativePrompt)
	}
	return prompt
}

func oneOf(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
