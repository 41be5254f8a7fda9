package doubao

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reusedev/draw-mcp/internal/modules/provider"
)

const defaultStyle = "general"

// Seedream models use prompt engineering for styles; the keyword of the
// selected style is appended to the prompt.
var styles = provider.Menu{
	{Token: "general", Label: "通用风格"},
	{Token: "anime", Label: "动漫风格 anime style"},
	{Token: "realistic", Label: "写实风格 realistic photographic"},
	{Token: "oil_painting", Label: "油画风格 oil painting"},
	{Token: "watercolor", Label: "水彩风格 watercolor painting"},
	{Token: "sketch", Label: "素描风格 pencil sketch"},
	{Token: "cartoon", Label: "卡通风格 cartoon illustration"},
	{Token: "chinese_painting", Label: "国画风格 traditional Chinese painting"},
	{Token: "pixel_art", Label: "像素艺术 pixel art"},
	{Token: "cyberpunk", Label: "赛博朋克 cyberpunk style"},
	{Token: "fantasy", Label: "奇幻风格 fantasy art"},
	{Token: "sci_fi", Label: "科幻风格 sci-fi concept art"},
}

// 2K options first so default routing does not fall back to legacy low
// resolutions.
var baseResolutions = provider.Menu{
	{Token: "2048x2048", Label: "2048x2048 (2K 正方形，推荐)"},
	{Token: "2560x1440", Label: "2560x1440 (2K 16:9 横向)"},
	{Token: "1440x2560", Label: "1440x2560 (2K 9:16 竖向)"},
	{Token: "2304x1728", Label: "2304x1728 (2K 4:3 横向)"},
	{Token: "1728x2304", Label: "1728x2304 (2K 3:4 竖向)"},
	{Token: "2496x1664", Label: "2496x1664 (2K 3:2 横向)"},
	{Token: "1664x2496", Label: "1664x2496 (2K 2:3 竖向)"},
	{Token: "3024x1296", Label: "3024x1296 (2K 21:9 横向)"},
	{Token: "1296x3024", Label: "1296x3024 (2K 9:21 竖向)"},
	{Token: "1024x1024", Label: "1024x1024 (1:1 大正方形)"},
	{Token: "768x1024", Label: "768x1024 (3:4 竖向)"},
	{Token: "1024x768", Label: "1024x768 (4:3 横向)"},
	{Token: "576x1024", Label: "576x1024 (9:16 竖向)"},
	{Token: "1024x576", Label: "1024x576 (16:9 横向)"},
	{Token: "768x768", Label: "768x768 (1:1 正方形)"},
	{Token: "512x768", Label: "512x768 (2:3 竖向)"},
	{Token: "768x512", Label: "768x512 (3:2 横向)"},
	{Token: "512x512", Label: "512x512 (1:1 小正方形)"},
}

func pixelsForResolution(resolution string) int {
	parts := strings.SplitN(strings.ToLower(resolution), "x", 2)
	if len(parts) != 2 {
		return 0
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return w * h
}

func minimumPixelsForModel(model string) int {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return 0
	}
	if strings.Contains(model, "seedream-4.5") || strings.Contains(model, "seedream-4-5") {
		return 2560 * 1440
	}
	if strings.Contains(model, "seedream-4.0") || strings.Contains(model, "seedream-4-0") || strings.Contains(model, "seedream-4") {
		return 1280 * 720
	}
	return 0
}

// filterResolutions keeps the entries meeting the strictest model
// requirement, never returning an empty menu.
func filterResolutions(minPixels int) provider.Menu {
	if minPixels <= 0 {
		return baseResolutions
	}
	filtered := make(provider.Menu, 0, len(baseResolutions))
	for _, c := range baseResolutions {
		if pixelsForResolution(c.Token) >= minPixels {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return provider.Menu{baseResolutions[0]}
	}
	return filtered
}

var (
	modelTokens       = []string{"model", "模型"}
	unavailableTokens = []string{
		"unsupported", "not found", "does not exist", "invalid", "unavailable",
		"not available", "not enabled", "unknown model",
		"未开通", "不存在", "不支持", "不可用", "非法", "无权限",
	}
)

// isModelUnavailableError reports whether the vendor error text names a
// model problem the configured fallback can answer.
func isModelUnavailableError(text string) bool {
	text = strings.ToLower(text)
	if text == "" {
		return false
	}
	hasModel := false
	for _, token := range modelTokens {
		if strings.Contains(text, token) {
			hasModel = true
			break
		}
	}
	if !hasModel {
		return false
	}
	for _, token := range unavailableTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

func styledPrompt(input provider.GenerateInput) string {
	prompt := input.Prompt
	if input.Style != "" && input.Style != defaultStyle {
		if label, ok := styles.Label(input.Style); ok && label != "" {
			prompt = fmt.Sprintf("%s, %s", prompt, styleKeyword(label))
		}
	}
	return prompt
}

// styleKeyword picks the trailing English keyword of a bilingual label.
func styleKeyword(label string) string {
	fields := strings.Fields(label)
	if len(fields) <= 1 {
		return label
	}
	return fields[len(fields)-1]
}
