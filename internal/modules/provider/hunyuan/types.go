package hunyuan

import (
	"fmt"

	"github.com/reusedev/draw-mcp/internal/modules/provider"
)

// HunyuanImage 3.0 has no style parameter; the selected style's label is
// injected into the prompt instead.
var styles = provider.Menu{
	{Token: "riman", Label: "日漫动画风格, Japanese anime style"},
	{Token: "xieshi", Label: "写实风格, photorealistic style"},
	{Token: "monai", Label: "莫奈印象派画风, Monet impressionist painting style"},
	{Token: "shuimo", Label: "水墨画风格, Chinese ink wash painting style"},
	{Token: "bianping", Label: "扁平插画风格, flat illustration style"},
	{Token: "xiangsu", Label: "像素插画风格, pixel art style"},
	{Token: "ertonghuiben", Label: "儿童绘本风格, children's picture book style"},
	{Token: "3dxuanran", Label: "3D渲染风格, 3D rendering style"},
	{Token: "manhua", Label: "漫画风格, comic style"},
	{Token: "heibaimanhua", Label: "黑白漫画风格, black and white comic style"},
	{Token: "dongman", Label: "动漫风格, animation style"},
	{Token: "bijiasuo", Label: "毕加索立体主义风格, Picasso cubism style"},
	{Token: "saibopengke", Label: "赛博朋克风格, cyberpunk style"},
	{Token: "youhua", Label: "油画风格, oil painting style"},
	{Token: "masaike", Label: "马赛克风格, mosaic style"},
	{Token: "qinghuaci", Label: "青花瓷风格, blue and white porcelain style"},
	{Token: "xinnianjianzhi", Label: "新年剪纸画风格, New Year paper-cut art style"},
	{Token: "xinnianhuayi", Label: "新年花艺风格, New Year floral art style"},
}

// Width and height each in [512, 2048], width*height <= 1024*1024.
var resolutions = provider.Menu{
	{Token: "768:768", Label: "768:768 (1:1 正方形)"},
	{Token: "768:1024", Label: "768:1024 (3:4 竖向)"},
	{Token: "1024:768", Label: "1024:768 (4:3 横向)"},
	{Token: "1024:1024", Label: "1024:1024 (1:1 正方形大图)"},
	{Token: "720:1280", Label: "720:1280 (9:16 竖向)"},
	{Token: "1280:720", Label: "1280:720 (16:9 横向)"},
	{Token: "512:1024", Label: "512:1024 (1:2 竖向)"},
	{Token: "1024:512", Label: "1024:512 (2:1 横向)"},
}

func styledPrompt(input provider.GenerateInput) string {
	prompt := input.Prompt
	if input.Style != "" {
		if label, ok := styles.Label(input.Style); ok && label != "" {
			prompt = fmt.Sprintf("%s, %s", prompt, label)
		}
	}
	if input.NegativePrompt != "" {
		prompt = fmt.Sprintf("%s. Avoid: %s", prompt, input.NegativePrompt)
	}
	return prompt
}

// firstResultImage picks the first non-empty URL from the job result.
func firstResultImage(images []*string) string {
	for _, img := range images {
		if img != nil && *img != "" {
			return *img
		}
	}
	return ""
}
