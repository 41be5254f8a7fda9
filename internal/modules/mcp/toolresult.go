package mcp

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/draw-mcp/internal/consts"
)

// ImageInfo describes one generated image inside a tool result. The
// contract fields are always present; base64_data is carried internally
// and stripped before the result leaves the server, except on the
// get_image_data path.
type ImageInfo struct {
	Id            string  `json:"id"`
	Provider      string  `json:"provider"`
	MimeType      string  `json:"mime_type"`
	FileName      *string `json:"file_name"`
	LocalPath     *string `json:"local_path"`
	URL           *string `json:"url"`
	SizeBytes     int     `json:"size_bytes"`
	RevisedPrompt *string `json:"revised_prompt"`
	SaveError     *string `json:"save_error"`
	ThumbnailURL  *string `json:"thumbnail_url,omitempty"`
	Base64Data    string  `json:"base64_data,omitempty"`
}

type ToolError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// ToolResult is the fixed result shape every tool returns, success or
// failure alike.
type ToolResult struct {
	Version string         `json:"version"`
	Ok      bool           `json:"ok"`
	Images  []ImageInfo    `json:"images"`
	Error   *ToolError     `json:"error"`
	Result  map[string]any `json:"result,omitempty"`
}

func SuccessResult(images ...ImageInfo) *ToolResult {
	if images == nil {
		images = []ImageInfo{}
	}
	return &ToolResult{Version: consts.ToolResultVersion, Ok: true, Images: images}
}

func ErrorResult(code consts.ErrCode, message string, details map[string]any) *ToolResult {
	if details == nil {
		details = map[string]any{}
	}
	return &ToolResult{
		Version: consts.ToolResultVersion,
		Ok:      false,
		Images:  []ImageInfo{},
		Error:   &ToolError{Code: code.String(), Message: message, Details: details},
	}
}

// Stripped returns a copy of the result with every image's base64 payload
// removed. The original is left untouched.
func (r *ToolResult) Stripped() *ToolResult {
	out := *r
	out.Images = make([]ImageInfo, len(r.Images))
	for i, img := range r.Images {
		img.Base64Data = ""
		out.Images[i] = img
	}
	return &out
}

// BuildCallResult renders the tool result as an MCP tools/call result.
// With keepBinaryInline the JSON text retains base64_data and no image
// content blocks are added; otherwise the payload is stripped and each
// image with binary data becomes an image content block.
func (r *ToolResult) BuildCallResult(keepBinaryInline bool) *CallToolResult {
	payload := r
	if !keepBinaryInline {
		payload = r.Stripped()
	}
	text, err := jsoniter.MarshalToString(payload)
	if err != nil {
		text = `{"version":"` + consts.ToolResultVersion + `","ok":false,"images":[],"error":{"code":"internal_error","message":"marshal tool result failed","details":{}}}`
	}
	content := []Content{TextContent(text)}
	if !keepBinaryInline {
		for _, img := range r.Images {
			if img.Base64Data != "" {
				content = append(content, ImageContent(img.Base64Data, img.MimeType))
			}
		}
	}
	return &CallToolResult{Content: content, StructuredContent: payload, IsError: !r.Ok}
}

// ExtensionForMime maps an image MIME type to the file extension used
// when persisting results.
func ExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	default:
		return "img"
	}
}
