package mcpserver

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
)

func listPrompts() []mcp.Prompt {
	return []mcp.Prompt{
		{
			Name:        "image_generation_prompt",
			Description: "Create image generation prompt template with provider and style information",
			Arguments: []mcp.PromptArgument{
				{Name: "description", Description: "Image description", Required: true},
				{Name: "provider", Description: "API provider to use"},
				{Name: "style", Description: "Image style"},
				{Name: "resolution", Description: "Image resolution"},
				{Name: "file_prefix", Description: "Filename prefix"},
			},
		},
	}
}

func (c *Core) handlePromptsGet(req *mcp.Request) *mcp.Response {
	var params mcp.GetPromptParams
	if err := jsoniter.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return mcp.NewErrorResponse(req.ID, consts.RPCInvalidRequest, "Invalid prompts/get params: name is required")
	}
	if params.Name != "image_generation_prompt" {
		return mcp.NewErrorResponse(req.ID, consts.RPCInternalError, fmt.Sprintf("Unknown prompt: %s", params.Name))
	}

	args := params.Arguments
	description := args["description"]
	providerText := "Provider: Auto-select from " + fmt.Sprintf("%v", c.Manager().AvailableNames())
	if v := args["provider"]; v != "" {
		providerText = "Provider: " + v
	}
	styleText := "Style: Default for selected provider"
	if v := args["style"]; v != "" {
		styleText = "Style: " + v
	}
	resolutionText := "Resolution: Default for selected provider"
	if v := args["resolution"]; v != "" {
		resolutionText = "Resolution: " + v
	}
	prefixText := "Filename Prefix: [AI will generate if not provided]"
	if v := args["file_prefix"]; v != "" {
		prefixText = "Filename Prefix: " + v
	}

	mgr := c.Manager()
	styles, _ := marshalIndent(mgr.AllStyles())
	resolutions, _ := marshalIndent(mgr.AllResolutions())

	var b strings.Builder
	b.WriteString("\nPlease use the following prompt to generate an image using multiple API providers:\n\n")
	fmt.Fprintf(&b, "Description: %s\n", description)
	b.WriteString(providerText + "\n")
	b.WriteString(styleText + "\n")
	b.WriteString(resolutionText + "\n")
	fmt.Fprintf(&b, "Save Path: %s\n", c.imageDir)
	b.WriteString(prefixText + "\n\n")
	fmt.Fprintf(&b, "Available Providers: %v\n\n", mgr.AvailableNames())
	fmt.Fprintf(&b, "Available Styles by Provider:\n%s\n\n", styles)
	fmt.Fprintf(&b, "Available Resolutions by Provider:\n%s\n\n", resolutions)
	b.WriteString("You can use the generate_image tool to generate this image and save it.\n")
	b.WriteString("You can specify provider:style or provider:resolution format, or let the system auto-select.\n")

	return mcp.NewResponse(req.ID, &mcp.GetPromptResult{
		Description: fmt.Sprintf("Image generation prompt for: %s", description),
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(b.String())},
		},
	})
}
