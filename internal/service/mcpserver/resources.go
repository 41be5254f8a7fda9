package mcpserver

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
)

func listResources() []mcp.Resource {
	return []mcp.Resource{
		{
			URI:         "providers://list",
			Name:        "Available Providers",
			Description: "List of available image generation API providers",
			MimeType:    "application/json",
		},
		{
			URI:         "styles://list",
			Name:        "All Styles",
			Description: "All available image styles from all providers",
			MimeType:    "application/json",
		},
		{
			URI:         "resolutions://list",
			Name:        "All Resolutions",
			Description: "All available image resolutions from all providers",
			MimeType:    "application/json",
		},
	}
}

func (c *Core) handleResourcesRead(req *mcp.Request) *mcp.Response {
	var params mcp.ReadResourceParams
	if err := jsoniter.Unmarshal(req.Params, &params); err != nil || params.URI == "" {
		return mcp.NewErrorResponse(req.ID, consts.RPCInvalidRequest, "Invalid resources/read params: uri is required")
	}
	text, err := c.readResource(params.URI)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, consts.RPCInternalError, err.Error())
	}
	return mcp.NewResponse(req.ID, &mcp.ReadResourceResult{
		Contents: []mcp.ResourceContent{{URI: params.URI, MimeType: "application/json", Text: text}},
	})
}

func (c *Core) readResource(uri string) (string, error) {
	mgr := c.Manager()
	switch uri {
	case "providers://list":
		return marshalIndent(mgr.AvailableNames())
	case "styles://list":
		return marshalIndent(mgr.AllStyles())
	case "resolutions://list":
		return marshalIndent(mgr.AllResolutions())
	}
	if strings.HasPrefix(uri, "styles://provider/") {
		p, err := resourceProvider(mgr, strings.TrimPrefix(uri, "styles://provider/"))
		if err != nil {
			return "", err
		}
		return marshalIndent(p.Styles().Map())
	}
	if strings.HasPrefix(uri, "resolutions://provider/") {
		p, err := resourceProvider(mgr, strings.TrimPrefix(uri, "resolutions://provider/"))
		if err != nil {
			return "", err
		}
		return marshalIndent(p.Resolutions().Map())
	}
	return "", fmt.Errorf("Unknown resource URI: %s", uri)
}

func resourceProvider(mgr *provider.Manager, name string) (provider.Provider, error) {
	name = provider.NormalizeProviderName(name)
	p, ok := mgr.Get(consts.Provider(name))
	if !ok {
		return nil, fmt.Errorf("Provider '%s' not found", name)
	}
	return p, nil
}

func marshalIndent(v any) (string, error) {
	b, err := jsoniter.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
