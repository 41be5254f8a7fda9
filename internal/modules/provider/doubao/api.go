package doubao

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/http_client"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
	"github.com/reusedev/draw-mcp/tools"
)

const attemptTimeout = 60 * time.Second

// Provider generates images through the ByteDance Ark API. A configured
// fallback model is tried once when the primary fails with a
// model-unavailability error; the owning provider stays doubao either way.
type Provider struct {
	apiKey        string
	endpoint      string
	model         string
	fallbackModel string
	resolutions   provider.Menu
	client        *http_client.HttpClient
}

func New(apiKey, endpoint, model, fallbackModel string) (*Provider, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("doubao model must be provided via DOUBAO_MODEL")
	}
	fallbackModel = strings.TrimSpace(fallbackModel)
	if fallbackModel == model {
		fallbackModel = ""
	}
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = consts.DoubaoDefaultEndpoint
	}

	minPixels := minimumPixelsForModel(model)
	if fallbackModel != "" {
		if fp := minimumPixelsForModel(fallbackModel); fp > minPixels {
			minPixels = fp
		}
	}

	return &Provider{
		apiKey:        apiKey,
		endpoint:      endpoint,
		model:         model,
		fallbackModel: fallbackModel,
		resolutions:   filterResolutions(minPixels),
		client:        http_client.NewWithTimeout(attemptTimeout),
	}, nil
}

func (p *Provider) Name() consts.Provider {
	return consts.Doubao
}

func (p *Provider) Styles() provider.Menu {
	return styles
}

func (p *Provider) Resolutions() provider.Menu {
	return p.resolutions
}

func (p *Provider) Model() string {
	return p.model
}

func (p *Provider) FallbackModel() string {
	return p.fallbackModel
}

func (p *Provider) Generate(ctx context.Context, input provider.GenerateInput) (*provider.GenerateOutput, error) {
	prompt := styledPrompt(input)
	models := []string{p.model}
	if p.fallbackModel != "" {
		models = append(models, p.fallbackModel)
	}
	logs.Logger.Info().Str("provider", consts.Doubao.String()).Str("model", p.model).
		Str("resolution", input.Resolution).Str("style", input.Style).Msg("image request")

	for i, model := range models {
		parsed, status, errText, err := p.requestGeneration(ctx, model, prompt, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil, provider.NewFailure(consts.ErrProviderError,
					"Doubao API request timeout",
					map[string]any{"provider": consts.Doubao.String(), "model": model, "timeout": true})
			}
			return nil, provider.NewFailure(consts.ErrProviderError,
				fmt.Sprintf("Error occurred during Doubao image generation: %s", err),
				map[string]any{"provider": consts.Doubao.String(), "model": model})
		}
		if parsed == nil {
			if i == 0 && len(models) > 1 && isModelUnavailableError(errText) {
				logs.Logger.Warn().Str("model", model).Str("fallback", models[1]).
					Msg("doubao model unavailable, retrying with fallback")
				continue
			}
			return nil, provider.NewFailure(consts.ErrProviderError,
				fmt.Sprintf("Doubao API request failed: HTTP %d, %s", status, errText),
				map[string]any{"provider": consts.Doubao.String(), "model": model, "status_code": status})
		}

		if len(parsed.Data) == 0 {
			return nil, provider.NewFailure(consts.ErrMissingContent,
				"No image data returned from Doubao API",
				map[string]any{"provider": consts.Doubao.String(), "model": model})
		}
		item := parsed.Data[0]
		switch {
		case item.B64JSON != "":
			return &provider.GenerateOutput{B64: item.B64JSON, MimeType: "image/png", Model: model}, nil
		case item.URL != "":
			data, _, err := tools.GetOnlineImage(ctx, item.URL)
			if err != nil || len(data) == 0 {
				return nil, provider.NewFailure(consts.ErrProviderError,
					"Failed to download image from Doubao",
					map[string]any{"provider": consts.Doubao.String(), "model": model, "url": item.URL})
			}
			mimeType := "image/png"
			if kind := tools.DetectImageType(data); kind != tools.ImageTypeUnknown {
				mimeType = kind.Mime()
			}
			return &provider.GenerateOutput{
				B64:      base64.StdEncoding.EncodeToString(data),
				MimeType: mimeType,
				Model:    model,
			}, nil
		default:
			return nil, provider.NewFailure(consts.ErrMissingContent,
				"Invalid response format from Doubao API",
				map[string]any{"provider": consts.Doubao.String(), "model": model})
		}
	}

	return nil, provider.NewFailure(consts.ErrProviderError,
		"Doubao API request failed after trying all configured models",
		map[string]any{"provider": consts.Doubao.String()})
}

// requestGeneration runs one attempt against one model. A nil response
// with a nil error means the vendor refused the request; errText then
// carries its diagnostic.
func (p *Provider) requestGeneration(ctx context.Context, model, prompt string, input provider.GenerateInput) (*generationResponse, int, string, error) {
	body := generationRequest{
		Model:          model,
		Prompt:         prompt,
		N:              1,
		Size:           input.Resolution,
		ResponseFormat: "b64_json",
		NegativePrompt: input.NegativePrompt,
	}
	req, err := p.client.NewRequest(http.MethodPost, p.endpoint+"/api/v3/images/generations",
		http_client.WithContext(ctx),
		http_client.WithBody(body),
		http_client.WithHeader("Content-Type", "application/json"),
		http_client.WithHeader("Authorization", "Bearer "+p.apiKey),
	)
	if err != nil {
		return nil, 0, "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, string(raw), nil
	}
	if msg := errorText(raw); msg != "" {
		return nil, resp.StatusCode, msg, nil
	}
	parsed, err := parseGenerationResponse(raw)
	if err != nil {
		return nil, resp.StatusCode, "", err
	}
	return parsed, resp.StatusCode, "", nil
}
