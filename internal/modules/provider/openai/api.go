package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/http_client"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
)

const defaultBaseURL = "https://api.openai.com"

type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http_client.HttpClient
}

// New validates the model policy up front: only GPT Image models are
// accepted on the generations endpoint.
func New(apiKey, baseURL, model string, timeout time.Duration) (*Provider, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("openai model must be provided via OPENAI_MODEL")
	}
	if !strings.HasPrefix(model, "gpt-image") {
		return nil, fmt.Errorf("unsupported openai image model %q, only GPT Image models are supported (for example: gpt-image-1.5)", model)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  http_client.NewWithTimeout(timeout),
	}, nil
}

func (p *Provider) Name() consts.Provider {
	return consts.OpenAI
}

func (p *Provider) Styles() provider.Menu {
	return styles
}

func (p *Provider) Resolutions() provider.Menu {
	return resolutions
}

func (p *Provider) Model() string {
	return p.model
}

func (p *Provider) Generate(ctx context.Context, input provider.GenerateInput) (*provider.GenerateOutput, error) {
	ext, fail := normalizeExtensions(input)
	if fail != nil {
		return nil, fail
	}
	logs.Logger.Info().Str("provider", consts.OpenAI.String()).Str("model", p.model).
		Str("resolution", input.Resolution).Str("style", input.Style).Msg("image request")

	body := generationRequest{
		Model:             p.model,
		Prompt:            styledPrompt(input),
		Size:              input.Resolution,
		Quality:           "auto",
		N:                 1,
		Background:        ext.background,
		OutputFormat:      ext.outputFormat,
		OutputCompression: ext.compression,
		Moderation:        ext.moderation,
	}
	req, err := p.client.NewRequest(http.MethodPost, p.baseURL+"/v1/images/generations",
		http_client.WithContext(ctx),
		http_client.WithBody(body),
		http_client.WithHeader("Content-Type", "application/json"),
		http_client.WithHeader("Authorization", "Bearer "+p.apiKey),
	)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, provider.NewFailure(consts.ErrProviderError,
			fmt.Sprintf("OpenAI API error: %s", err),
			map[string]any{"provider": consts.OpenAI.String(), "timeout": ctx.Err() != nil})
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewFailure(consts.ErrProviderError,
			fmt.Sprintf("OpenAI API error: %s", err),
			map[string]any{"provider": consts.OpenAI.String()})
	}

	parsed, parseErr := parseGenerationResponse(raw)
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, provider.NewFailure(consts.ErrProviderError,
			fmt.Sprintf("OpenAI API rate limit exceeded: %s", errorText(parsed, raw)),
			map[string]any{"provider": consts.OpenAI.String(), "status_code": resp.StatusCode})
	}
	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewFailure(consts.ErrProviderError,
			fmt.Sprintf("OpenAI API error: HTTP %d, %s", resp.StatusCode, errorText(parsed, raw)),
			map[string]any{"provider": consts.OpenAI.String(), "status_code": resp.StatusCode})
	}
	if parseErr != nil {
		return nil, provider.NewFailure(consts.ErrProviderError,
			fmt.Sprintf("OpenAI API error: %s", parseErr),
			map[string]any{"provider": consts.OpenAI.String()})
	}
	if parsed.Error != nil {
		return nil, provider.NewFailure(consts.ErrProviderError,
			fmt.Sprintf("OpenAI API error: %s", parsed.Error.Message),
			map[string]any{"provider": consts.OpenAI.String()})
	}
	if len(parsed.Data) == 0 {
		return nil, provider.NewFailure(consts.ErrMissingContent,
			"No image data returned from OpenAI API",
			map[string]any{"provider": consts.OpenAI.String()})
	}
	item := parsed.Data[0]
	if item.B64JSON == "" {
		return nil, provider.NewFailure(consts.ErrMissingContent,
			"No base64 image data in OpenAI response",
			map[string]any{"provider": consts.OpenAI.String()})
	}

	mimeType := outputMimeByFormat[ext.outputFormat]
	if mimeType == "" {
		mimeType = "image/png"
	}
	out := &provider.GenerateOutput{
		B64:      item.B64JSON,
		MimeType: mimeType,
		Model:    p.model,
	}
	if item.RevisedPrompt != "" {
		revised := item.RevisedPrompt
		out.RevisedPrompt = &revised
	}
	return out, nil
}

type extensions struct {
	background   string
	outputFormat string
	compression  *int
	moderation   string
}

// normalizeExtensions trims and lowercases the OpenAI-only fields and
// validates them before any network call.
func normalizeExtensions(input provider.GenerateInput) (extensions, *provider.Failure) {
	ext := extensions{
		background:   strings.ToLower(strings.TrimSpace(input.Background)),
		outputFormat: strings.ToLower(strings.TrimSpace(input.OutputFormat)),
		moderation:   strings.ToLower(strings.TrimSpace(input.Moderation)),
		compression:  input.OutputCompression,
	}
	if ext.background != "" && !oneOf(allowedBackgrounds, ext.background) {
		return ext, provider.NewFailure(consts.ErrInvalidParameters,
			fmt.Sprintf("Invalid OpenAI background '%s'. Allowed values: %v", ext.background, allowedBackgrounds),
			map[string]any{"provider": consts.OpenAI.String(), "background": ext.background})
	}
	if ext.outputFormat != "" && !oneOf(allowedOutputFormats, ext.outputFormat) {
		return ext, provider.NewFailure(consts.ErrInvalidParameters,
			fmt.Sprintf("Invalid OpenAI output_format '%s'. Allowed values: %v", ext.outputFormat, allowedOutputFormats),
			map[string]any{"provider": consts.OpenAI.String(), "output_format": ext.outputFormat})
	}
	if ext.moderation != "" && !oneOf(allowedModeration, ext.moderation) {
		return ext, provider.NewFailure(consts.ErrInvalidParameters,
			fmt.Sprintf("Invalid OpenAI moderation '%s'. Allowed values: %v", ext.moderation, allowedModeration),
			map[string]any{"provider": consts.OpenAI.String(), "moderation": ext.moderation})
	}
	if ext.compression != nil {
		if *ext.compression < 0 || *ext.compression > 100 {
			return ext, provider.NewFailure(consts.ErrInvalidParameters,
				"Invalid OpenAI output_compression. Expected integer between 0 and 100.",
				map[string]any{"provider": consts.OpenAI.String(), "output_compression": *ext.compression})
		}
		if ext.outputFormat != "jpeg" && ext.outputFormat != "webp" {
			return ext, provider.NewFailure(consts.ErrInvalidParameters,
				"OpenAI output_compression requires output_format to be 'jpeg' or 'webp'.",
				map[string]any{"provider": consts.OpenAI.String(), "output_format": ext.outputFormat})
		}
	}
	return ext, nil
}
