package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/reusedev/draw-mcp/internal/consts"
)

// Manager holds the adapters that came up live at construction and applies
// the fixed selection policy order. It is immutable once built; a config
// reload builds a fresh manager and swaps it in wholesale.
type Manager struct {
	providers map[consts.Provider]Provider
	order     []consts.Provider
	def       consts.Provider
}

func NewManager() *Manager {
	return &Manager{providers: make(map[consts.Provider]Provider)}
}

// Register adds a live adapter. Call order is the selection-policy order;
// the first registered provider becomes the implicit default. Duplicate
// names are rejected.
func (m *Manager) Register(p Provider) error {
	name := p.Name()
	if _, ok := m.providers[name]; ok {
		return fmt.Errorf("provider %q already registered", name)
	}
	m.providers[name] = p
	m.order = append(m.order, name)
	if m.def == "" {
		m.def = name
	}
	return nil
}

// SetDefault pins the default provider. The name must be supported and
// live, otherwise construction fails outright rather than falling back.
func (m *Manager) SetDefault(name string) error {
	normalized := NormalizeProviderName(name)
	supported := false
	for _, p := range consts.ProviderOrder {
		if normalized == p.String() {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("invalid default provider %q, supported: %v", name, consts.ProviderOrder)
	}
	if _, ok := m.providers[consts.Provider(normalized)]; !ok {
		return fmt.Errorf("default provider %q is configured but unavailable, initialized providers: %v", normalized, m.AvailableNames())
	}
	m.def = consts.Provider(normalized)
	return nil
}

func (m *Manager) Available() []consts.Provider {
	out := make([]consts.Provider, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Manager) AvailableNames() []string {
	out := make([]string, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, name.String())
	}
	return out
}

func (m *Manager) Default() consts.Provider {
	return m.def
}

func (m *Manager) Get(name consts.Provider) (Provider, bool) {
	p, ok := m.providers[name]
	return p, ok
}

// AllStyles maps every live provider to its style menu.
func (m *Manager) AllStyles() map[string]map[string]string {
	out := make(map[string]map[string]string, len(m.order))
	for _, name := range m.order {
		out[name.String()] = m.providers[name].Styles().Map()
	}
	return out
}

// AllResolutions maps every live provider to its resolution menu.
func (m *Manager) AllResolutions() map[string]map[string]string {
	out := make(map[string]map[string]string, len(m.order))
	for _, name := range m.order {
		out[name.String()] = m.providers[name].Resolutions().Map()
	}
	return out
}

// Resolve returns the adapter for an explicit hint, or the default when
// the hint is empty. A named provider that is unknown or not live is a
// hard failure, never a silent fallback.
func (m *Manager) Resolve(explicit string) (Provider, *Failure) {
	name := NormalizeProviderName(explicit)
	if name == "" {
		if m.def == "" {
			available := m.AvailableNames()
			return nil, NewFailure(consts.ErrProviderMissing,
				fmt.Sprintf("No provider specified and no default provider available. Available providers: %v", available),
				map[string]any{"available_providers": available})
		}
		name = m.def.String()
	}
	p, ok := m.providers[consts.Provider(name)]
	if !ok {
		available := m.AvailableNames()
		return nil, NewFailure(consts.ErrProviderUnavailable,
			fmt.Sprintf("Provider '%s' not available. Available providers: %v", name, available),
			map[string]any{"provider": name, "available_providers": available})
	}
	return p, nil
}

// GenerateRequest is a raw tool-level request; provider, style and
// resolution may still carry compound provider prefixes.
type GenerateRequest struct {
	Prompt            string
	Provider          string
	Style             string
	Resolution        string
	NegativePrompt    string
	Background        string
	OutputFormat      string
	OutputCompression *int
	Moderation        string
}

// GenerateResult is the normalized outcome of one generation call.
type GenerateResult struct {
	Provider      consts.Provider
	Style         string
	Resolution    string
	Model         string
	B64           string
	MimeType      string
	RevisedPrompt *string
}

// ResolveRequest picks the owning provider and the effective style and
// resolution tokens. Provider resolution runs before token validation
// because bare tokens are only meaningful relative to the chosen menu.
func (m *Manager) ResolveRequest(req GenerateRequest) (Provider, string, string, *Failure) {
	styleProv, styleVal, styleCompound := ParseCompound(req.Style, consts.ProviderOrder)
	resProv, resVal, resCompound := ParseCompound(req.Resolution, consts.ProviderOrder)

	explicit := NormalizeProviderName(req.Provider)
	if explicit == "" {
		if styleCompound {
			explicit = styleProv.String()
		} else if resCompound {
			explicit = resProv.String()
		}
	}

	p, fail := m.Resolve(explicit)
	if fail != nil {
		return nil, "", "", fail
	}

	if styleCompound && styleProv != p.Name() {
		return nil, "", "", NewFailure(consts.ErrInvalidParameters,
			fmt.Sprintf("Style token '%s' names provider '%s' but the call uses '%s'", req.Style, styleProv, p.Name()),
			map[string]any{"provider": p.Name().String(), "style": req.Style})
	}
	if resCompound && resProv != p.Name() {
		return nil, "", "", NewFailure(consts.ErrInvalidParameters,
			fmt.Sprintf("Resolution token '%s' names provider '%s' but the call uses '%s'", req.Resolution, resProv, p.Name()),
			map[string]any{"provider": p.Name().String(), "resolution": req.Resolution})
	}

	style := styleVal
	if style != "" && !p.Styles().Has(style) {
		tokens := p.Styles().Tokens()
		return nil, "", "", NewFailure(consts.ErrInvalidStyle,
			fmt.Sprintf("Invalid style '%s' for provider '%s'. Available styles: %v", style, p.Name(), tokens),
			map[string]any{"provider": p.Name().String(), "style": style, "available_styles": tokens})
	}
	if style == "" {
		style = p.Styles().Default()
	}

	resolution := resVal
	if resolution != "" && !p.Resolutions().Has(resolution) {
		tokens := p.Resolutions().Tokens()
		return nil, "", "", NewFailure(consts.ErrInvalidResolution,
			fmt.Sprintf("Invalid resolution '%s' for provider '%s'. Available resolutions: %v", resolution, p.Name(), tokens),
			map[string]any{"provider": p.Name().String(), "resolution": resolution, "available_resolutions": tokens})
	}
	if resolution == "" {
		resolution = p.Resolutions().Default()
	}

	return p, style, resolution, nil
}

// Generate resolves the request, runs the adapter and normalizes the
// outcome. No manager state is touched for the duration of the vendor
// call.
func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, *Failure) {
	p, style, resolution, fail := m.ResolveRequest(req)
	if fail != nil {
		return nil, fail
	}
	if fail := validateExtensions(p.Name(), req); fail != nil {
		return nil, fail
	}

	out, err := p.Generate(ctx, GenerateInput{
		Prompt:            req.Prompt,
		Style:             style,
		Resolution:        resolution,
		NegativePrompt:    req.NegativePrompt,
		Background:        req.Background,
		OutputFormat:      req.OutputFormat,
		OutputCompression: req.OutputCompression,
		Moderation:        req.Moderation,
	})
	if err != nil {
		if f, ok := AsFailure(err); ok {
			return nil, f
		}
		return nil, NewFailure(consts.ErrProviderError,
			fmt.Sprintf("Image generation error: %s", err),
			map[string]any{"provider": p.Name().String()})
	}
	if out == nil || out.B64 == "" {
		return nil, NewFailure(consts.ErrMissingContent,
			"No image content in the generation result",
			map[string]any{"provider": p.Name().String()})
	}

	mimeType := out.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return &GenerateResult{
		Provider:      p.Name(),
		Style:         style,
		Resolution:    resolution,
		Model:         out.Model,
		B64:           out.B64,
		MimeType:      mimeType,
		RevisedPrompt: out.RevisedPrompt,
	}, nil
}

// validateExtensions rejects OpenAI-only fields for other providers before
// any network call happens.
func validateExtensions(name consts.Provider, req GenerateRequest) *Failure {
	if name == consts.OpenAI {
		return nil
	}
	var set []string
	if strings.TrimSpace(req.Background) != "" {
		set = append(set, "background")
	}
	if strings.TrimSpace(req.OutputFormat) != "" {
		set = append(set, "output_format")
	}
	if req.OutputCompression != nil {
		set = append(set, "output_compression")
	}
	if strings.TrimSpace(req.Moderation) != "" {
		set = append(set, "moderation")
	}
	if len(set) == 0 {
		return nil
	}
	return NewFailure(consts.ErrInvalidParameters,
		fmt.Sprintf("Parameters %v are only supported by the openai provider, got provider '%s'", set, name),
		map[string]any{"provider": name.String(), "parameters": set})
}
