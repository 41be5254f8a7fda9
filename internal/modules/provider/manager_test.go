package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reusedev/draw-mcp/internal/consts"
)

type stubProvider struct {
	name        consts.Provider
	styles      Menu
	resolutions Menu
	generate    func(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}

func (s *stubProvider) Name() consts.Provider { return s.name }
func (s *stubProvider) Styles() Menu          { return s.styles }
func (s *stubProvider) Resolutions() Menu     { return s.resolutions }
func (s *stubProvider) Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	return s.generate(ctx, input)
}

func newStub(name consts.Provider) *stubProvider {
	return &stubProvider{
		name:        name,
		styles:      Menu{{Token: "plain", Label: "plain"}, {Token: "fancy", Label: "fancy"}},
		resolutions: Menu{{Token: "1024x1024", Label: "square"}, {Token: "1024:768", Label: "wide"}},
		generate: func(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
			return &GenerateOutput{B64: "aW1n", MimeType: "image/png", Model: "stub-model"}, nil
		},
	}
}

func TestRegisterOrderAndImplicitDefault(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(newStub(consts.Hunyuan)))
	require.NoError(t, m.Register(newStub(consts.OpenAI)))
	require.Equal(t, consts.Hunyuan, m.Default())
	require.Equal(t, []string{"hunyuan", "openai"}, m.AvailableNames())

	err := m.Register(newStub(consts.Hunyuan))
	require.ErrorContains(t, err, "already registered")
}

func TestSetDefault(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(newStub(consts.Hunyuan)))
	require.NoError(t, m.Register(newStub(consts.Doubao)))

	require.ErrorContains(t, m.SetDefault("dalle"), "invalid default provider")
	require.ErrorContains(t, m.SetDefault("openai"), "unavailable")
	require.NoError(t, m.SetDefault(" Doubao "))
	require.Equal(t, consts.Doubao, m.Default())
}

func TestResolve(t *testing.T) {
	empty := NewManager()
	_, fail := empty.Resolve("")
	require.NotNil(t, fail)
	require.Equal(t, consts.ErrProviderMissing, fail.Code)

	m := NewManager()
	require.NoError(t, m.Register(newStub(consts.OpenAI)))

	p, fail := m.Resolve("")
	require.Nil(t, fail)
	require.Equal(t, consts.OpenAI, p.Name())

	p, fail = m.Resolve(" OpenAI ")
	require.Nil(t, fail)
	require.Equal(t, consts.OpenAI, p.Name())

	_, fail = m.Resolve("hunyuan")
	require.NotNil(t, fail)
	require.Equal(t, consts.ErrProviderUnavailable, fail.Code)
	require.Contains(t, fail.Message, "Provider 'hunyuan' not available")
}

func TestResolveRequestCompoundRouting(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(newStub(consts.Hunyuan)))
	require.NoError(t, m.Register(newStub(consts.OpenAI)))
	require.NoError(t, m.Register(newStub(consts.Doubao)))

	t.Run("style compound selects provider", func(t *testing.T) {
		p, style, res, fail := m.ResolveRequest(GenerateRequest{Style: "openai:fancy"})
		require.Nil(t, fail)
		require.Equal(t, consts.OpenAI, p.Name())
		require.Equal(t, "fancy", style)
		require.Equal(t, "1024x1024", res)
	})

	t.Run("resolution compound selects provider", func(t *testing.T) {
		p, _, res, fail := m.ResolveRequest(GenerateRequest{Resolution: "doubao:1024x1024"})
		require.Nil(t, fail)
		require.Equal(t, consts.Doubao, p.Name())
		require.Equal(t, "1024x1024", res)
	})

	t.Run("style compound wins over resolution compound", func(t *testing.T) {
		p, _, _, fail := m.ResolveRequest(GenerateRequest{Style: "openai:fancy", Resolution: "openai:1024x1024"})
		require.Nil(t, fail)
		require.Equal(t, consts.OpenAI, p.Name())
	})

	t.Run("explicit provider with foreign style compound fails", func(t *testing.T) {
		_, _, _, fail := m.ResolveRequest(GenerateRequest{Provider: "hunyuan", Style: "openai:fancy"})
		require.NotNil(t, fail)
		require.Equal(t, consts.ErrInvalidParameters, fail.Code)
		require.Contains(t, fail.Message, "names provider 'openai'")
	})

	t.Run("mismatched compounds fail", func(t *testing.T) {
		_, _, _, fail := m.ResolveRequest(GenerateRequest{Style: "openai:fancy", Resolution: "doubao:1024x1024"})
		require.NotNil(t, fail)
		require.Equal(t, consts.ErrInvalidParameters, fail.Code)
	})

	t.Run("bare colon resolution is a plain token", func(t *testing.T) {
		p, _, res, fail := m.ResolveRequest(GenerateRequest{Resolution: "1024:768"})
		require.Nil(t, fail)
		require.Equal(t, consts.Hunyuan, p.Name())
		require.Equal(t, "1024:768", res)
	})

	t.Run("defaults fill empty tokens", func(t *testing.T) {
		_, style, res, fail := m.ResolveRequest(GenerateRequest{})
		require.Nil(t, fail)
		require.Equal(t, "plain", style)
		require.Equal(t, "1024x1024", res)
	})

	t.Run("unknown style token", func(t *testing.T) {
		_, _, _, fail := m.ResolveRequest(GenerateRequest{Style: "sepia"})
		require.NotNil(t, fail)
		require.Equal(t, consts.ErrInvalidStyle, fail.Code)
		require.Contains(t, fail.Message, "Available styles")
	})

	t.Run("unknown resolution token", func(t *testing.T) {
		_, _, _, fail := m.ResolveRequest(GenerateRequest{Resolution: "640x480"})
		require.NotNil(t, fail)
		require.Equal(t, consts.ErrInvalidResolution, fail.Code)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("success normalizes output", func(t *testing.T) {
		m := NewManager()
		stub := newStub(consts.Doubao)
		stub.generate = func(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
			require.Equal(t, "fancy", input.Style)
			require.Equal(t, "1024x1024", input.Resolution)
			return &GenerateOutput{B64: "aW1n", Model: "m1"}, nil
		}
		require.NoError(t, m.Register(stub))

		res, fail := m.Generate(context.Background(), GenerateRequest{Prompt: "a cat", Style: "fancy"})
		require.Nil(t, fail)
		require.Equal(t, consts.Doubao, res.Provider)
		require.Equal(t, "fancy", res.Style)
		require.Equal(t, "1024x1024", res.Resolution)
		require.Equal(t, "m1", res.Model)
		require.Equal(t, "image/jpeg", res.MimeType)
	})

	t.Run("adapter failure passes through", func(t *testing.T) {
		m := NewManager()
		stub := newStub(consts.OpenAI)
		stub.generate = func(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
			return nil, NewFailure(consts.ErrProviderError, "OpenAI API rate limit exceeded: slow down", nil)
		}
		require.NoError(t, m.Register(stub))

		_, fail := m.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
		require.NotNil(t, fail)
		require.Equal(t, consts.ErrProviderError, fail.Code)
		require.Equal(t, "OpenAI API rate limit exceeded: slow down", fail.Message)
	})

	t.Run("plain error wrapped", func(t *testing.T) {
		m := NewManager()
		stub := newStub(consts.OpenAI)
		stub.generate = func(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
			return nil, errors.New("boom")
		}
		require.NoError(t, m.Register(stub))

		_, fail := m.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
		require.NotNil(t, fail)
		require.Equal(t, consts.ErrProviderError, fail.Code)
		require.Contains(t, fail.Message, "Image generation error: boom")
	})

	t.Run("empty content", func(t *testing.T) {
		m := NewManager()
		stub := newStub(consts.OpenAI)
		stub.generate = func(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
			return &GenerateOutput{}, nil
		}
		require.NoError(t, m.Register(stub))

		_, fail := m.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
		require.NotNil(t, fail)
		require.Equal(t, consts.ErrMissingContent, fail.Code)
	})

	t.Run("openai extensions rejected elsewhere", func(t *testing.T) {
		m := NewManager()
		require.NoError(t, m.Register(newStub(consts.Hunyuan)))

		_, fail := m.Generate(context.Background(), GenerateRequest{Prompt: "a cat", Background: "transparent"})
		require.NotNil(t, fail)
		require.Equal(t, consts.ErrInvalidParameters, fail.Code)
		require.Contains(t, fail.Message, "only supported by the openai provider")
		require.Contains(t, fail.Message, "background")
	})

	t.Run("openai extensions reach the adapter", func(t *testing.T) {
		m := NewManager()
		stub := newStub(consts.OpenAI)
		compression := 80
		stub.generate = func(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
			require.Equal(t, "transparent", input.Background)
			require.NotNil(t, input.OutputCompression)
			require.Equal(t, 80, *input.OutputCompression)
			return &GenerateOutput{B64: "aW1n", MimeType: "image/webp"}, nil
		}
		require.NoError(t, m.Register(stub))

		res, fail := m.Generate(context.Background(), GenerateRequest{
			Prompt:            "a cat",
			Background:        "transparent",
			OutputFormat:      "webp",
			OutputCompression: &compression,
		})
		require.Nil(t, fail)
		require.Equal(t, "image/webp", res.MimeType)
	})
}
