package provider

import (
	"context"
	"errors"

	"github.com/reusedev/draw-mcp/internal/consts"
)

// Capability is one entry of a style or resolution menu.
type Capability struct {
	Token string
	Label string
}

// Menu is an ordered capability list; the first entry is the provider
// default. Go maps would lose declaration order, so menus stay slices.
type Menu []Capability

func (m Menu) Default() string {
	if len(m) == 0 {
		return ""
	}
	return m[0].Token
}

func (m Menu) Has(token string) bool {
	for _, c := range m {
		if c.Token == token {
			return true
		}
	}
	return false
}

func (m Menu) Label(token string) (string, bool) {
	for _, c := range m {
		if c.Token == token {
			return c.Label, true
		}
	}
	return "", false
}

func (m Menu) Tokens() []string {
	tokens := make([]string, 0, len(m))
	for _, c := range m {
		tokens = append(tokens, c.Token)
	}
	return tokens
}

// Map renders the menu as token → label for listing payloads.
func (m Menu) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, c := range m {
		out[c.Token] = c.Label
	}
	return out
}

// GenerateInput carries an already validated request to an adapter. Style
// and Resolution are bare menu tokens of the owning provider. The
// extension fields are honored by OpenAI only; the manager rejects them
// for other providers before any adapter call.
type GenerateInput struct {
	Prompt            string
	Style             string
	Resolution        string
	NegativePrompt    string
	Background        string
	OutputFormat      string
	OutputCompression *int
	Moderation        string
}

type GenerateOutput struct {
	B64           string
	MimeType      string
	Model         string
	RevisedPrompt *string
}

// Provider is one vendor adapter behind the uniform generation contract.
type Provider interface {
	Name() consts.Provider
	Styles() Menu
	Resolutions() Menu
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}

// Failure is a typed failure carrying the stable code surfaced in tool
// results. Adapters and the manager return it for every mapped error path.
type Failure struct {
	Code    consts.ErrCode
	Message string
	Details map[string]any
}

func (f *Failure) Error() string {
	return f.Message
}

func NewFailure(code consts.ErrCode, message string, details map[string]any) *Failure {
	if details == nil {
		details = map[string]any{}
	}
	return &Failure{Code: code, Message: message, Details: details}
}

// AsFailure unwraps err to a *Failure when one is in the chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
