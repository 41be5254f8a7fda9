package doubao

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
)

func TestNew(t *testing.T) {
	t.Run("model required", func(t *testing.T) {
		if _, err := New("key", "", " ", ""); err == nil {
			t.Fatal("expected an error for the empty model")
		}
	})

	t.Run("fallback equal to model is dropped", func(t *testing.T) {
		p, err := New("key", "", "seedream-4", "seedream-4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.FallbackModel() != "" {
			t.Fatalf("fallback = %q, want empty", p.FallbackModel())
		}
	})

	t.Run("endpoint defaults and trims", func(t *testing.T) {
		p, err := New("key", "https://ark.example/", "seedream-4", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.endpoint != "https://ark.example" {
			t.Fatalf("endpoint = %q", p.endpoint)
		}
		p, err = New("key", "", "seedream-4", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.endpoint != consts.DoubaoDefaultEndpoint {
			t.Fatalf("endpoint = %q", p.endpoint)
		}
	})

	t.Run("resolutions honor the stricter model", func(t *testing.T) {
		p, err := New("key", "", "doubao-seedream-4.0-250828", "doubao-seedream-4.5-251128")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, token := range p.Resolutions().Tokens() {
			if pixelsForResolution(token) < 2560*1440 {
				t.Fatalf("token %q below the 4.5 floor", token)
			}
		}
	})
}

func TestGenerate(t *testing.T) {
	requestedModel := func(r *http.Request) string {
		body, _ := io.ReadAll(r.Body)
		var req generationRequest
		if err := jsoniter.Unmarshal(body, &req); err != nil {
			return ""
		}
		return req.Model
	}

	t.Run("b64 success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v3/images/generations" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer key" {
				t.Errorf("authorization = %q", got)
			}
			w.Write([]byte(`{"data":[{"b64_json":"aW1n"}]}`))
		}))
		defer srv.Close()

		p, err := New("key", srv.URL, "seedream-4", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, err := p.Generate(context.Background(), provider.GenerateInput{Prompt: "a cat", Resolution: "2048x2048"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.B64 != "aW1n" || out.MimeType != "image/png" || out.Model != "seedream-4" {
			t.Fatalf("unexpected output: %+v", out)
		}
	})

	t.Run("falls back when the model is unavailable", func(t *testing.T) {
		var models []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			model := requestedModel(r)
			models = append(models, model)
			if model == "primary" {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":{"message":"The model primary does not exist"}}`))
				return
			}
			w.Write([]byte(`{"data":[{"b64_json":"aW1n"}]}`))
		}))
		defer srv.Close()

		p, err := New("key", srv.URL, "primary", "backup")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, err := p.Generate(context.Background(), provider.GenerateInput{Prompt: "a cat", Resolution: "2048x2048"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Model != "backup" {
			t.Fatalf("model = %q, want backup", out.Model)
		}
		if len(models) != 2 || models[0] != "primary" || models[1] != "backup" {
			t.Fatalf("models tried: %v", models)
		}
	})

	t.Run("refusal without model problem does not fall back", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
		}))
		defer srv.Close()

		p, err := New("key", srv.URL, "primary", "backup")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = p.Generate(context.Background(), provider.GenerateInput{Prompt: "a cat", Resolution: "2048x2048"})
		fail, ok := provider.AsFailure(err)
		if !ok {
			t.Fatalf("expected a failure, got %v", err)
		}
		if fail.Code != consts.ErrProviderError || !strings.Contains(fail.Message, "HTTP 429") {
			t.Fatalf("unexpected failure: %+v", fail)
		}
		if calls != 1 {
			t.Fatalf("calls = %d, want 1", calls)
		}
	})

	t.Run("empty data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		}))
		defer srv.Close()

		p, err := New("key", srv.URL, "seedream-4", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = p.Generate(context.Background(), provider.GenerateInput{Prompt: "a cat", Resolution: "2048x2048"})
		fail, ok := provider.AsFailure(err)
		if !ok || fail.Code != consts.ErrMissingContent {
			t.Fatalf("unexpected result: %v", err)
		}
	})

	t.Run("error body with 200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":{"message":"content policy violation"}}`))
		}))
		defer srv.Close()

		p, err := New("key", srv.URL, "seedream-4", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = p.Generate(context.Background(), provider.GenerateInput{Prompt: "a cat", Resolution: "2048x2048"})
		fail, ok := provider.AsFailure(err)
		if !ok || !strings.Contains(fail.Message, "content policy violation") {
			t.Fatalf("unexpected result: %v", err)
		}
	})
}
