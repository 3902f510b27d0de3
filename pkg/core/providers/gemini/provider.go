// Package gemini implements the Google Gemini generateContent provider.
// The Gemini API speaks camelCase JSON, uses "model" for the assistant
// role, and reports tool calls as functionCall parts; all of that is
// translated into the shared shapes here.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when no model override is configured.
	DefaultModel = "gemini-2.0-flash"

	// DefaultMaxTokens is the default max tokens if not specified.
	DefaultMaxTokens = 4096
)

// Provider implements core.Provider against the Gemini API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// New creates a Gemini provider. An empty API key yields a provider that
// reports itself unconfigured.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// Configured reports whether the API key is present.
func (p *Provider) Configured() bool {
	return p.apiKey != ""
}

// Invoke sends a non-streaming generateContent request.
func (p *Provider) Invoke(ctx context.Context, req *core.InvokeRequest) (*types.ProviderResponse, error) {
	if !p.Configured() {
		return nil, core.NewConfigurationError("Gemini API key is required")
	}

	resp, err := p.send(ctx, p.buildRequest(req), ":generateContent", false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("read response: %w", err))
	}
	return p.parseResponse(body)
}

// Stream sends a streaming request and returns a lazy fragment sequence.
func (p *Provider) Stream(ctx context.Context, req *core.InvokeRequest) (core.TextStream, error) {
	if !p.Configured() {
		return nil, core.NewConfigurationError("Gemini API key is required")
	}

	resp, err := p.send(ctx, p.buildRequest(req), ":streamGenerateContent?alt=sse", true)
	if err != nil {
		return nil, err
	}
	return newTextStream(resp.Body), nil
}

func (p *Provider) send(ctx context.Context, req *geminiRequest, verb string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s%s", p.baseURL, p.model, verb)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("http request: %w", err))
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		var wire struct {
			Error struct {
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		if err := json.Unmarshal(raw, &wire); err == nil && wire.Error.Message != "" {
			return nil, core.NewProviderError(p.Name(), fmt.Errorf("%s: %s", wire.Error.Status, wire.Error.Message))
		}
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}
	return resp, nil
}
