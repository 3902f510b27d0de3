// Package anthropic implements the Anthropic Messages API provider.
// Tool calls arrive inline as tool_use content blocks and are normalized
// into the shared invocation shape.
package anthropic

import (
	"context"
	"net/http"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

const (
	// DefaultBaseURL is the default Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// APIVersion is the required Anthropic API version header.
	APIVersion = "2023-06-01"

	// DefaultModel is used when no model override is configured.
	DefaultModel = "claude-3-5-sonnet-20241022"

	// DefaultMaxTokens is the default max tokens if not specified.
	DefaultMaxTokens = 4096
)

// Provider implements core.Provider against the Anthropic Messages API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL overrides the API endpoint (tests, proxies).
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

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// New creates an Anthropic provider. An empty API key yields a provider
// that reports itself unconfigured.
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
	return "anthropic"
}

// Configured reports whether the API key is present.
func (p *Provider) Configured() bool {
	return p.apiKey != ""
}

// Invoke sends a non-streaming request.
func (p *Provider) Invoke(ctx context.Context, req *core.InvokeRequest) (*types.ProviderResponse, error) {
	if !p.Configured() {
		return nil, core.NewConfigurationError("Anthropic API key is required")
	}

	body, err := p.doRequest(ctx, p.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	return parseResponse(body)
}

// Stream sends a streaming request and returns a lazy fragment sequence.
func (p *Provider) Stream(ctx context.Context, req *core.InvokeRequest) (core.TextStream, error) {
	if !p.Configured() {
		return nil, core.NewConfigurationError("Anthropic API key is required")
	}

	body, err := p.doStreamRequest(ctx, p.buildRequest(req, true))
	if err != nil {
		return nil, err
	}
	return newTextStream(body), nil
}
