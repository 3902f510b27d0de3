// Package gateway routes model invocations across configured providers
// and applies a single-hop fallback when the preferred provider fails.
package gateway

import (
	"context"
	"log/slog"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// Gateway holds the configured providers in preference order.
type Gateway struct {
	providers []core.Provider
	logger    *slog.Logger
}

// Option configures the gateway.
type Option func(*Gateway)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// New creates a gateway over the given providers. Order matters: the
// first configured provider is the default preference.
func New(providers []core.Provider, opts ...Option) *Gateway {
	g := &Gateway{
		providers: providers,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Providers returns the configured providers, in preference order.
func (g *Gateway) Providers() []core.Provider {
	out := make([]core.Provider, 0, len(g.providers))
	for _, p := range g.providers {
		if p.Configured() {
			out = append(out, p)
		}
	}
	return out
}

// Lookup returns the configured provider with the given name, or nil.
func (g *Gateway) Lookup(name string) core.Provider {
	for _, p := range g.providers {
		if p.Name() == name && p.Configured() {
			return p
		}
	}
	return nil
}

// Invoke calls the preferred provider and, on failure, retries exactly
// once on the next configured provider. The preferred name may be empty,
// in which case the first configured provider is used. A fallback that
// also fails propagates the fallback's error.
func (g *Gateway) Invoke(ctx context.Context, preferred string, req *core.InvokeRequest) (*types.ProviderResponse, error) {
	primary, fallback := g.pick(preferred)
	if primary == nil {
		return nil, core.ErrNoProviderAvailable
	}

	resp, err := primary.Invoke(ctx, req)
	if err == nil {
		return resp, nil
	}
	if fallback == nil {
		return nil, err
	}

	g.logger.Warn("provider failed, falling back",
		"provider", primary.Name(),
		"fallback", fallback.Name(),
		"error", err)
	providerFallbacks.WithLabelValues(primary.Name(), fallback.Name()).Inc()

	return fallback.Invoke(ctx, req)
}

// Stream behaves like Invoke but returns a fragment stream. Fallback
// applies only to establishing the stream; mid-stream failures surface
// to the consumer as-is.
func (g *Gateway) Stream(ctx context.Context, preferred string, req *core.InvokeRequest) (core.TextStream, core.Provider, error) {
	primary, fallback := g.pick(preferred)
	if primary == nil {
		return nil, nil, core.ErrNoProviderAvailable
	}

	stream, err := primary.Stream(ctx, req)
	if err == nil {
		return stream, primary, nil
	}
	if fallback == nil {
		return nil, nil, err
	}

	g.logger.Warn("provider failed, falling back",
		"provider", primary.Name(),
		"fallback", fallback.Name(),
		"error", err)
	providerFallbacks.WithLabelValues(primary.Name(), fallback.Name()).Inc()

	stream, err = fallback.Stream(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return stream, fallback, nil
}

// pick resolves the primary provider for a preference and the single
// fallback candidate, both restricted to configured providers.
func (g *Gateway) pick(preferred string) (primary, fallback core.Provider) {
	configured := g.Providers()
	if len(configured) == 0 {
		return nil, nil
	}

	primary = configured[0]
	if preferred != "" {
		if p := g.Lookup(preferred); p != nil {
			primary = p
		}
	}
	for _, p := range configured {
		if p.Name() != primary.Name() {
			return primary, p
		}
	}
	return primary, nil
}
