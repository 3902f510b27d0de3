// Package tools maps tool names to callable capability implementations
// and executes the tool-call batches requested by a model. Handler
// failures are always converted into failed results; dispatch never
// returns an error to the caller.
package tools

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// Handler executes one tool. Implementations return the result value or
// an error; errors are captured into the ToolResult, never propagated.
type Handler interface {
	Descriptor() types.ToolDescriptor
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// Registry holds the registered tools in registration order.
type Registry struct {
	byName map[string]Handler
	order  []string
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byName: make(map[string]Handler),
		logger: logger,
	}
}

// NewDefaultRegistry creates a registry with the built-in tools.
func NewDefaultRegistry(logger *slog.Logger, opts BuiltinOptions) *Registry {
	r := NewRegistry(logger)
	r.Register(NewWebSearch())
	r.Register(NewCalculator())
	r.Register(NewFileRead(opts.FileReadBaseDir))
	r.Register(NewHTTPCall(opts.HTTPClient))
	r.Register(NewDatabaseQuery())
	return r
}

// Register adds a handler. Re-registering a name overwrites the handler
// and keeps its original position.
func (r *Registry) Register(h Handler) {
	name := h.Descriptor().Name
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = h
	r.logger.Debug("tool registered", "tool", name)
}

// List returns the descriptors in registration order, for inclusion in
// provider requests.
func (r *Registry) List() []types.ToolDescriptor {
	out := make([]types.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].Descriptor())
	}
	return out
}

// Has reports whether a tool name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Dispatch executes one invocation and always produces a result: unknown
// names and handler failures become failed results.
func (r *Registry) Dispatch(ctx context.Context, inv types.ToolInvocation) types.ToolResult {
	res := types.ToolResult{Name: inv.Name}
	h, ok := r.byName[inv.Name]
	if !ok {
		res.Error = "tool not found"
		res.CompletedAt = time.Now()
		return res
	}

	value, err := h.Execute(ctx, inv.Arguments)
	res.CompletedAt = time.Now()
	if err != nil {
		res.Error = err.Error()
		r.logger.Warn("tool failed", "tool", inv.Name, "error", err)
		return res
	}
	res.Success = true
	res.Value = value
	return res
}

// DispatchBatch executes a batch concurrently. Results are returned in
// input order regardless of completion order, and one tool's failure
// does not abort the others.
func (r *Registry) DispatchBatch(ctx context.Context, invs []types.ToolInvocation) []types.ToolResult {
	results := make([]types.ToolResult, len(invs))
	g, gctx := errgroup.WithContext(ctx)
	for i, inv := range invs {
		i, inv := i, inv
		g.Go(func() error {
			results[i] = r.Dispatch(gctx, inv)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
