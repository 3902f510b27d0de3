package tools

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// fakeTool is a scriptable handler for dispatch tests.
type fakeTool struct {
	name  string
	delay time.Duration
	value any
	err   error
}

func (f *fakeTool) Descriptor() types.ToolDescriptor {
	return types.ToolDescriptor{Name: f.name, Description: "fake"}
}

func (f *fakeTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.value, f.err
}

func TestDispatchUnknownToolReturnsFailedResult(t *testing.T) {
	r := NewRegistry(nil)

	res := r.Dispatch(context.Background(), types.ToolInvocation{Name: "nope"})
	assert.False(t, res.Success)
	assert.Equal(t, "tool not found", res.Error)
	assert.False(t, res.CompletedAt.IsZero())
}

func TestDispatchCapturesHandlerError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeTool{name: "boom", err: fmt.Errorf("kaput")})

	res := r.Dispatch(context.Background(), types.ToolInvocation{Name: "boom"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "kaput")
}

func TestDispatchBatchPreservesInputOrder(t *testing.T) {
	r := NewRegistry(nil)
	// The slowest tool comes first; completion order inverts input order.
	r.Register(&fakeTool{name: "slow", delay: 50 * time.Millisecond, value: "slow-value"})
	r.Register(&fakeTool{name: "medium", delay: 10 * time.Millisecond, value: "medium-value"})
	r.Register(&fakeTool{name: "fast", value: "fast-value"})

	results := r.DispatchBatch(context.Background(), []types.ToolInvocation{
		{Name: "slow"},
		{Name: "medium"},
		{Name: "fast"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "slow-value", results[0].Value)
	assert.Equal(t, "medium-value", results[1].Value)
	assert.Equal(t, "fast-value", results[2].Value)
}

func TestDispatchBatchOneFailureDoesNotAbortOthers(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeTool{name: "ok", value: "fine"})
	r.Register(&fakeTool{name: "bad", err: fmt.Errorf("broken")})

	results := r.DispatchBatch(context.Background(), []types.ToolInvocation{
		{Name: "bad"},
		{Name: "ok"},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Equal(t, "fine", results[1].Value)
}

func TestRegisterOverwriteKeepsPosition(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeTool{name: "a", value: 1})
	r.Register(&fakeTool{name: "b", value: 2})
	r.Register(&fakeTool{name: "a", value: 3})

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)

	res := r.Dispatch(context.Background(), types.ToolInvocation{Name: "a"})
	assert.Equal(t, 3, res.Value)
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	r := NewDefaultRegistry(nil, BuiltinOptions{})
	for _, name := range []string{"web_search", "calculator", "file_read", "http_call", "database_query"} {
		assert.True(t, r.Has(name), "missing builtin %s", name)
	}
}
