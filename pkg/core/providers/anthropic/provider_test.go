package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

func TestInvokeUnconfigured(t *testing.T) {
	p := New("")
	assert.False(t, p.Configured())

	_, err := p.Invoke(context.Background(), &core.InvokeRequest{})
	require.Error(t, err)
	var cerr *core.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, core.ErrConfiguration, cerr.Type)
}

func TestInvokeTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, APIVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be brief", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_1",
			"model": "claude-3-5-sonnet-20241022",
			"content": []map[string]any{
				{"type": "text", "text": "Hello "},
				{"type": "text", "text": "there"},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 12, "output_tokens": 4},
		})
	}))
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL))
	resp, err := p.Invoke(context.Background(), &core.InvokeRequest{
		SystemPreamble: "be brief",
		Messages:       []types.ContextMessage{{Role: types.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Text)
	assert.Equal(t, types.StopCompleted, resp.StopReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.False(t, resp.ToolRequested())
}

func TestInvokeToolUseResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "calculator", req.Tools[0].Name)

		json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-3-5-sonnet-20241022",
			"content": []map[string]any{
				{"type": "text", "text": "Let me compute that."},
				{"type": "tool_use", "id": "tu_1", "name": "calculator", "input": map[string]any{"expression": "2+2"}},
			},
			"stop_reason": "tool_use",
			"usage":       map[string]int{"input_tokens": 20, "output_tokens": 8},
		})
	}))
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL))
	resp, err := p.Invoke(context.Background(), &core.InvokeRequest{
		Messages: []types.ContextMessage{{Role: types.RoleUser, Content: "what is 2+2"}},
		Tools:    []types.ToolDescriptor{{Name: "calculator", Description: "math"}},
	})
	require.NoError(t, err)
	assert.True(t, resp.ToolRequested())
	require.Len(t, resp.ToolInvocations, 1)
	assert.Equal(t, "tu_1", resp.ToolInvocations[0].ID)
	assert.Equal(t, "2+2", resp.ToolInvocations[0].Arguments["expression"])
}

func TestInvokeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL))
	_, err := p.Invoke(context.Background(), &core.InvokeRequest{})
	require.Error(t, err)
	var perr *core.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, core.ErrProvider, perr.Type)
	assert.Contains(t, err.Error(), "slow down")
}

func TestBuildRequestRoleMapping(t *testing.T) {
	p := New("k")
	req := p.buildRequest(&core.InvokeRequest{
		SystemPreamble: "preamble",
		Messages: []types.ContextMessage{
			{Role: types.RoleSystem, Content: "extra system"},
			{Role: types.RoleUser, Content: "question"},
			{Role: types.RoleAssistant, Content: "answer"},
			{Role: types.RoleTool, Content: "tool output"},
		},
	}, false)

	assert.Equal(t, "preamble\n\nextra system", req.System)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "assistant", req.Messages[1].Role)
	// Tool turns ride as user messages.
	assert.Equal(t, "user", req.Messages[2].Role)
	assert.Equal(t, "tool output", req.Messages[2].Content)
}

func TestMapStopReason(t *testing.T) {
	assert.Equal(t, types.StopCompleted, mapStopReason("end_turn"))
	assert.Equal(t, types.StopToolRequested, mapStopReason("tool_use"))
	assert.Equal(t, types.StopLengthLimited, mapStopReason("max_tokens"))
	assert.Equal(t, types.StopOther, mapStopReason("anything else"))
}
