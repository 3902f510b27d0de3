package anthropic

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

// anthropicRequest is the Messages API request format.
type anthropicRequest struct {
	Model       string          `json:"model"`
	Messages    []wireMessage   `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	Tools       []anthropicTool `json:"tools,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	InputSchema *types.JSONSchema `json:"input_schema"`
}

// buildRequest converts the uniform invoke request into the Anthropic
// wire shape. System turns move to the top-level system field; tool-role
// turns become user messages since the Messages API has no tool role.
func (p *Provider) buildRequest(req *core.InvokeRequest, stream bool) *anthropicRequest {
	out := &anthropicRequest{
		Model:     p.model,
		MaxTokens: req.MaxOutputTokens,
		System:    req.SystemPreamble,
		Stream:    stream,
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	if req.Temperature > 0 {
		t := req.Temperature
		out.Temperature = &t
	}

	var systemParts []string
	if out.System != "" {
		systemParts = append(systemParts, out.System)
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case types.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case types.RoleTool:
			out.Messages = append(out.Messages, wireMessage{Role: "user", Content: msg.Content})
		default:
			out.Messages = append(out.Messages, wireMessage{Role: string(msg.Role), Content: msg.Content})
		}
	}
	out.System = strings.Join(systemParts, "\n\n")

	for _, td := range req.Tools {
		schema := td.InputSchema
		if schema == nil {
			schema = &types.JSONSchema{Type: "object"}
		}
		out.Tools = append(out.Tools, anthropicTool{
			Name:        td.Name,
			Description: td.Description,
			InputSchema: schema,
		})
	}

	return out
}

// doRequest sends a non-streaming request and returns the response body.
func (p *Provider) doRequest(ctx context.Context, req *anthropicRequest) ([]byte, error) {
	resp, err := p.send(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("read response: %w", err))
	}
	return body, nil
}

// doStreamRequest sends a streaming request and returns the SSE body.
func (p *Provider) doStreamRequest(ctx context.Context, req *anthropicRequest) (io.ReadCloser, error) {
	resp, err := p.send(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (p *Provider) send(ctx context.Context, req *anthropicRequest, stream bool) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", p.apiKey)
	httpReq.Header.Set("anthropic-version", APIVersion)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("http request: %w", err))
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, p.parseError(resp)
	}
	return resp, nil
}

// parseError translates an HTTP error response.
func (p *Provider) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var wire struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error.Message != "" {
		return core.NewProviderError(p.Name(), fmt.Errorf("%s: %s", wire.Error.Type, wire.Error.Message))
	}
	return core.NewProviderError(p.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
}
