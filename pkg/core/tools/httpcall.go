package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// BuiltinOptions configures the default tool set.
type BuiltinOptions struct {
	FileReadBaseDir string
	HTTPClient      *http.Client
}

// HTTPCall makes an outbound HTTP request with method, headers and an
// optional JSON body.
type HTTPCall struct {
	client *http.Client
}

// NewHTTPCall creates the HTTP tool. A nil client gets a 10 second
// timeout default.
func NewHTTPCall(client *http.Client) *HTTPCall {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPCall{client: client}
}

func (h *HTTPCall) Descriptor() types.ToolDescriptor {
	return types.ToolDescriptor{
		Name:        "http_call",
		Description: "Make an HTTP API call",
		InputSchema: &types.JSONSchema{
			Type: "object",
			Properties: map[string]types.JSONSchema{
				"url":     {Type: "string", Description: "API endpoint URL"},
				"method":  {Type: "string", Enum: []string{"GET", "POST", "PUT", "DELETE"}, Default: "GET"},
				"headers": {Type: "object", Description: "HTTP headers"},
				"body":    {Type: "object", Description: "JSON request body"},
			},
			Required: []string{"url"},
		},
	}
}

func (h *HTTPCall) Execute(ctx context.Context, args map[string]any) (any, error) {
	url, _ := args["url"].(string)
	if url == "" {
		return nil, core.NewToolExecutionError("url is required")
	}
	method, _ := args["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if raw, ok := args["body"]; ok && raw != nil {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, core.NewToolExecutionErrorf("encode body: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, core.NewToolExecutionErrorf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if hdrs, ok := args["headers"].(map[string]any); ok {
		for k, v := range hdrs {
			if s, ok := v.(string); ok {
				req.Header.Set(k, s)
			}
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, core.NewToolExecutionErrorf("http request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewToolExecutionErrorf("read response: %v", err)
	}
	if resp.StatusCode >= 400 {
		return nil, core.NewToolExecutionErrorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var payload any = string(respBody)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var decoded any
		if err := json.Unmarshal(respBody, &decoded); err == nil {
			payload = decoded
		}
	}

	return map[string]any{
		"url":         url,
		"method":      method,
		"status_code": resp.StatusCode,
		"response":    payload,
	}, nil
}
