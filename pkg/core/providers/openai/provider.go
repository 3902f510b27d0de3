// Package openai implements the OpenAI chat completion provider on top
// of the go-openai SDK. Unlike Anthropic, tool calls come back as a
// separate list next to the message content; both are normalized into
// the shared invocation shape.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// DefaultModel is used when no model override is configured.
const DefaultModel = "gpt-4-turbo-preview"

// Provider implements core.Provider against the OpenAI API.
type Provider struct {
	apiKey string
	model  string
	client *goopenai.Client
}

// Option configures the provider.
type Option func(*Provider, *goopenai.ClientConfig)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(p *Provider, _ *goopenai.ClientConfig) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(_ *Provider, cfg *goopenai.ClientConfig) {
		if url != "" {
			cfg.BaseURL = url
		}
	}
}

// New creates an OpenAI provider. An empty API key yields a provider
// that reports itself unconfigured.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey: apiKey,
		model:  DefaultModel,
	}
	cfg := goopenai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(p, &cfg)
	}
	p.client = goopenai.NewClientWithConfig(cfg)
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "openai"
}

// Configured reports whether the API key is present.
func (p *Provider) Configured() bool {
	return p.apiKey != ""
}

// Invoke sends a non-streaming chat completion request.
func (p *Provider) Invoke(ctx context.Context, req *core.InvokeRequest) (*types.ProviderResponse, error) {
	if !p.Configured() {
		return nil, core.NewConfigurationError("OpenAI API key is required")
	}

	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(req, false))
	if err != nil {
		return nil, core.NewProviderError(p.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("empty response"))
	}

	choice := resp.Choices[0]
	out := &types.ProviderResponse{
		Text:  choice.Message.Content,
		Model: resp.Model,
		Usage: types.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		StopReason: mapFinishReason(choice.FinishReason),
	}
	for _, call := range choice.Message.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			// Malformed arguments still produce an invocation; the
			// dispatcher reports the missing fields.
			_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
		}
		out.ToolInvocations = append(out.ToolInvocations, types.ToolInvocation{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

// Stream sends a streaming request and returns a lazy fragment sequence.
func (p *Provider) Stream(ctx context.Context, req *core.InvokeRequest) (core.TextStream, error) {
	if !p.Configured() {
		return nil, core.NewConfigurationError("OpenAI API key is required")
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, p.buildRequest(req, true))
	if err != nil {
		return nil, core.NewProviderError(p.Name(), err)
	}
	return &textStream{stream: stream}, nil
}

func (p *Provider) buildRequest(req *core.InvokeRequest, stream bool) goopenai.ChatCompletionRequest {
	out := goopenai.ChatCompletionRequest{
		Model:  p.model,
		Stream: stream,
	}
	if req.MaxOutputTokens > 0 {
		out.MaxTokens = req.MaxOutputTokens
	}
	if req.Temperature > 0 {
		out.Temperature = float32(req.Temperature)
	}

	if req.SystemPreamble != "" && !hasSystem(req.Messages) {
		out.Messages = append(out.Messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemPreamble,
		})
	}
	for _, msg := range req.Messages {
		role := string(msg.Role)
		if msg.Role == types.RoleTool {
			// Tool turns carry plain result text, not tool_call_id
			// envelopes, so they travel as user messages.
			role = goopenai.ChatMessageRoleUser
		}
		out.Messages = append(out.Messages, goopenai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	for _, td := range req.Tools {
		schema := td.InputSchema
		if schema == nil {
			schema = &types.JSONSchema{Type: "object"}
		}
		out.Tools = append(out.Tools, goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        td.Name,
				Description: td.Description,
				Parameters:  schema,
			},
		})
	}
	return out
}

func hasSystem(messages []types.ContextMessage) bool {
	for _, m := range messages {
		if m.Role == types.RoleSystem {
			return true
		}
	}
	return false
}

func mapFinishReason(reason goopenai.FinishReason) types.StopReason {
	switch reason {
	case goopenai.FinishReasonStop:
		return types.StopCompleted
	case goopenai.FinishReasonToolCalls, goopenai.FinishReasonFunctionCall:
		return types.StopToolRequested
	case goopenai.FinishReasonLength:
		return types.StopLengthLimited
	default:
		return types.StopOther
	}
}

// textStream adapts the SDK stream to core.TextStream, skipping empty
// deltas so consumers only see real fragments.
type textStream struct {
	stream *goopenai.ChatCompletionStream
}

func (s *textStream) Next() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", core.NewProviderError("openai", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *textStream) Close() error {
	return s.stream.Close()
}
