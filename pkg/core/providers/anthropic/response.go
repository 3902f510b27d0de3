package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// anthropicResponse matches the Messages API response format.
type anthropicResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// contentBlock is a union of the block types we consume: text and
// tool_use.
type contentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

// parseResponse normalizes an Anthropic response. Text blocks are
// concatenated; tool_use blocks become invocations in block order.
func parseResponse(body []byte) (*types.ProviderResponse, error) {
	var wire anthropicResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, core.NewProviderError("anthropic", fmt.Errorf("unmarshal response: %w", err))
	}

	out := &types.ProviderResponse{
		Model: wire.Model,
		Usage: types.Usage{
			InputTokens:  wire.Usage.InputTokens,
			OutputTokens: wire.Usage.OutputTokens,
		},
		StopReason: mapStopReason(wire.StopReason),
	}
	for _, block := range wire.Content {
		switch block.Type {
		case "text":
			out.Text += block.Text
		case "tool_use":
			out.ToolInvocations = append(out.ToolInvocations, types.ToolInvocation{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}
	return out, nil
}

func mapStopReason(reason string) types.StopReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return types.StopCompleted
	case "tool_use":
		return types.StopToolRequested
	case "max_tokens":
		return types.StopLengthLimited
	default:
		return types.StopOther
	}
}
