package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *Provider) parseResponse(body []byte) (*types.ProviderResponse, error) {
	var wire geminiResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("decode response: %w", err))
	}
	if len(wire.Candidates) == 0 {
		return nil, core.NewProviderError(p.Name(), fmt.Errorf("response contained no candidates"))
	}

	cand := wire.Candidates[0]
	resp := &types.ProviderResponse{
		Model: p.model,
		Usage: types.Usage{
			InputTokens:  wire.UsageMetadata.PromptTokenCount,
			OutputTokens: wire.UsageMetadata.CandidatesTokenCount,
		},
	}
	for _, part := range cand.Content.Parts {
		if part.Text != "" {
			resp.Text += part.Text
		}
		if part.FunctionCall != nil {
			resp.ToolInvocations = append(resp.ToolInvocations, types.ToolInvocation{
				ID:        uuid.NewString(),
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
		}
	}

	// The API reports STOP even when the candidate carries function
	// calls, so tool requests are detected by content rather than by
	// finish reason.
	switch {
	case len(resp.ToolInvocations) > 0:
		resp.StopReason = types.StopToolRequested
	case cand.FinishReason == "MAX_TOKENS":
		resp.StopReason = types.StopLengthLimited
	case cand.FinishReason == "STOP" || cand.FinishReason == "":
		resp.StopReason = types.StopCompleted
	default:
		resp.StopReason = types.StopOther
	}
	return resp, nil
}
