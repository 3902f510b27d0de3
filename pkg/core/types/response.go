package types

// StopReason describes why a provider stopped generating.
type StopReason string

const (
	StopCompleted     StopReason = "completed"
	StopToolRequested StopReason = "tool_requested"
	StopLengthLimited StopReason = "length_limited"
	StopOther         StopReason = "other"
)

// Usage carries token counts for a single provider invocation.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add combines two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ProviderResponse is the normalized result of one model invocation.
// Vendor-specific tool-call shapes (inline content blocks, separate call
// lists) are flattened into ToolInvocations by each adapter.
type ProviderResponse struct {
	Text            string           `json:"text"`
	ToolInvocations []ToolInvocation `json:"tool_invocations,omitempty"`
	Model           string           `json:"model"`
	Usage           Usage            `json:"usage"`
	StopReason      StopReason       `json:"stop_reason"`
}

// ToolRequested reports whether the model asked for tool execution.
func (r *ProviderResponse) ToolRequested() bool {
	return r.StopReason == StopToolRequested && len(r.ToolInvocations) > 0
}

// TurnResult is what the agent returns for one processed turn.
type TurnResult struct {
	Text        string       `json:"text"`
	Model       string       `json:"model"`
	Usage       Usage        `json:"usage"`
	CostUSD     float64      `json:"cost_usd"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`

	// Audio is set by the voice variant. nil means synthesis was skipped
	// or degraded after a failure.
	Audio       []byte `json:"audio,omitempty"`
	AudioFormat string `json:"audio_format,omitempty"`

	// Sources is set by the retrieval-augmented variant.
	Sources []Source `json:"sources,omitempty"`
}
