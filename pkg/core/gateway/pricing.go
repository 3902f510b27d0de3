package gateway

import "github.com/halcyon-ai/halcyon/pkg/core/types"

// modelRate holds USD per 1000 tokens for a model.
type modelRate struct {
	input  float64
	output float64
}

// Published per-model rates. Unknown models cost zero rather than
// guessing, so totals stay a lower bound.
var modelRates = map[string]modelRate{
	"claude-3-5-sonnet-20241022": {input: 0.003, output: 0.015},
	"claude-3-5-haiku-20241022":  {input: 0.0008, output: 0.004},
	"claude-3-opus-20240229":     {input: 0.015, output: 0.075},
	"gpt-4-turbo-preview":        {input: 0.01, output: 0.03},
	"gpt-4o":                     {input: 0.0025, output: 0.01},
	"gpt-4o-mini":                {input: 0.00015, output: 0.0006},
	"gemini-2.0-flash":           {input: 0.0001, output: 0.0004},
	"gemini-1.5-pro":             {input: 0.00125, output: 0.005},
}

// EstimateCost converts reported usage into dollars for the given model.
func EstimateCost(model string, usage types.Usage) float64 {
	rate, ok := modelRates[model]
	if !ok {
		return 0
	}
	return float64(usage.InputTokens)/1000*rate.input +
		float64(usage.OutputTokens)/1000*rate.output
}
