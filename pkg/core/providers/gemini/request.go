package gemini

import (
	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Tools             []geminiTool     `json:"tools,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiFunctionDecl struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Parameters  *types.JSONSchema `json:"parameters,omitempty"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// buildRequest maps the normalized request onto the Gemini wire format.
// System turns fold into systemInstruction, the assistant role becomes
// "model", and tool output turns are carried as user parts.
func (p *Provider) buildRequest(req *core.InvokeRequest) *geminiRequest {
	out := &geminiRequest{
		GenerationConfig: &geminiGenConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}
	if out.GenerationConfig.MaxOutputTokens == 0 {
		out.GenerationConfig.MaxOutputTokens = DefaultMaxTokens
	}

	var system []string
	if req.SystemPreamble != "" {
		system = append(system, req.SystemPreamble)
	}
	for _, msg := range req.Messages {
		if msg.Role == types.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		role := "user"
		if msg.Role == types.RoleAssistant {
			role = "model"
		}
		out.Contents = append(out.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	if len(system) > 0 {
		joined := system[0]
		for _, s := range system[1:] {
			joined += "\n\n" + s
		}
		out.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: joined}}}
	}

	if len(req.Tools) > 0 {
		decls := make([]geminiFunctionDecl, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, geminiFunctionDecl{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			})
		}
		out.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}
	return out
}
