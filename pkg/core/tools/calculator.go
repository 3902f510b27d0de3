package tools

import (
	"context"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// calculatorAllowed is the only character set the calculator will
// evaluate. The gate runs before any expression parsing; it is a security
// boundary, not a convenience check.
const calculatorAllowed = "0123456789+-*/()., \t"

// Calculator evaluates arithmetic expressions over a restricted charset.
type Calculator struct {
	env *cel.Env
}

// NewCalculator creates the calculator tool. The CEL environment is
// built once and reused across invocations.
func NewCalculator() *Calculator {
	env, err := cel.NewEnv()
	if err != nil {
		// An empty environment only fails on programmer error.
		panic(err)
	}
	return &Calculator{env: env}
}

func (c *Calculator) Descriptor() types.ToolDescriptor {
	return types.ToolDescriptor{
		Name:        "calculator",
		Description: "Perform mathematical calculations",
		InputSchema: &types.JSONSchema{
			Type: "object",
			Properties: map[string]types.JSONSchema{
				"expression": {Type: "string", Description: "Mathematical expression to evaluate"},
			},
			Required: []string{"expression"},
		},
	}
}

func (c *Calculator) Execute(ctx context.Context, args map[string]any) (any, error) {
	expr, _ := args["expression"].(string)
	if strings.TrimSpace(expr) == "" {
		return nil, core.NewToolExecutionError("expression is required")
	}
	for _, r := range expr {
		if !strings.ContainsRune(calculatorAllowed, r) {
			return nil, core.NewToolExecutionErrorf("invalid characters in expression: %q", string(r))
		}
	}

	ast, iss := c.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, core.NewToolExecutionErrorf("invalid expression: %v", iss.Err())
	}
	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, core.NewToolExecutionErrorf("invalid expression: %v", err)
	}
	out, _, err := prg.Eval(map[string]any{})
	if err != nil {
		return nil, core.NewToolExecutionErrorf("evaluation failed: %v", err)
	}

	return map[string]any{
		"expression": expr,
		"result":     out.Value(),
	}, nil
}
