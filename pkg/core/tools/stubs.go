package tools

import (
	"context"
	"fmt"

	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// WebSearch is a placeholder returning deterministic result shapes. It
// exists to validate the dispatch contract, not as a production search
// capability.
type WebSearch struct{}

func NewWebSearch() *WebSearch { return &WebSearch{} }

func (w *WebSearch) Descriptor() types.ToolDescriptor {
	return types.ToolDescriptor{
		Name:        "web_search",
		Description: "Search the web for information",
		InputSchema: &types.JSONSchema{
			Type: "object",
			Properties: map[string]types.JSONSchema{
				"query":       {Type: "string", Description: "Search query"},
				"max_results": {Type: "integer", Description: "Maximum number of results", Default: 5},
			},
			Required: []string{"query"},
		},
	}
}

func (w *WebSearch) Execute(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	max := 5
	if n, ok := args["max_results"].(float64); ok && n > 0 {
		max = int(n)
	}

	results := make([]map[string]any, 0, max)
	for i := 0; i < max; i++ {
		results = append(results, map[string]any{
			"title":   fmt.Sprintf("Result %d for %s", i+1, query),
			"url":     fmt.Sprintf("https://example.com/result%d", i+1),
			"snippet": fmt.Sprintf("Sample result snippet %d", i+1),
		})
	}
	return map[string]any{"query": query, "results": results}, nil
}

// DatabaseQuery is a placeholder returning an empty result set in the
// shape a real adapter would use.
type DatabaseQuery struct{}

func NewDatabaseQuery() *DatabaseQuery { return &DatabaseQuery{} }

func (d *DatabaseQuery) Descriptor() types.ToolDescriptor {
	return types.ToolDescriptor{
		Name:        "database_query",
		Description: "Execute a database query",
		InputSchema: &types.JSONSchema{
			Type: "object",
			Properties: map[string]types.JSONSchema{
				"query": {Type: "string", Description: "SQL query"},
			},
			Required: []string{"query"},
		},
	}
}

func (d *DatabaseQuery) Execute(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	return map[string]any{
		"query":     query,
		"results":   []any{},
		"row_count": 0,
	}, nil
}
