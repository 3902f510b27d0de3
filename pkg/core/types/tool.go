package types

import "time"

// ToolDescriptor describes a callable tool the model may request.
// Descriptors are immutable and registered at startup.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema *JSONSchema `json:"input_schema,omitempty"`
}

// JSONSchema is the subset of JSON Schema used for tool parameter
// definitions.
type JSONSchema struct {
	Type                 string                `json:"type"`
	Properties           map[string]JSONSchema `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	Description          string                `json:"description,omitempty"`
	Enum                 []string              `json:"enum,omitempty"`
	Items                *JSONSchema           `json:"items,omitempty"`
	Default              any                   `json:"default,omitempty"`
	AdditionalProperties *bool                 `json:"additionalProperties,omitempty"`
}

// ToolInvocation is a single tool call requested by the model. The ID is
// the provider-assigned call identifier when the backend supplies one.
type ToolInvocation struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of exactly one invocation. A result is always
// produced, even on failure, so the model receives a definite outcome per
// requested call.
type ToolResult struct {
	Name        string    `json:"name"`
	Success     bool      `json:"success"`
	Value       any       `json:"value,omitempty"`
	Error       string    `json:"error,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
