// Package core defines the capability contracts of the conversation
// engine and the error taxonomy shared by its components.
package core

import "fmt"

// ErrorType categorizes failures by how they propagate.
type ErrorType string

const (
	// ErrConfiguration is fatal at capability construction (for example a
	// missing credential).
	ErrConfiguration ErrorType = "configuration_error"

	// ErrProvider is a per-call model backend failure. It is retried once
	// via fallback, then surfaced.
	ErrProvider ErrorType = "provider_error"

	// ErrToolExecution is captured per invocation and converted into a
	// failed ToolResult. It never reaches the caller as an error.
	ErrToolExecution ErrorType = "tool_execution_error"

	// ErrSynthesis is non-fatal. Speech synthesis failures degrade the
	// turn to audio-less instead of failing it.
	ErrSynthesis ErrorType = "synthesis_error"

	// ErrNoProvider means no backend has its credential configured.
	ErrNoProvider ErrorType = "no_provider_available"
)

// Error is the error value used throughout the core.
type Error struct {
	Type     ErrorType
	Provider string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	switch {
	case e.Provider != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Type, e.Provider, e.Message, e.Cause)
	case e.Provider != "":
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Provider, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConfigurationError reports a missing or invalid credential.
func NewConfigurationError(message string) *Error {
	return &Error{Type: ErrConfiguration, Message: message}
}

// NewProviderError wraps a backend failure with the provider name.
func NewProviderError(provider string, cause error) *Error {
	return &Error{Type: ErrProvider, Provider: provider, Message: "invocation failed", Cause: cause}
}

// NewToolExecutionError reports a tool handler failure.
func NewToolExecutionError(message string) *Error {
	return &Error{Type: ErrToolExecution, Message: message}
}

// NewToolExecutionErrorf formats a tool handler failure.
func NewToolExecutionErrorf(format string, args ...any) *Error {
	return &Error{Type: ErrToolExecution, Message: fmt.Sprintf(format, args...)}
}

// NewSynthesisError wraps a speech synthesis failure.
func NewSynthesisError(cause error) *Error {
	return &Error{Type: ErrSynthesis, Message: "speech synthesis failed", Cause: cause}
}

// ErrNoProviderAvailable is returned when invocation is attempted with no
// configured backend.
var ErrNoProviderAvailable = &Error{Type: ErrNoProvider, Message: "no LLM provider configured"}
