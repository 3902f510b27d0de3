package core

import (
	"context"

	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// InvokeRequest is the uniform call contract submitted to every backend.
type InvokeRequest struct {
	// Messages is the token-windowed context, chronological order.
	Messages []types.ContextMessage

	// SystemPreamble is passed out-of-band to backends that take a system
	// field, or prepended as a system message otherwise.
	SystemPreamble string

	Temperature     float64
	MaxOutputTokens int

	// Tools, when non-empty, are exposed to the model for calling.
	Tools []types.ToolDescriptor
}

// Provider is an interchangeable LLM backend. Implementations adapt their
// native request/response shapes into types.ProviderResponse; in
// particular the vendor-specific tool-call encodings are normalized into
// ToolInvocations.
type Provider interface {
	// Name returns the provider identifier, e.g. "anthropic".
	Name() string

	// Configured reports whether the required credential is present.
	Configured() bool

	// Invoke sends a non-streaming request.
	Invoke(ctx context.Context, req *InvokeRequest) (*types.ProviderResponse, error)

	// Stream sends a streaming request and returns a lazy fragment
	// sequence.
	Stream(ctx context.Context, req *InvokeRequest) (TextStream, error)
}

// TextStream is a lazy, finite, non-restartable sequence of text
// fragments. Next returns io.EOF when the stream is complete.
type TextStream interface {
	Next() (string, error)
	Close() error
}

// Synthesizer converts text to audio. The voice agent treats synthesis
// failures as non-fatal.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SpeechStream is an open incremental synthesis session. Text fragments
// go in via SendText as the reply is generated; audio chunks come out on
// Audio until the channel closes. Close tears the session down.
type SpeechStream interface {
	SendText(text string, isFinal bool) error
	Audio() <-chan []byte
	Err() error
	Close() error
}

// StreamingSynthesizer is a Synthesizer that can also synthesize
// incrementally, chunk by chunk, during a streaming turn.
type StreamingSynthesizer interface {
	Synthesizer
	OpenSpeechStream(ctx context.Context) (SpeechStream, error)
}

// Retriever looks up documents relevant to a query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]types.ScoredDocument, error)
}
