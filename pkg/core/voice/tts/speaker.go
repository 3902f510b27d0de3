package tts

import (
	"context"

	"github.com/halcyon-ai/halcyon/pkg/core"
)

// Speaker binds a Provider to fixed synthesis options, giving the
// narrow synthesize-this-text surface the agent layer consumes.
type Speaker struct {
	provider Provider
	opts     SynthesizeOptions
}

// NewSpeaker creates a speaker over the given provider.
func NewSpeaker(provider Provider, opts SynthesizeOptions) *Speaker {
	return &Speaker{provider: provider, opts: opts}
}

// Name returns the underlying provider identifier.
func (s *Speaker) Name() string {
	return s.provider.Name()
}

// Format returns the audio format synthesis will produce.
func (s *Speaker) Format() string {
	if s.opts.Format == "" {
		return "mp3"
	}
	return s.opts.Format
}

// Synthesize converts text into audio bytes. Failures come back as
// synthesis errors, which the voice agent treats as non-fatal.
func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	syn, err := s.provider.Synthesize(ctx, text, s.opts)
	if err != nil {
		return nil, core.NewSynthesisError(err)
	}
	return syn.Audio, nil
}

// OpenSpeechStream opens an incremental synthesis session with the
// speaker's fixed options. Text fragments sent into the session come
// back as audio chunks while the reply is still being generated.
func (s *Speaker) OpenSpeechStream(ctx context.Context) (core.SpeechStream, error) {
	sc, err := s.provider.NewStreamingContext(ctx, s.opts)
	if err != nil {
		return nil, core.NewSynthesisError(err)
	}
	return sc, nil
}
