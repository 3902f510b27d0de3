package agent

import (
	"context"
	"log/slog"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// VoiceAgent wraps an Agent and synthesizes audio from each completed
// reply. Synthesis failure is non-fatal: the turn succeeds with no
// audio attached.
type VoiceAgent struct {
	*Agent
	synthesizer core.Synthesizer
	audioFormat string
	logger      *slog.Logger
}

// NewVoiceAgent wraps the agent with a synthesizer.
func NewVoiceAgent(inner *Agent, synth core.Synthesizer, audioFormat string, logger *slog.Logger) *VoiceAgent {
	if audioFormat == "" {
		audioFormat = "mp3"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceAgent{
		Agent:       inner,
		synthesizer: synth,
		audioFormat: audioFormat,
		logger:      logger,
	}
}

// VoiceTurnStream carries the reply fragments of a streaming turn and
// the audio synthesized from them. The audio channel closes when
// synthesis finishes, or immediately when no speech stream is open.
type VoiceTurnStream struct {
	inner     *TurnStream
	fragments chan string
	audio     <-chan []byte
}

// Fragments returns the channel of text fragments.
func (s *VoiceTurnStream) Fragments() <-chan string {
	return s.fragments
}

// Audio returns the channel of synthesized audio chunks.
func (s *VoiceTurnStream) Audio() <-chan []byte {
	return s.audio
}

// Result blocks until the underlying turn finishes.
func (s *VoiceTurnStream) Result() (*types.TurnResult, error) {
	return s.inner.Result()
}

// ProcessStream runs a streaming turn and feeds each reply fragment into
// an incremental synthesis session as it arrives. Synthesis problems are
// non-fatal: the text keeps streaming with the audio channel closed.
func (v *VoiceAgent) ProcessStream(ctx context.Context, userInput string, opts Options) (*VoiceTurnStream, error) {
	inner, err := v.Agent.ProcessStream(ctx, userInput, opts)
	if err != nil {
		return nil, err
	}

	var speech core.SpeechStream
	if streamer, ok := v.synthesizer.(core.StreamingSynthesizer); ok {
		speech, err = streamer.OpenSpeechStream(ctx)
		if err != nil {
			v.logger.Warn("speech stream unavailable, streaming text only",
				"synthesizer", v.synthesizer.Name(), "error", err)
			speech = nil
		}
	}

	vs := &VoiceTurnStream{
		inner:     inner,
		fragments: make(chan string),
		audio:     closedAudio,
	}
	if speech != nil {
		vs.audio = speech.Audio()
	}

	go func() {
		defer close(vs.fragments)
		for fragment := range inner.Fragments() {
			if speech != nil {
				if sendErr := speech.SendText(fragment, false); sendErr != nil {
					v.logger.Warn("speech stream send failed, continuing text only", "error", sendErr)
					_ = speech.Close()
					speech = nil
				}
			}
			select {
			case vs.fragments <- fragment:
			case <-ctx.Done():
				if speech != nil {
					_ = speech.Close()
				}
				return
			}
		}
		if speech != nil {
			if flushErr := speech.SendText("", true); flushErr != nil {
				_ = speech.Close()
			}
		}
	}()

	return vs, nil
}

// closedAudio stands in for the audio channel when no speech stream is
// open, so consumers can always range over Audio.
var closedAudio = func() chan []byte {
	ch := make(chan []byte)
	close(ch)
	return ch
}()

// Process runs a turn and attaches synthesized audio to the result.
func (v *VoiceAgent) Process(ctx context.Context, userInput string, opts Options) (*types.TurnResult, error) {
	result, err := v.Agent.Process(ctx, userInput, opts)
	if err != nil {
		return nil, err
	}

	if v.synthesizer != nil && result.Text != "" {
		audio, synthErr := v.synthesizer.Synthesize(ctx, result.Text)
		if synthErr != nil {
			v.logger.Warn("speech synthesis failed, returning text only",
				"synthesizer", v.synthesizer.Name(), "error", synthErr)
		} else {
			result.Audio = audio
			result.AudioFormat = v.audioFormat
		}
	}
	return result, nil
}
