package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

type fakeSynthesizer struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeSynthesizer) Name() string { return "fake-tts" }

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

func TestVoiceAgentAttachesAudio(t *testing.T) {
	provider := &scriptedProvider{
		name:      "fake",
		responses: []*types.ProviderResponse{textResponse("spoken reply", "m")},
	}
	base, _ := newTestAgent(t, provider)
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes")}
	v := NewVoiceAgent(base, synth, "mp3", nil)

	result, err := v.Process(context.Background(), "hi", Options{})
	require.NoError(t, err)
	assert.Equal(t, "spoken reply", result.Text)
	assert.Equal(t, []byte("mp3-bytes"), result.Audio)
	assert.Equal(t, "mp3", result.AudioFormat)
	assert.Equal(t, 1, synth.calls)
}

func TestVoiceAgentSynthesisFailureIsNonFatal(t *testing.T) {
	provider := &scriptedProvider{
		name:      "fake",
		responses: []*types.ProviderResponse{textResponse("still text", "m")},
	}
	base, _ := newTestAgent(t, provider)
	synth := &fakeSynthesizer{err: fmt.Errorf("tts down")}
	v := NewVoiceAgent(base, synth, "mp3", nil)

	result, err := v.Process(context.Background(), "hi", Options{})
	require.NoError(t, err)
	assert.Equal(t, "still text", result.Text)
	assert.Nil(t, result.Audio)
	assert.Empty(t, result.AudioFormat)
}

// fakeSpeechStream uppercases every text chunk into an audio chunk.
type fakeSpeechStream struct {
	audio  chan []byte
	sent   []string
	finals int
	closed bool
}

func newFakeSpeechStream() *fakeSpeechStream {
	return &fakeSpeechStream{audio: make(chan []byte, 16)}
}

func (f *fakeSpeechStream) SendText(text string, isFinal bool) error {
	if isFinal {
		f.finals++
		f.finish()
		return nil
	}
	f.sent = append(f.sent, text)
	f.audio <- []byte(strings.ToUpper(text))
	return nil
}

func (f *fakeSpeechStream) Audio() <-chan []byte { return f.audio }

func (f *fakeSpeechStream) Err() error { return nil }

func (f *fakeSpeechStream) Close() error {
	f.finish()
	return nil
}

func (f *fakeSpeechStream) finish() {
	if !f.closed {
		f.closed = true
		close(f.audio)
	}
}

type fakeStreamSynthesizer struct {
	fakeSynthesizer
	stream  *fakeSpeechStream
	openErr error
}

func (f *fakeStreamSynthesizer) OpenSpeechStream(ctx context.Context) (core.SpeechStream, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func TestVoiceAgentStreamsAudioChunks(t *testing.T) {
	provider := &streamingProvider{fragments: []string{"Hel", "lo"}}
	base, sess := newTestAgent(t, provider)
	stream := newFakeSpeechStream()
	synth := &fakeStreamSynthesizer{stream: stream}
	v := NewVoiceAgent(base, synth, "pcm", nil)

	vs, err := v.ProcessStream(context.Background(), "hi", Options{})
	require.NoError(t, err)

	var text strings.Builder
	for fragment := range vs.Fragments() {
		text.WriteString(fragment)
	}
	var audio []byte
	for chunk := range vs.Audio() {
		audio = append(audio, chunk...)
	}

	assert.Equal(t, "Hello", text.String())
	assert.Equal(t, []byte("HELLO"), audio)
	assert.Equal(t, []string{"Hel", "lo"}, stream.sent)
	assert.Equal(t, 1, stream.finals)

	result, err := vs.Result()
	require.NoError(t, err)
	assert.Equal(t, "Hello", result.Text)

	history := sess.History()
	assert.Equal(t, "Hello", history[len(history)-1].Content)
}

func TestVoiceAgentStreamOpenFailureIsNonFatal(t *testing.T) {
	provider := &streamingProvider{fragments: []string{"text", " only"}}
	base, _ := newTestAgent(t, provider)
	synth := &fakeStreamSynthesizer{openErr: fmt.Errorf("dial refused")}
	v := NewVoiceAgent(base, synth, "pcm", nil)

	vs, err := v.ProcessStream(context.Background(), "hi", Options{})
	require.NoError(t, err)

	var text strings.Builder
	for fragment := range vs.Fragments() {
		text.WriteString(fragment)
	}
	assert.Equal(t, "text only", text.String())

	// The audio channel is closed, not absent.
	_, open := <-vs.Audio()
	assert.False(t, open)
}

func TestVoiceAgentStreamWithoutStreamingSynthesizer(t *testing.T) {
	provider := &streamingProvider{fragments: []string{"plain"}}
	base, _ := newTestAgent(t, provider)
	v := NewVoiceAgent(base, &fakeSynthesizer{}, "mp3", nil)

	vs, err := v.ProcessStream(context.Background(), "hi", Options{})
	require.NoError(t, err)

	var got []string
	for fragment := range vs.Fragments() {
		got = append(got, fragment)
	}
	assert.Equal(t, []string{"plain"}, got)

	_, open := <-vs.Audio()
	assert.False(t, open)
}

func TestVoiceAgentProviderFailureSkipsSynthesis(t *testing.T) {
	provider := &scriptedProvider{name: "fake", err: fmt.Errorf("down")}
	base, _ := newTestAgent(t, provider)
	synth := &fakeSynthesizer{audio: []byte("x")}
	v := NewVoiceAgent(base, synth, "mp3", nil)

	_, err := v.Process(context.Background(), "hi", Options{})
	require.Error(t, err)
	assert.Zero(t, synth.calls)
}
