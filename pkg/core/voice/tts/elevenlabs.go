package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	elevenLabsDefaultBase   = "https://api.elevenlabs.io"
	elevenLabsDefaultWSBase = "wss://api.elevenlabs.io/v1/text-to-speech/{voice_id}/stream-input"

	// DefaultVoiceID is the voice used when none is configured.
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

	// DefaultSynthesisModel is the model used for one-shot synthesis.
	DefaultSynthesisModel = "eleven_monolingual_v1"
)

// ElevenLabsProvider synthesizes speech via the ElevenLabs API. One-shot
// synthesis goes over REST; incremental synthesis uses the stream-input
// websocket.
type ElevenLabsProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	wsBaseURL  string
}

// NewElevenLabs creates an ElevenLabs provider.
func NewElevenLabs(apiKey string) *ElevenLabsProvider {
	return &ElevenLabsProvider{
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    elevenLabsDefaultBase,
		wsBaseURL:  elevenLabsDefaultWSBase,
	}
}

// NewElevenLabsWithClient creates a provider with a custom HTTP client.
func NewElevenLabsWithClient(apiKey string, client *http.Client) *ElevenLabsProvider {
	p := NewElevenLabs(apiKey)
	if client != nil {
		p.httpClient = client
	}
	return p
}

// WithBaseURL overrides the REST endpoint.
func (e *ElevenLabsProvider) WithBaseURL(base string) *ElevenLabsProvider {
	if e == nil {
		return e
	}
	base = strings.TrimSpace(base)
	if base != "" {
		e.baseURL = strings.TrimSuffix(base, "/")
	}
	return e
}

// WithWSBaseURL overrides the websocket endpoint.
func (e *ElevenLabsProvider) WithWSBaseURL(base string) *ElevenLabsProvider {
	if e == nil {
		return e
	}
	base = strings.TrimSpace(base)
	if base != "" {
		e.wsBaseURL = base
	}
	return e
}

func (e *ElevenLabsProvider) Name() string {
	return "elevenlabs"
}

// Configured reports whether the API key is present.
func (e *ElevenLabsProvider) Configured() bool {
	return e != nil && e.apiKey != ""
}

// Synthesize converts text to audio in a single REST round trip.
func (e *ElevenLabsProvider) Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*Synthesis, error) {
	if !e.Configured() {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	voiceID := strings.TrimSpace(opts.Voice)
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	model := opts.Model
	if model == "" {
		model = DefaultSynthesisModel
	}
	stability := opts.Stability
	if stability == 0 {
		stability = 0.5
	}
	similarity := opts.SimilarityBoost
	if similarity == 0 {
		similarity = 0.5
	}

	payload, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": model,
		"voice_settings": map[string]any{
			"stability":        stability,
			"similarity_boost": similarity,
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("elevenlabs synthesis failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	format := opts.Format
	if format == "" {
		format = "mp3"
	}
	return &Synthesis{Audio: audio, Format: format}, nil
}

// Voices lists the voices available to the account.
func (e *ElevenLabsProvider) Voices(ctx context.Context) ([]Voice, error) {
	if !e.Configured() {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("elevenlabs voices failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var wire struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, err
	}
	return wire.Voices, nil
}

// SynthesizeStream synthesizes text over the websocket and streams audio
// chunks back as they are generated.
func (e *ElevenLabsProvider) SynthesizeStream(ctx context.Context, text string, opts SynthesizeOptions) (*SynthesisStream, error) {
	sc, err := e.NewStreamingContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	stream := NewSynthesisStream()
	if err := sc.SendText(text, false); err != nil {
		_ = sc.Close()
		return nil, err
	}
	if err := sc.Flush(); err != nil {
		_ = sc.Close()
		return nil, err
	}

	go func() {
		defer stream.FinishSending()
		defer sc.Close()
		for chunk := range sc.Audio() {
			if !stream.Send(chunk) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			stream.SetError(err)
		}
	}()

	return stream, nil
}

// NewStreamingContext opens a stream-input websocket for incremental
// synthesis. Text can be sent in chunks as the reply is generated.
func (e *ElevenLabsProvider) NewStreamingContext(ctx context.Context, opts SynthesizeOptions) (*StreamingContext, error) {
	if !e.Configured() {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	voiceID := strings.TrimSpace(opts.Voice)
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	wsURL, err := buildElevenLabsWSURL(e.wsBaseURL, voiceID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("xi-api-key", e.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, err
	}

	sc := NewStreamingContext()
	ctxDone := make(chan struct{})
	var closeOnce sync.Once
	closeConn := func() error {
		var closeErr error
		closeOnce.Do(func() {
			close(ctxDone)
			closeErr = conn.Close()
		})
		return closeErr
	}

	if err := conn.WriteJSON(map[string]any{
		"text":     " ",
		"voice_id": voiceID,
	}); err != nil {
		_ = closeConn()
		return nil, err
	}

	sc.SendFunc = func(text string, isFinal bool) error {
		trimmed := strings.TrimSpace(text)
		if trimmed != "" && !strings.HasSuffix(trimmed, " ") {
			trimmed += " "
		}
		payload := map[string]any{"text": trimmed}
		if isFinal {
			payload["flush"] = true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteJSON(payload)
	}
	sc.CloseFunc = closeConn

	go func() {
		defer sc.FinishAudio()
		defer sc.Close()
		for {
			select {
			case <-ctx.Done():
				sc.SetError(ctx.Err())
				return
			case <-ctxDone:
				return
			default:
			}
			_, data, err := conn.ReadMessage()
			if err != nil {
				sc.SetError(err)
				return
			}
			var msg map[string]json.RawMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if audioB64 := decodeStringRaw(msg["audio"]); audioB64 != "" {
				audio, err := base64.StdEncoding.DecodeString(audioB64)
				if err == nil && len(audio) > 0 {
					if !sc.PushAudio(audio) {
						return
					}
				}
			}
			if decodeBoolRaw(msg["isFinal"]) || decodeBoolRaw(msg["is_final"]) {
				return
			}
		}
	}()

	return sc, nil
}

func buildElevenLabsWSURL(base, voiceID string) (string, error) {
	if strings.TrimSpace(base) == "" {
		base = elevenLabsDefaultWSBase
	}
	base = strings.ReplaceAll(base, "{voice_id}", url.PathEscape(voiceID))
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid elevenlabs ws url: %w", err)
	}
	if u.Scheme == "" {
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/v1/text-to-speech/" + url.PathEscape(voiceID) + "/stream-input"
	}
	q := u.Query()
	if q.Get("model_id") == "" {
		q.Set("model_id", "eleven_flash_v2_5")
	}
	if q.Get("output_format") == "" {
		q.Set("output_format", "pcm_24000")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeStringRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func decodeBoolRaw(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var out bool
	if err := json.Unmarshal(raw, &out); err != nil {
		return false
	}
	return out
}
