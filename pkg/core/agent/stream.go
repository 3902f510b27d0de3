package agent

import (
	"context"
	"io"
	"strings"

	"github.com/halcyon-ai/halcyon/internal/textutil"
	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/session"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// TurnStream is a lazy, finite, non-restartable sequence of reply
// fragments. The accumulated text is appended to the session as one
// assistant turn when the stream ends.
type TurnStream struct {
	fragments chan string
	done      chan struct{}
	result    *types.TurnResult
	err       error
}

// Fragments returns the channel of text fragments.
func (s *TurnStream) Fragments() <-chan string {
	return s.fragments
}

// Result blocks until the stream finishes and returns the completed
// turn, or the error that ended it.
func (s *TurnStream) Result() (*types.TurnResult, error) {
	<-s.done
	return s.result, s.err
}

// ProcessStream runs one streaming turn. Tool dispatch is not available
// on the streaming path; the provider is invoked without descriptors.
func (a *Agent) ProcessStream(ctx context.Context, userInput string, opts Options) (*TurnStream, error) {
	userInput = textutil.SanitizeInput(userInput)

	var sources []types.Source
	if a.retriever != nil {
		sources = a.augment(ctx, userInput)
	}
	a.session.Append(types.RoleUser, userInput, nil)

	a.state = StateAwaitingProvider
	req := &core.InvokeRequest{
		Messages:        session.WindowSession(a.session, opts.MaxTokens),
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
	}

	stream, provider, err := a.gateway.Stream(ctx, opts.Provider, req)
	if err != nil {
		a.state = StateError
		a.session.Append(types.RoleAssistant, apologyMessage, nil)
		turnsTotal.WithLabelValues("error").Inc()
		a.state = StateIdle
		return nil, err
	}

	ts := &TurnStream{
		fragments: make(chan string),
		done:      make(chan struct{}),
	}

	go func() {
		defer close(ts.done)
		defer close(ts.fragments)
		defer stream.Close()

		var full strings.Builder
		for {
			fragment, err := stream.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				ts.err = core.NewProviderError(provider.Name(), err)
				break
			}
			full.WriteString(fragment)
			select {
			case ts.fragments <- fragment:
			case <-ctx.Done():
				ts.err = ctx.Err()
				a.state = StateIdle
				return
			}
		}

		text := full.String()
		if text != "" {
			a.session.Append(types.RoleAssistant, text, nil)
		}
		if ts.err == nil {
			ts.result = &types.TurnResult{
				Text:    text,
				Model:   provider.Name(),
				Sources: sources,
			}
			turnsTotal.WithLabelValues("ok").Inc()
		} else {
			turnsTotal.WithLabelValues("error").Inc()
		}
		a.state = StateIdle
	}()

	return ts, nil
}
