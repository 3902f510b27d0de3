// Package agent composes the session store, context windower, provider
// gateway, and tool dispatcher into a single process-one-turn operation.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/halcyon-ai/halcyon/internal/textutil"
	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/gateway"
	"github.com/halcyon-ai/halcyon/pkg/core/retrieval"
	"github.com/halcyon-ai/halcyon/pkg/core/session"
	"github.com/halcyon-ai/halcyon/pkg/core/tools"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// State is the orchestrator's position in the turn lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingProvider State = "awaiting_provider"
	StateToolDispatch     State = "tool_dispatch"
	StateError            State = "error"
)

const (
	// DefaultToolLoopLimit bounds consecutive tool-dispatch rounds in a
	// single turn. Without it a model that keeps requesting tools would
	// loop forever.
	DefaultToolLoopLimit = 5

	// apologyMessage is recorded as the assistant turn when a turn fails
	// after fallback. The original error still propagates to the caller.
	apologyMessage = "I apologize, but I encountered an error processing your request. Please try again."
)

// Options tunes a single Process call.
type Options struct {
	Provider        string  // preferred provider name, empty for default
	Temperature     float64 // sampling temperature
	MaxTokens       int     // context token budget override, 0 for session default
	MaxOutputTokens int     // response length cap
	DisableTools    bool    // suppress tool descriptors for this turn
}

// Agent orchestrates one session's turns.
type Agent struct {
	session  *session.Session
	gateway  *gateway.Gateway
	registry *tools.Registry
	logger   *slog.Logger

	retriever     core.Retriever
	toolLoopLimit int
	state         State
}

// Option configures the agent.
type Option func(*Agent)

// WithRegistry sets the tool registry. Without one, turns run toolless.
func WithRegistry(r *tools.Registry) Option {
	return func(a *Agent) { a.registry = r }
}

// WithRetriever enables retrieval augmentation.
func WithRetriever(r core.Retriever) Option {
	return func(a *Agent) { a.retriever = r }
}

// WithToolLoopLimit overrides the tool-dispatch round cap.
func WithToolLoopLimit(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.toolLoopLimit = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates an agent over the given session and gateway.
func New(sess *session.Session, gw *gateway.Gateway, opts ...Option) *Agent {
	a := &Agent{
		session:       sess,
		gateway:       gw,
		toolLoopLimit: DefaultToolLoopLimit,
		state:         StateIdle,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session returns the agent's session.
func (a *Agent) Session() *session.Session {
	return a.session
}

// State returns the current lifecycle state. Callers serialize turns per
// session, so this is only advisory between calls.
func (a *Agent) State() State {
	return a.state
}

// Process runs one full turn: append the user input, invoke the provider
// with windowed context, dispatch any requested tools, and append the
// terminal assistant reply. A failed turn records an apology turn AND
// returns the error; both happen.
func (a *Agent) Process(ctx context.Context, userInput string, opts Options) (*types.TurnResult, error) {
	userInput = textutil.SanitizeInput(userInput)

	var sources []types.Source
	if a.retriever != nil {
		sources = a.augment(ctx, userInput)
	}
	a.session.Append(types.RoleUser, userInput, nil)

	result, err := a.converse(ctx, opts)
	if err != nil {
		a.state = StateError
		a.session.Append(types.RoleAssistant, apologyMessage, nil)
		turnsTotal.WithLabelValues("error").Inc()
		a.state = StateIdle
		return nil, err
	}

	a.session.Append(types.RoleAssistant, result.Text, nil)
	a.session.AddCost(result.CostUSD)
	result.Sources = sources
	a.state = StateIdle
	turnsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// converse runs the provider/tool loop until a terminal response.
func (a *Agent) converse(ctx context.Context, opts Options) (*types.TurnResult, error) {
	result := &types.TurnResult{}
	budget := opts.MaxTokens

	var descriptors []types.ToolDescriptor
	if a.registry != nil && !opts.DisableTools {
		descriptors = a.registry.List()
	}

	for round := 0; ; round++ {
		a.state = StateAwaitingProvider
		req := &core.InvokeRequest{
			Messages:        session.WindowSession(a.session, budget),
			SystemPreamble:  "",
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
			Tools:           descriptors,
		}

		resp, err := a.gateway.Invoke(ctx, opts.Provider, req)
		if err != nil {
			return nil, err
		}
		providerInvocations.WithLabelValues(resp.Model).Inc()

		result.Model = resp.Model
		result.Usage = result.Usage.Add(resp.Usage)
		result.CostUSD += gateway.EstimateCost(resp.Model, resp.Usage)

		if !resp.ToolRequested() {
			result.Text = resp.Text
			return result, nil
		}
		if a.registry == nil {
			return nil, core.NewToolExecutionError("provider requested tools but none are registered")
		}
		if round >= a.toolLoopLimit {
			a.logger.Warn("tool loop limit reached, forcing terminal response",
				"rounds", round, "session", a.session.ID)
			result.Text = resp.Text
			return result, nil
		}

		a.state = StateToolDispatch
		if resp.Text != "" {
			a.session.Append(types.RoleAssistant, resp.Text, nil)
		}
		results := a.registry.DispatchBatch(ctx, resp.ToolInvocations)
		for _, tr := range results {
			toolDispatches.WithLabelValues(tr.Name, dispatchStatus(tr)).Inc()
			a.session.Append(types.RoleTool, renderToolResult(tr), map[string]any{
				"tool":    tr.Name,
				"success": tr.Success,
			})
		}
		result.ToolResults = append(result.ToolResults, results...)
	}
}

// augment retrieves documents for the query and records them as a
// user-role turn so the windower carries them into context. The turn is
// user-role rather than system on purpose: trimming never evicts system
// turns, and a per-call immortal context block would crowd the
// conversation out of a bounded history. Retrieval failures degrade to
// no augmentation.
func (a *Agent) augment(ctx context.Context, query string) []types.Source {
	hits, err := a.retriever.Retrieve(ctx, query, 0)
	if err != nil {
		a.logger.Warn("retrieval failed, continuing without context", "error", err)
		return nil
	}
	if len(hits) == 0 {
		return nil
	}

	a.session.Append(types.RoleUser, retrieval.FormatContext(hits), map[string]any{"retrieval": true})
	return retrieval.Sources(hits)
}

// renderToolResult flattens a tool result into turn content.
func renderToolResult(tr types.ToolResult) string {
	if !tr.Success {
		return fmt.Sprintf("Tool %s failed: %s", tr.Name, tr.Error)
	}
	encoded, err := json.Marshal(tr.Value)
	if err != nil {
		return fmt.Sprintf("Tool %s returned an unencodable value", tr.Name)
	}
	return fmt.Sprintf("Tool %s result: %s", tr.Name, encoded)
}

func dispatchStatus(tr types.ToolResult) string {
	if tr.Success {
		return "ok"
	}
	return "error"
}
