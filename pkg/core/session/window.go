package session

import "github.com/halcyon-ai/halcyon/pkg/core/types"

// Window selects the context submitted to a provider: a contiguous suffix
// of history by recency whose summed token estimates stay within budget.
//
// The walk goes newest to oldest and stops at the first turn whose
// inclusion would exceed the budget; it does not skip ahead to smaller
// older turns. A single newest turn that alone exceeds the budget yields
// an empty window.
func Window(history []types.Turn, tokenBudget int) []types.ContextMessage {
	var picked []types.Turn
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		t := history[i]
		if used+t.TokenEstimate > tokenBudget {
			break
		}
		picked = append(picked, t)
		used += t.TokenEstimate
	}

	out := make([]types.ContextMessage, len(picked))
	for i, t := range picked {
		// picked is newest-first; reverse back to chronological order.
		out[len(picked)-1-i] = types.ContextMessage{Role: t.Role, Content: t.Content}
	}
	return out
}

// WindowSession applies Window to a session using its configured budget
// when tokenBudget is zero.
func WindowSession(s *Session, tokenBudget int) []types.ContextMessage {
	if tokenBudget <= 0 {
		tokenBudget = s.MaxContextTokens
	}
	return Window(s.history, tokenBudget)
}
