// Package types defines the shared data model for the conversation core:
// turns, tool descriptors and invocations, and the normalized provider
// response shape all backends are translated into.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is a single message in a conversation. Turns are immutable once
// created and owned by the message store that holds them.
type Turn struct {
	ID            string         `json:"id"`
	Role          Role           `json:"role"`
	Content       string         `json:"content"`
	CreatedAt     time.Time      `json:"created_at"`
	TokenEstimate int            `json:"token_estimate"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// NewTurn creates a turn with a fresh ID and a token estimate computed
// from the content length.
func NewTurn(role Role, content string, metadata map[string]any) Turn {
	return Turn{
		ID:            uuid.NewString(),
		Role:          role,
		Content:       content,
		CreatedAt:     time.Now(),
		TokenEstimate: EstimateTokens(content),
		Metadata:      metadata,
	}
}

// EstimateTokens returns a cheap deterministic token-count approximation,
// roughly one token per four characters. It is not a tokenizer.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// ContextMessage is a role/content pair submitted to a provider. It is the
// windowed, wire-agnostic projection of a Turn.
type ContextMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
