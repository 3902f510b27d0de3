// Package session owns per-conversation state: the bounded turn log with
// token accounting and the token-budgeted context window selection.
//
// A Session is exclusively owned by its creator. Two concurrent Process
// calls on the same session are a caller bug; serialize per session.
// Sessions for different conversations share nothing.
package session

import (
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

const (
	DefaultMaxHistoryLen    = 50
	DefaultMaxContextTokens = 4000
)

// Session is a bounded conversation with usage accounting.
type Session struct {
	ID               string
	SystemPreamble   string
	MaxHistoryLen    int
	MaxContextTokens int
	CreatedAt        time.Time

	history          []types.Turn
	cumulativeTokens int
	cumulativeCost   float64

	logger *slog.Logger
}

// Option configures a new session.
type Option func(*Session)

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// WithMaxHistoryLen bounds the number of retained turns.
func WithMaxHistoryLen(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.MaxHistoryLen = n
		}
	}
}

// WithMaxContextTokens sets the default context token budget.
func WithMaxContextTokens(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.MaxContextTokens = n
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session. When systemPreamble is non-empty the first turn
// of the history is a system turn carrying it; trimming never evicts it.
func New(systemPreamble string, opts ...Option) *Session {
	s := &Session{
		ID:               shortuuid.New(),
		SystemPreamble:   systemPreamble,
		MaxHistoryLen:    DefaultMaxHistoryLen,
		MaxContextTokens: DefaultMaxContextTokens,
		CreatedAt:        time.Now(),
		history:          make([]types.Turn, 0, 16),
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if systemPreamble != "" {
		s.history = append(s.history, types.NewTurn(types.RoleSystem, systemPreamble, nil))
	}
	s.logger.Debug("session created", "session_id", s.ID)
	return s
}

// Append creates a turn, appends it, updates the cumulative token
// estimate and trims the history. It never fails.
func (s *Session) Append(role types.Role, content string, metadata map[string]any) types.Turn {
	turn := types.NewTurn(role, content, metadata)
	s.history = append(s.history, turn)
	s.trim()
	s.recountTokens()
	s.logger.Debug("turn appended", "session_id", s.ID, "role", string(role), "tokens", turn.TokenEstimate)
	return turn
}

// trim enforces len(history) <= MaxHistoryLen: all system turns are kept,
// the oldest non-system turns are discarded first.
func (s *Session) trim() {
	if len(s.history) <= s.MaxHistoryLen {
		return
	}
	var system, rest []types.Turn
	for _, t := range s.history {
		if t.Role == types.RoleSystem {
			system = append(system, t)
		} else {
			rest = append(rest, t)
		}
	}
	keep := s.MaxHistoryLen - len(system)
	if keep < 0 {
		keep = 0
	}
	if len(rest) > keep {
		rest = rest[len(rest)-keep:]
	}
	s.history = append(system, rest...)
}

func (s *Session) recountTokens() {
	total := 0
	for _, t := range s.history {
		total += t.TokenEstimate
	}
	s.cumulativeTokens = total
}

// Clear resets the history, optionally retaining system turns.
func (s *Session) Clear(keepSystem bool) {
	if keepSystem {
		kept := s.history[:0]
		for _, t := range s.history {
			if t.Role == types.RoleSystem {
				kept = append(kept, t)
			}
		}
		s.history = kept
	} else {
		s.history = s.history[:0]
	}
	s.recountTokens()
	s.logger.Info("history cleared", "session_id", s.ID, "keep_system", keepSystem)
}

// History returns a copy of the turn log in chronological order.
func (s *Session) History() []types.Turn {
	out := make([]types.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of retained turns.
func (s *Session) Len() int {
	return len(s.history)
}

// CumulativeTokens returns the token estimate summed over the retained
// history.
func (s *Session) CumulativeTokens() int {
	return s.cumulativeTokens
}

// CumulativeCost returns the accumulated provider cost in USD.
func (s *Session) CumulativeCost() float64 {
	return s.cumulativeCost
}

// AddCost accrues provider cost for a completed invocation.
func (s *Session) AddCost(usd float64) {
	s.cumulativeCost += usd
}

// Stats is a point-in-time snapshot of session accounting.
type Stats struct {
	SessionID        string    `json:"session_id"`
	TurnCount        int       `json:"turn_count"`
	CumulativeTokens int       `json:"cumulative_tokens"`
	CumulativeCost   float64   `json:"cumulative_cost"`
	CreatedAt        time.Time `json:"created_at"`
	LastActivity     time.Time `json:"last_activity,omitempty"`
}

// Stats returns the current accounting snapshot.
func (s *Session) Stats() Stats {
	st := Stats{
		SessionID:        s.ID,
		TurnCount:        len(s.history),
		CumulativeTokens: s.cumulativeTokens,
		CumulativeCost:   s.cumulativeCost,
		CreatedAt:        s.CreatedAt,
	}
	if n := len(s.history); n > 0 {
		st.LastActivity = s.history[n-1].CreatedAt
	}
	return st
}
