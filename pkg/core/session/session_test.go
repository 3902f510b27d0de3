package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

func TestTrimKeepsSystemAndNewest(t *testing.T) {
	s := New("be helpful", WithMaxHistoryLen(3))
	require.Equal(t, 1, s.Len())

	s.Append(types.RoleUser, "a", nil)
	s.Append(types.RoleAssistant, "b", nil)
	s.Append(types.RoleUser, "c", nil)
	s.Append(types.RoleAssistant, "d", nil)

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, types.RoleSystem, history[0].Role)
	assert.Equal(t, "c", history[1].Content)
	assert.Equal(t, "d", history[2].Content)
}

func TestTrimWithoutSystemTurns(t *testing.T) {
	s := New("", WithMaxHistoryLen(2))
	s.Append(types.RoleUser, "a", nil)
	s.Append(types.RoleAssistant, "b", nil)
	s.Append(types.RoleUser, "c", nil)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].Content)
	assert.Equal(t, "c", history[1].Content)
}

func TestClearKeepSystem(t *testing.T) {
	s := New("be helpful")
	s.Append(types.RoleUser, "hello", nil)
	s.Append(types.RoleAssistant, "hi", nil)

	s.Clear(true)
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, types.RoleSystem, history[0].Role)

	s.Clear(false)
	assert.Zero(t, s.Len())
}

func TestCumulativeTokensTracksHistory(t *testing.T) {
	s := New("")
	s.Append(types.RoleUser, "12345678", nil) // 2 estimated tokens
	assert.Equal(t, 2, s.CumulativeTokens())

	s.Append(types.RoleAssistant, "1234", nil) // 1 more
	assert.Equal(t, 3, s.CumulativeTokens())
}

func TestStatsSnapshot(t *testing.T) {
	s := New("sys", WithID("fixed"))
	s.Append(types.RoleUser, "hello", nil)
	s.AddCost(0.25)
	s.AddCost(0.25)

	st := s.Stats()
	assert.Equal(t, "fixed", st.SessionID)
	assert.Equal(t, 2, st.TurnCount)
	assert.InDelta(t, 0.5, st.CumulativeCost, 1e-9)
	assert.False(t, st.LastActivity.IsZero())
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := New("")
	s.Append(types.RoleUser, "original", nil)

	history := s.History()
	history[0].Content = "mutated"
	assert.Equal(t, "original", s.History()[0].Content)
}
