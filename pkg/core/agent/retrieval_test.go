package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/gateway"
	"github.com/halcyon-ai/halcyon/pkg/core/session"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

type fakeRetriever struct {
	hits []types.ScoredDocument
	err  error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, topK int) ([]types.ScoredDocument, error) {
	return f.hits, f.err
}

func TestProcessWithRetrievalAttachesSources(t *testing.T) {
	provider := &scriptedProvider{
		name:      "fake",
		responses: []*types.ProviderResponse{textResponse("grounded answer", "m")},
	}
	retriever := &fakeRetriever{hits: []types.ScoredDocument{
		{Document: types.Document{ID: "doc-1", Text: "fact one"}, Score: 0.9},
		{Document: types.Document{ID: "doc-2", Text: "fact two"}, Score: 0.6},
	}}
	a, sess := newTestAgent(t, provider, WithRetriever(retriever))

	result, err := a.Process(context.Background(), "question", Options{})
	require.NoError(t, err)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "doc-1", result.Sources[0].ID)
	assert.InDelta(t, 0.9, result.Sources[0].Score, 1e-9)

	// The context block is recorded as an evictable user-role turn before
	// the user turn, marked so callers can tell it from real input.
	var contextTurn *types.Turn
	history := sess.History()
	for i := range history {
		if history[i].Metadata["retrieval"] == true {
			contextTurn = &history[i]
			break
		}
	}
	require.NotNil(t, contextTurn)
	assert.Equal(t, types.RoleUser, contextTurn.Role)
	assert.Contains(t, contextTurn.Content, "fact one")
	assert.Contains(t, contextTurn.Content, "fact two")
}

func TestProcessRetrievalContextTurnsAreTrimmed(t *testing.T) {
	// Context turns must not be immortal: with a bounded history, repeated
	// augmented turns have to stay within the limit instead of piling up
	// and starving out the conversation.
	provider := &scriptedProvider{
		name:      "fake",
		responses: []*types.ProviderResponse{textResponse("answer", "m")},
	}
	retriever := &fakeRetriever{hits: []types.ScoredDocument{
		{Document: types.Document{ID: "doc-1", Text: "fact"}, Score: 0.9},
	}}

	sess := session.New("", session.WithMaxHistoryLen(4))
	gw := gateway.New([]core.Provider{provider})
	a := New(sess, gw, WithRetriever(retriever))

	for i := 0; i < 6; i++ {
		_, err := a.Process(context.Background(), fmt.Sprintf("question %d", i), Options{})
		require.NoError(t, err)
	}

	history := sess.History()
	require.LessOrEqual(t, len(history), 4)

	var conversation int
	for _, turn := range history {
		if turn.Metadata["retrieval"] != true {
			conversation++
		}
	}
	assert.Greater(t, conversation, 0, "conversation turns must survive trimming")
	assert.Equal(t, "answer", history[len(history)-1].Content)
}

func TestProcessRetrievalFailureDegrades(t *testing.T) {
	provider := &scriptedProvider{
		name:      "fake",
		responses: []*types.ProviderResponse{textResponse("answer anyway", "m")},
	}
	retriever := &fakeRetriever{err: fmt.Errorf("store offline")}
	a, _ := newTestAgent(t, provider, WithRetriever(retriever))

	result, err := a.Process(context.Background(), "question", Options{})
	require.NoError(t, err)
	assert.Equal(t, "answer anyway", result.Text)
	assert.Empty(t, result.Sources)
}

func TestProcessNoHitsNoContextTurn(t *testing.T) {
	provider := &scriptedProvider{
		name:      "fake",
		responses: []*types.ProviderResponse{textResponse("plain answer", "m")},
	}
	a, sess := newTestAgent(t, provider, WithRetriever(&fakeRetriever{}))

	_, err := a.Process(context.Background(), "question", Options{})
	require.NoError(t, err)
	require.Len(t, sess.History(), 3) // system prompt, user, assistant
}
