package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type fakeStore struct {
	hits     []types.ScoredDocument
	upserted []types.Document
}

func (f *fakeStore) Upsert(ctx context.Context, doc types.Document, embedding []float32) error {
	f.upserted = append(f.upserted, doc)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, embedding []float32, limit int) ([]types.ScoredDocument, error) {
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func TestRetrieveFiltersByMinScore(t *testing.T) {
	store := &fakeStore{hits: []types.ScoredDocument{
		{Document: types.Document{ID: "a", Text: "relevant"}, Score: 0.8},
		{Document: types.Document{ID: "b", Text: "borderline"}, Score: 0.3},
		{Document: types.Document{ID: "c", Text: "noise"}, Score: 0.1},
	}}
	r := New(&fakeEmbedder{}, store, WithMinScore(0.3))

	hits, err := r.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "b", hits[1].ID)
}

func TestRetrieveUsesDefaultTopK(t *testing.T) {
	store := &fakeStore{hits: []types.ScoredDocument{
		{Document: types.Document{ID: "a"}, Score: 0.9},
		{Document: types.Document{ID: "b"}, Score: 0.9},
		{Document: types.Document{ID: "c"}, Score: 0.9},
		{Document: types.Document{ID: "d"}, Score: 0.9},
	}}
	r := New(&fakeEmbedder{}, store, WithTopK(2))

	hits, err := r.Retrieve(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestRetrieveEmbedFailure(t *testing.T) {
	r := New(&fakeEmbedder{err: fmt.Errorf("quota")}, &fakeStore{})
	_, err := r.Retrieve(context.Background(), "query", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestIngestChunksAndStores(t *testing.T) {
	store := &fakeStore{}
	r := New(&fakeEmbedder{}, store)

	text := strings.Repeat("word ", 500) // well past one chunk
	ids, err := r.Ingest(context.Background(), text, map[string]any{"origin": "test"})
	require.NoError(t, err)
	assert.Greater(t, len(ids), 1)
	require.Len(t, store.upserted, len(ids))
	assert.Equal(t, "test", store.upserted[0].Metadata["origin"])
}

func TestIngestEmptyText(t *testing.T) {
	r := New(&fakeEmbedder{}, &fakeStore{})
	ids, err := r.Ingest(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFormatContext(t *testing.T) {
	assert.Empty(t, FormatContext(nil))

	out := FormatContext([]types.ScoredDocument{
		{Document: types.Document{Text: "first fact"}, Score: 0.9},
		{Document: types.Document{Text: "second fact"}, Score: 0.5},
	})
	assert.Contains(t, out, "[1] first fact")
	assert.Contains(t, out, "[2] second fact")
}

func TestSources(t *testing.T) {
	sources := Sources([]types.ScoredDocument{
		{Document: types.Document{ID: "d1", Metadata: map[string]any{"k": "v"}}, Score: 0.7},
	})
	require.Len(t, sources, 1)
	assert.Equal(t, "d1", sources[0].ID)
	assert.InDelta(t, 0.7, sources[0].Score, 1e-9)
	assert.Equal(t, "v", sources[0].Metadata["k"])
}
