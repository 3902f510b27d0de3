package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/halcyon-ai/halcyon/internal/textutil"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

const (
	// DefaultTopK is the number of documents fetched per query.
	DefaultTopK = 3

	// DefaultMinScore drops hits below this similarity.
	DefaultMinScore = 0.3

	// DefaultChunkSize and DefaultChunkOverlap control ingestion
	// splitting, in characters.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DocumentStore is the persistence surface the retriever needs. *Store
// is the Postgres implementation.
type DocumentStore interface {
	Upsert(ctx context.Context, doc types.Document, embedding []float32) error
	Search(ctx context.Context, embedding []float32, limit int) ([]types.ScoredDocument, error)
}

// Retriever embeds queries and searches the document store.
type Retriever struct {
	embedder Embedder
	store    DocumentStore
	topK     int
	minScore float64
	logger   *slog.Logger
}

// Option configures the retriever.
type Option func(*Retriever)

// WithTopK sets the default result count.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithMinScore sets the similarity floor.
func WithMinScore(score float64) Option {
	return func(r *Retriever) { r.minScore = score }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) { r.logger = logger }
}

// New creates a retriever over the given embedder and store.
func New(embedder Embedder, store DocumentStore, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		store:    store,
		topK:     DefaultTopK,
		minScore: DefaultMinScore,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds the query, searches the store, and filters hits below
// the similarity floor. Results come back ordered best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]types.ScoredDocument, error) {
	if topK <= 0 {
		topK = r.topK
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	filtered := hits[:0]
	for _, hit := range hits {
		if hit.Score >= r.minScore {
			filtered = append(filtered, hit)
		}
	}
	r.logger.Debug("retrieved documents", "query_len", len(query), "hits", len(filtered))
	return filtered, nil
}

// Ingest splits text into overlapping chunks, embeds each, and stores
// them. Returns the IDs of the stored chunks.
func (r *Retriever) Ingest(ctx context.Context, text string, metadata map[string]any) ([]string, error) {
	chunks := textutil.ChunkText(text, DefaultChunkSize, DefaultChunkOverlap)
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors, err := r.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	ids := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		doc := types.Document{
			ID:       uuid.NewString(),
			Text:     chunk,
			Metadata: metadata,
		}
		if err := r.store.Upsert(ctx, doc, vectors[i]); err != nil {
			return ids, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// FormatContext renders retrieved documents into the context block that
// gets prepended to the user's query.
func FormatContext(hits []types.ScoredDocument) string {
	if len(hits) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant context:\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(hit.Text))
	}
	return b.String()
}

// Sources converts hits into turn attributions.
func Sources(hits []types.ScoredDocument) []types.Source {
	out := make([]types.Source, 0, len(hits))
	for _, hit := range hits {
		out = append(out, types.Source{
			ID:       hit.ID,
			Score:    hit.Score,
			Metadata: hit.Metadata,
		})
	}
	return out
}
