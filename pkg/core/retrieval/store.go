package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// DefaultDimensions matches text-embedding-3-small.
const DefaultDimensions = 1536

// Store persists documents and their embeddings in Postgres with the
// pgvector extension.
type Store struct {
	db         *sql.DB
	dimensions int
}

// NewStore opens a Postgres-backed store with the given DSN.
func NewStore(dsn string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres")
	}
	return &Store{db: db, dimensions: dimensions}, nil
}

// NewStoreWithDB wraps an existing database handle.
func NewStoreWithDB(db *sql.DB, dimensions int) *Store {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Store{db: db, dimensions: dimensions}
}

// Migrate creates the extension and document table if missing.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL,
			created_ts TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.dimensions),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate document store")
		}
	}
	return nil
}

// Upsert inserts or replaces a document and its embedding.
func (s *Store) Upsert(ctx context.Context, doc types.Document, embedding []float32) error {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return errors.Wrap(err, "failed to marshal metadata")
	}

	stmt := `
		INSERT INTO document (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`
	_, err = s.db.ExecContext(ctx, stmt, doc.ID, doc.Text, metadata, pgvector.NewVector(embedding))
	if err != nil {
		return errors.Wrap(err, "failed to upsert document")
	}
	return nil
}

// Get fetches one document by ID.
func (s *Store) Get(ctx context.Context, id string) (*types.Document, error) {
	var doc types.Document
	var metadata []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content, metadata FROM document WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.Text, &metadata)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get document")
	}
	if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal metadata")
	}
	return &doc, nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM document WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete document")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("document %s not found", id)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count documents")
	}
	return n, nil
}

// Search returns the documents nearest to the query vector. The <=>
// operator computes cosine distance in [0, 2]; the returned score maps
// that onto [0, 1] with 1 meaning identical.
func (s *Store) Search(ctx context.Context, embedding []float32, limit int) ([]types.ScoredDocument, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, content, metadata, 1 - (embedding <=> $1) / 2 AS score
		FROM document
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	vector := pgvector.NewVector(embedding)
	rows, err := s.db.QueryContext(ctx, query, vector, vector, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search documents")
	}
	defer rows.Close()

	results := []types.ScoredDocument{}
	for rows.Next() {
		var hit types.ScoredDocument
		var metadata []byte
		if err := rows.Scan(&hit.ID, &hit.Text, &metadata, &hit.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan document")
		}
		if err := json.Unmarshal(metadata, &hit.Metadata); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal metadata")
		}
		results = append(results, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
