package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorStore keeps one collection per table, table name = collection
// name. The collection name comes from config and is interpolated into
// SQL, so it must never be taken from request input.
type PgVectorStore struct {
	db         *pgxpool.Pool
	collection string
	dimensions int
}

func NewPgVectorStore(db *pgxpool.Pool, collection string, dimensions int) *PgVectorStore {
	return &PgVectorStore{db: db, collection: collection, dimensions: dimensions}
}

func (s *PgVectorStore) EnsureCollection(ctx context.Context) error {
	_, err := s.db.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	_, err = s.db.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			text TEXT NOT NULL,
			source TEXT NOT NULL,
			chunk_index INT NOT NULL,
			total_chunks INT NOT NULL,
			uploaded_at TIMESTAMPTZ NOT NULL,
			metadata JSONB
		)`, s.collection, s.dimensions))
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}

	_, err = s.db.Exec(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_embedding_idx
		 ON %s USING hnsw (embedding vector_cosine_ops)`,
		s.collection, s.collection))
	if err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}

	_, err = s.db.Exec(ctx, fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s_source_idx ON %s (source)",
		s.collection, s.collection))
	if err != nil {
		return fmt.Errorf("create source index: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Upsert(ctx context.Context, points []Point, wait bool) error {
	if len(points) == 0 {
		return nil
	}
	for i, p := range points {
		if len(p.Vector) != s.dimensions {
			return fmt.Errorf("point %d: vector has %d dimensions, collection expects %d",
				i, len(p.Vector), s.dimensions)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range points {
		embedding := pgvector.NewVector(p.Vector)

		_, err := tx.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (id, embedding, text, source, chunk_index, total_chunks, uploaded_at, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET embedding = $2, text = $3, source = $4,
			   chunk_index = $5, total_chunks = $6, uploaded_at = $7, metadata = $8`,
			s.collection),
			p.ID, embedding, p.Payload.Text, p.Payload.Source, p.Payload.ChunkIndex,
			p.Payload.TotalChunks, p.Payload.UploadedAt, p.Payload.Metadata,
		)
		if err != nil {
			return fmt.Errorf("upsert point %s: %w", p.ID, err)
		}
	}

	// Postgres commits are already durable, so wait has no extra work
	// to do here. The flag exists for stores with async indexing.
	_ = wait
	return tx.Commit(ctx)
}

func (s *PgVectorStore) Search(ctx context.Context, vector []float32, k int, threshold float64) ([]SearchResult, error) {
	if k <= 0 {
		k = 5
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, collection expects %d",
			len(vector), s.dimensions)
	}

	embedding := pgvector.NewVector(vector)

	rows, err := s.db.Query(ctx, fmt.Sprintf(
		`SELECT id, text, source, chunk_index, total_chunks, uploaded_at, metadata,
		        1 - (embedding <=> $1) AS score
		 FROM %s
		 ORDER BY embedding <=> $1
		 LIMIT $2`, s.collection),
		embedding, k,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Payload.Text, &r.Payload.Source, &r.Payload.ChunkIndex,
			&r.Payload.TotalChunks, &r.Payload.UploadedAt, &r.Payload.Metadata, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if threshold > 0 && r.Score < threshold {
			continue
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.collection)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return count, nil
}

func (s *PgVectorStore) CollectionInfo(ctx context.Context) (CollectionInfo, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return CollectionInfo{}, err
	}
	return CollectionInfo{
		Name:       s.collection,
		Dimensions: s.dimensions,
		Points:     count,
	}, nil
}

func (s *PgVectorStore) DeleteBySource(ctx context.Context, source string) (int64, error) {
	tag, err := s.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE source = $1", s.collection), source)
	if err != nil {
		return 0, fmt.Errorf("delete by source: %w", err)
	}
	return tag.RowsAffected(), nil
}
