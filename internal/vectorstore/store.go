package vectorstore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Payload is the document chunk stored alongside its vector.
type Payload struct {
	Text        string         `json:"text"`
	Source      string         `json:"source"`
	ChunkIndex  int            `json:"chunkIndex"`
	TotalChunks int            `json:"totalChunks"`
	UploadedAt  time.Time      `json:"uploadedAt"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Point is one vector plus payload, addressed by a random UUID. IDs are
// not content-derived, so re-ingesting the same document adds new
// points rather than replacing old ones.
type Point struct {
	ID      uuid.UUID
	Vector  []float32
	Payload Payload
}

type SearchResult struct {
	ID      uuid.UUID `json:"id"`
	Score   float64   `json:"score"`
	Payload Payload   `json:"payload"`
}

type CollectionInfo struct {
	Name       string `json:"name"`
	Dimensions int    `json:"dimensions"`
	Points     int64  `json:"points"`
}

type Store interface {
	// EnsureCollection creates the backing table and index if missing.
	EnsureCollection(ctx context.Context) error
	// Upsert writes all points or none. A single wrong-sized vector
	// rejects the whole batch before any database work.
	Upsert(ctx context.Context, points []Point, wait bool) error
	// Search returns up to k nearest points by cosine similarity,
	// dropping any below the threshold.
	Search(ctx context.Context, vector []float32, k int, threshold float64) ([]SearchResult, error)
	Count(ctx context.Context) (int64, error)
	CollectionInfo(ctx context.Context) (CollectionInfo, error)
	DeleteBySource(ctx context.Context, source string) (int64, error)
}
