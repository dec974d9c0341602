package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/adrigdeva/ragchat/internal/llm"
)

// ErrProvider marks a failed or malformed embedding call. A failed
// batch fails the whole call: there is no partial success, and the
// caller must treat it as fatal for its unit of work.
var ErrProvider = errors.New("embedding provider error")

// Embedder is the slice of the LLM gateway this service needs.
type Embedder interface {
	Embed(ctx context.Context, req llm.EmbeddingRequest) (*llm.EmbeddingResponse, error)
}

// Service generates embeddings, memoizing results in the cache and
// batching all uncached texts into a single provider call.
type Service struct {
	provider Embedder
	cache    *Cache
}

func NewService(provider Embedder, cache *Cache) *Service {
	return &Service{provider: provider, cache: cache}
}

// EmbedBatch returns one vector per input text, in input order. Cached
// texts are served locally; the remainder go to the provider in exactly
// one batched call, whose results are written back to the cache before
// being merged into position.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	var uncached []string
	var uncachedIdx []int

	for i, text := range texts {
		if vec, ok := s.cache.Get(text); ok {
			results[i] = vec
			continue
		}
		uncached = append(uncached, text)
		uncachedIdx = append(uncachedIdx, i)
	}

	if len(uncached) > 0 {
		resp, err := s.provider.Embed(ctx, llm.EmbeddingRequest{Input: uncached})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvider, err)
		}
		if len(resp.Embeddings) != len(uncached) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
				ErrProvider, len(resp.Embeddings), len(uncached))
		}

		for i, vec := range resp.Embeddings {
			s.cache.Put(uncached[i], vec)
			results[uncachedIdx[i]] = vec
		}
	}

	return results, nil
}

// Embed is the single-text convenience over EmbedBatch.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// CacheStats exposes cache occupancy for the system info endpoint.
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}
