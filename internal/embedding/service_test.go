package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrigdeva/ragchat/internal/llm"
)

// fakeEmbedder returns a deterministic vector per text and records every
// batch it was asked to compute.
type fakeEmbedder struct {
	calls   [][]string
	err     error
	badSize bool
}

func (f *fakeEmbedder) Embed(_ context.Context, req llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	f.calls = append(f.calls, req.Input)
	if f.err != nil {
		return nil, f.err
	}

	n := len(req.Input)
	if f.badSize {
		n--
	}
	embeddings := make([][]float32, 0, n)
	for i := 0; i < n; i++ {
		embeddings = append(embeddings, vectorFor(req.Input[i]))
	}
	return &llm.EmbeddingResponse{Embeddings: embeddings}, nil
}

func vectorFor(text string) []float32 {
	var sum float32
	for _, r := range text {
		sum += float32(r)
	}
	return []float32{sum, float32(len(text))}
}

func newTestService(f *fakeEmbedder) *Service {
	return NewService(f, NewCache(100, time.Hour))
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	f := &fakeEmbedder{}
	svc := newTestService(f)

	texts := []string{"alpha", "beta", "gamma"}
	got, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, text := range texts {
		assert.Equal(t, vectorFor(text), got[i])
	}
}

func TestEmbedBatchSingleProviderCall(t *testing.T) {
	f := &fakeEmbedder{}
	svc := newTestService(f)

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	require.Len(t, f.calls, 1, "all uncached texts must go out in one batched call")
	assert.Equal(t, []string{"a", "b", "c", "d"}, f.calls[0])
}

func TestEmbedBatchMergesCacheHitsInOrder(t *testing.T) {
	f := &fakeEmbedder{}
	svc := newTestService(f)

	// Warm the cache with "beta" only.
	_, err := svc.EmbedBatch(context.Background(), []string{"beta"})
	require.NoError(t, err)

	got, err := svc.EmbedBatch(context.Background(), []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)

	require.Len(t, f.calls, 2)
	assert.Equal(t, []string{"alpha", "gamma"}, f.calls[1], "cached text must not be re-sent")

	assert.Equal(t, vectorFor("alpha"), got[0])
	assert.Equal(t, vectorFor("beta"), got[1])
	assert.Equal(t, vectorFor("gamma"), got[2])
}

func TestEmbedBatchFullyCachedSkipsProvider(t *testing.T) {
	f := &fakeEmbedder{}
	svc := newTestService(f)

	_, err := svc.EmbedBatch(context.Background(), []string{"x", "y"})
	require.NoError(t, err)

	got, err := svc.EmbedBatch(context.Background(), []string{"y", "x"})
	require.NoError(t, err)

	assert.Len(t, f.calls, 1, "fully cached batch must not reach the provider")
	assert.Equal(t, vectorFor("y"), got[0])
	assert.Equal(t, vectorFor("x"), got[1])
}

func TestEmbedBatchProviderError(t *testing.T) {
	f := &fakeEmbedder{err: errors.New("connection refused")}
	svc := newTestService(f)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	f := &fakeEmbedder{badSize: true}
	svc := newTestService(f)

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	f := &fakeEmbedder{}
	svc := newTestService(f)

	got, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, f.calls)
}

func TestEmbedSingle(t *testing.T) {
	f := &fakeEmbedder{}
	svc := newTestService(f)

	got, err := svc.Embed(context.Background(), "solo")
	require.NoError(t, err)
	assert.Equal(t, vectorFor("solo"), got)
}
