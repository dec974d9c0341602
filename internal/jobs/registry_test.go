package jobs

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	r := NewRegistry()

	job := r.Create(map[string]any{"filename": "doc.pdf"})
	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, 0, job.Progress)
	assert.NotEqual(t, uuid.Nil, job.ID)

	got, ok := r.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, "doc.pdf", got.Meta["filename"])
}

func TestGetUnknown(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get(uuid.New())
	assert.False(t, ok)
}

func TestUpdateProgressNeverRegresses(t *testing.T) {
	r := NewRegistry()
	job := r.Create(nil)

	r.Update(job.ID, Patch{Status: StatusProcessing, Progress: 40})
	r.Update(job.ID, Patch{Progress: 25})

	got, _ := r.Get(job.ID)
	assert.Equal(t, StatusProcessing, got.Status)
	assert.Equal(t, 40, got.Progress, "progress must be monotonic")
}

func TestUpdateZeroValuesKeepFields(t *testing.T) {
	r := NewRegistry()
	job := r.Create(nil)

	r.Update(job.ID, Patch{Status: StatusProcessing, Progress: 30, Message: "embedding"})
	r.Update(job.ID, Patch{Progress: -1})

	got, _ := r.Get(job.ID)
	assert.Equal(t, StatusProcessing, got.Status)
	assert.Equal(t, 30, got.Progress)
	assert.Equal(t, "embedding", got.Message)
}

func TestComplete(t *testing.T) {
	r := NewRegistry()
	job := r.Create(nil)

	r.Complete(job.ID, map[string]any{"chunks": 7})

	got, _ := r.Get(job.ID)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 7, got.Result["chunks"])
}

func TestFailKeepsProgress(t *testing.T) {
	r := NewRegistry()
	job := r.Create(nil)

	r.Update(job.ID, Patch{Status: StatusProcessing, Progress: 55, Message: "storing vectors"})
	r.Fail(job.ID, errors.New("upsert timed out"))

	got, _ := r.Get(job.ID)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, 55, got.Progress)
	assert.Equal(t, "upsert timed out", got.Error)
	assert.Equal(t, "upsert timed out", got.Message, "stale pipeline message must not survive failure")
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := NewRegistry()
	job := r.Create(map[string]any{"source": "a.txt"})

	got, _ := r.Get(job.ID)
	got.Meta["source"] = "mutated"

	again, _ := r.Get(job.ID)
	assert.Equal(t, "a.txt", again.Meta["source"])
}

func TestCount(t *testing.T) {
	r := NewRegistry()
	a := r.Create(nil)
	b := r.Create(nil)
	r.Create(nil)

	r.Update(a.ID, Patch{Status: StatusProcessing})
	r.Complete(b.ID, nil)

	counts := r.Count()
	assert.Equal(t, 1, counts[StatusPending])
	assert.Equal(t, 1, counts[StatusProcessing])
	assert.Equal(t, 1, counts[StatusCompleted])
}

func TestConcurrentUpdates(t *testing.T) {
	r := NewRegistry()
	job := r.Create(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			r.Update(job.ID, Patch{Progress: p * 5})
			r.Get(job.ID)
		}(i)
	}
	wg.Wait()

	got, _ := r.Get(job.ID)
	assert.Equal(t, 95, got.Progress)
}
