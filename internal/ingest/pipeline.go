package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/adrigdeva/ragchat/internal/config"
	"github.com/adrigdeva/ragchat/internal/jobs"
	"github.com/adrigdeva/ragchat/internal/vectorstore"
	"github.com/adrigdeva/ragchat/pkg/chunker"
	"github.com/adrigdeva/ragchat/pkg/textextract"
)

// BatchEmbedder is the slice of the embedding service ingestion needs.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Upserter is the slice of the vector store ingestion needs.
type Upserter interface {
	Upsert(ctx context.Context, points []vectorstore.Point, wait bool) error
}

// Progress checkpoints across an ingestion run. Embedding advances
// linearly between embedStart and embedEnd as batches finish.
const (
	progressRead    = 5
	progressExtract = 15
	progressChunk   = 25
	embedStart      = 25
	embedEnd        = 85
	progressPoints  = 88
	progressUpsert  = 92
)

// Pipeline runs document ingestion as detached background jobs. The
// submitting request returns as soon as validation passes and a job is
// registered; everything after that is observable only through the job
// registry.
type Pipeline struct {
	registry *jobs.Registry
	embedder BatchEmbedder
	store    Upserter
	pool     *ants.Pool
	upload   config.UploadConfig
	cfg      config.IngestConfig
	logger   *slog.Logger
}

func NewPipeline(registry *jobs.Registry, embedder BatchEmbedder, store Upserter, pool *ants.Pool, upload config.UploadConfig, cfg config.IngestConfig) *Pipeline {
	return &Pipeline{
		registry: registry,
		embedder: embedder,
		store:    store,
		pool:     pool,
		upload:   upload,
		cfg:      cfg,
		logger:   slog.Default().With("component", "ingest"),
	}
}

// SubmitDocument validates the uploaded file synchronously, registers a
// job, and schedules the ingestion run. The temp file at path is owned
// by the job from here on and is removed when the run finishes, on
// success and failure alike.
func (p *Pipeline) SubmitDocument(filename, path string, size int64) (jobs.Job, error) {
	if err := p.validate(filename, size); err != nil {
		os.Remove(path)
		return jobs.Job{}, err
	}

	job := p.registry.Create(map[string]any{
		"filename": filename,
		"size":     size,
		"type":     "document",
	})

	if err := p.pool.Submit(func() { p.runDocument(job.ID, filename, path) }); err != nil {
		os.Remove(path)
		p.registry.Fail(job.ID, fmt.Errorf("schedule job: %w", err))
		return jobs.Job{}, fmt.Errorf("schedule ingestion: %w", err)
	}
	return job, nil
}

// SubmitText ingests raw text under the given source name, skipping
// file handling entirely.
func (p *Pipeline) SubmitText(source, text string) (jobs.Job, error) {
	if strings.TrimSpace(source) == "" {
		return jobs.Job{}, validationErr("source", "source name is required")
	}
	if strings.TrimSpace(text) == "" {
		return jobs.Job{}, validationErr("text", "text is required")
	}

	job := p.registry.Create(map[string]any{
		"filename": source,
		"size":     int64(len(text)),
		"type":     "text",
	})

	if err := p.pool.Submit(func() { p.runText(job.ID, source, text) }); err != nil {
		p.registry.Fail(job.ID, fmt.Errorf("schedule job: %w", err))
		return jobs.Job{}, fmt.Errorf("schedule ingestion: %w", err)
	}
	return job, nil
}

func (p *Pipeline) validate(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return validationErr("filename", "filename is required")
	}
	if size <= 0 {
		return validationErr("file", "file is empty")
	}
	if size > p.upload.MaxFileSize {
		return validationErr("file", "file exceeds maximum size of %d bytes", p.upload.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range p.upload.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return validationErr("file", "extension %q not allowed (allowed: %s)",
		ext, strings.Join(p.upload.AllowedExtensions, ", "))
}

func (p *Pipeline) runDocument(jobID uuid.UUID, filename, path string) {
	defer os.Remove(path)

	started := time.Now()
	ctx := context.Background()
	p.registry.Update(jobID, jobs.Patch{
		Status:   jobs.StatusProcessing,
		Progress: -1,
		Message:  "reading file",
	})

	file, err := os.Open(path)
	if err != nil {
		p.fail(jobID, filename, fmt.Errorf("read file: %w", err))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		p.fail(jobID, filename, fmt.Errorf("stat file: %w", err))
		return
	}
	p.registry.Update(jobID, jobs.Patch{Progress: progressRead, Message: "extracting text"})

	extracted, err := textextract.Extract(file, info.Size(), strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		p.fail(jobID, filename, fmt.Errorf("extract text: %w", err))
		return
	}
	p.registry.Update(jobID, jobs.Patch{Progress: progressExtract, Message: "chunking"})

	p.ingestText(ctx, jobID, filename, extracted.Content, started)
}

func (p *Pipeline) runText(jobID uuid.UUID, source, text string) {
	started := time.Now()
	p.registry.Update(jobID, jobs.Patch{
		Status:   jobs.StatusProcessing,
		Progress: progressExtract,
		Message:  "chunking",
	})
	p.ingestText(context.Background(), jobID, source, textextract.CleanText(text), started)
}

// ingestText is the shared tail of both entry points: chunk, embed in
// fixed-size batches, build points, upsert.
func (p *Pipeline) ingestText(ctx context.Context, jobID uuid.UUID, source, text string, started time.Time) {
	chunks := chunker.Split(text, chunker.Options{Size: p.cfg.ChunkSize, Overlap: p.cfg.ChunkOverlap})
	if len(chunks) == 0 {
		p.fail(jobID, source, fmt.Errorf("no text content found"))
		return
	}
	p.registry.Update(jobID, jobs.Patch{Progress: progressChunk, Message: "embedding"})

	vectors, err := p.embedChunks(ctx, jobID, chunks)
	if err != nil {
		p.fail(jobID, source, err)
		return
	}
	p.registry.Update(jobID, jobs.Patch{Progress: progressPoints, Message: "building points"})

	uploadedAt := time.Now()
	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		points[i] = vectorstore.Point{
			ID:     uuid.New(),
			Vector: vectors[i],
			Payload: vectorstore.Payload{
				Text:        c.Text,
				Source:      source,
				ChunkIndex:  c.Index,
				TotalChunks: c.Total,
				UploadedAt:  uploadedAt,
			},
		}
	}
	p.registry.Update(jobID, jobs.Patch{Progress: progressUpsert, Message: "storing vectors"})

	if err := p.store.Upsert(ctx, points, true); err != nil {
		p.fail(jobID, source, fmt.Errorf("store vectors: %w", err))
		return
	}

	p.registry.Complete(jobID, map[string]any{
		"source":   source,
		"chunks":   len(chunks),
		"points":   len(points),
		"duration": time.Since(started).String(),
	})
	p.logger.Info("document ingested", "job", jobID, "source", source, "chunks", len(chunks))
}

// embedChunks embeds sequentially in batches, moving progress linearly
// across the embedding phase after each batch.
func (p *Pipeline) embedChunks(ctx context.Context, jobID uuid.UUID, chunks []chunker.Chunk) ([][]float32, error) {
	batchSize := p.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", start/batchSize, err)
		}
		vectors = append(vectors, batch...)

		progress := embedStart + (embedEnd-embedStart)*end/len(chunks)
		p.registry.Update(jobID, jobs.Patch{
			Progress: progress,
			Message:  fmt.Sprintf("embedded %d/%d chunks", end, len(chunks)),
		})
	}
	return vectors, nil
}

func (p *Pipeline) fail(jobID uuid.UUID, source string, err error) {
	p.registry.Fail(jobID, err)
	p.logger.Error("ingestion failed", "job", jobID, "source", source, "error", err)
}
