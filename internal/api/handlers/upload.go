package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adrigdeva/ragchat/internal/config"
	"github.com/adrigdeva/ragchat/internal/ingest"
	"github.com/adrigdeva/ragchat/internal/jobs"
	"github.com/adrigdeva/ragchat/internal/vectorstore"
)

// Collection is the slice of the vector store the upload surface needs.
type Collection interface {
	CollectionInfo(ctx context.Context) (vectorstore.CollectionInfo, error)
	DeleteBySource(ctx context.Context, source string) (int64, error)
}

type UploadHandler struct {
	pipeline *ingest.Pipeline
	registry *jobs.Registry
	store    Collection
	upload   config.UploadConfig
}

func NewUploadHandler(pipeline *ingest.Pipeline, registry *jobs.Registry, store Collection, upload config.UploadConfig) *UploadHandler {
	return &UploadHandler{pipeline: pipeline, registry: registry, store: store, upload: upload}
}

func (h *UploadHandler) authorized(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(h.upload.Password)) == 1
}

// multipartOverhead covers form boundaries and non-file fields on top
// of the file size limit.
const multipartOverhead = 1 << 20

// Document accepts a multipart upload and returns 202 with the job ID.
// The form carries "password" and "file" fields. The request body is
// capped at the transport so an oversized upload is cut off instead of
// being spooled to disk before rejection.
func (h *UploadHandler) Document(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds maximum size of %d bytes", h.upload.MaxFileSize))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if !h.authorized(r.FormValue("password")) {
		writeError(w, http.StatusUnauthorized, "invalid upload password")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp(h.upload.TempDir, "upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	size, err := io.Copy(tmp, file)
	tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	job, err := h.pipeline.SubmitDocument(header.Filename, tmp.Name(), size)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"jobId":    job.ID,
		"filename": header.Filename,
		"status":   job.Status,
	})
}

type textUploadRequest struct {
	Password string `json:"password"`
	Source   string `json:"source"`
	Text     string `json:"text"`
}

// Text ingests raw text without a file, for API clients.
func (h *UploadHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req textUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.authorized(req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid upload password")
		return
	}

	job, err := h.pipeline.SubmitText(req.Source, req.Text)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"jobId":  job.ID,
		"source": req.Source,
		"status": job.Status,
	})
}

// Status returns the job snapshot for polling clients.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *UploadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{"jobs": h.registry.Count()}
	if collection, err := h.store.CollectionInfo(r.Context()); err == nil {
		stats["collection"] = collection
	} else {
		stats["collection"] = map[string]string{"error": err.Error()}
	}
	writeJSON(w, http.StatusOK, stats)
}

// DeleteSource removes every stored point for one source document. This
// is the manual remedy for the duplicate points that re-ingesting a
// document creates.
func (h *UploadHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r.Header.Get("X-Upload-Password")) {
		writeError(w, http.StatusUnauthorized, "invalid upload password")
		return
	}

	source := chi.URLParam(r, "source")
	if source == "" {
		writeError(w, http.StatusBadRequest, "source required")
		return
	}

	deleted, err := h.store.DeleteBySource(r.Context(), source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": source, "deleted": deleted})
}

func (h *UploadHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var verr *ingest.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
