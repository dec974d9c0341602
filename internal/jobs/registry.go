package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a background job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is a snapshot of one tracked background task. Progress runs 0 to
// 100 and never moves backwards; a failed job keeps the last progress
// it reached.
type Job struct {
	ID        uuid.UUID      `json:"jobId"`
	Status    Status         `json:"status"`
	Progress  int            `json:"progress"`
	Message   string         `json:"message,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Patch carries a partial update. Zero values mean "keep": an empty
// Status or Message is not applied, and a negative Progress leaves the
// current value in place.
type Patch struct {
	Status   Status
	Progress int
	Message  string
	Result   map[string]any
}

// Registry tracks jobs in process memory. Reads return deep copies so
// callers never observe a job mid-update.
type Registry struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[uuid.UUID]*Job)}
}

// Create registers a new pending job and returns its snapshot.
func (r *Registry) Create(meta map[string]any) Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	job := &Job{
		ID:        uuid.New(),
		Status:    StatusPending,
		Progress:  0,
		Meta:      meta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.jobs[job.ID] = job
	return snapshot(job)
}

// Get returns a snapshot of the job, or false if the ID is unknown.
func (r *Registry) Get(id uuid.UUID) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return snapshot(job), true
}

// Update applies a patch to the job. Progress is clamped so it cannot
// regress. Unknown IDs are ignored.
func (r *Registry) Update(id uuid.UUID, p Patch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}
	if p.Status != "" {
		job.Status = p.Status
	}
	if p.Progress >= 0 && p.Progress > job.Progress {
		job.Progress = p.Progress
	}
	if p.Message != "" {
		job.Message = p.Message
	}
	if p.Result != nil {
		job.Result = p.Result
	}
	job.UpdatedAt = time.Now()
}

// Complete marks the job finished at 100% with its result payload.
func (r *Registry) Complete(id uuid.UUID, result map[string]any) {
	r.Update(id, Patch{
		Status:   StatusCompleted,
		Progress: 100,
		Message:  "completed",
		Result:   result,
	})
}

// Fail marks the job failed, keeping whatever progress it had reached.
func (r *Registry) Fail(id uuid.UUID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}
	job.Status = StatusFailed
	job.Error = err.Error()
	job.Message = err.Error()
	job.UpdatedAt = time.Now()
}

// Count returns how many jobs are in each status.
func (r *Registry) Count() map[Status]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[Status]int)
	for _, job := range r.jobs {
		counts[job.Status]++
	}
	return counts
}

func snapshot(job *Job) Job {
	out := *job
	out.Meta = copyMap(job.Meta)
	out.Result = copyMap(job.Result)
	return out
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
