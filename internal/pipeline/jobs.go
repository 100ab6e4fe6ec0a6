package pipeline

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// JobStatus represents the state of a build job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusDiscovering JobStatus = "discovering"
	StatusResolving   JobStatus = "resolving"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
)

// Job tracks one build of a source tree into an output directory.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	SrcDir string `json:"src_dir"`
	OutDir string `json:"out_dir"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	sink     Sink
	warnings []string
	errors   []string
}

// Progress tracks build progress.
type Progress struct {
	Total     int      `json:"total"`
	Processed int      `json:"processed"`
	Written   int      `json:"written"`
	Unchanged int      `json:"unchanged"`
	Warnings  []string `json:"warnings"`
	Errors    []string `json:"errors"`
}

// NewJob creates a queued build job with a fresh ID.
func NewJob(srcDir, outDir string) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		SrcDir:    srcDir,
		OutDir:    outDir,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddWarning records a resolution warning.
func (j *Job) AddWarning(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, msg)
	j.Progress.Warnings = j.warnings
	j.UpdatedAt = time.Now()
}

// SetTotal records the number of discovered pages.
func (j *Job) SetTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Total = n
	j.UpdatedAt = time.Now()
}

// IncrProcessed counts a page that was attempted.
func (j *Job) IncrProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Processed++
	j.UpdatedAt = time.Now()
}

// RecordOutput counts an emitted page as written or unchanged.
func (j *Job) RecordOutput(written bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if written {
		j.Progress.Written++
	} else {
		j.Progress.Unchanged++
	}
	j.UpdatedAt = time.Now()
}

// SetSink overrides where the job's output goes. By default pages are
// written under OutDir.
func (j *Job) SetSink(s Sink) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sink = s
}

// Sink returns the job's output destination.
func (j *Job) Sink() Sink {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.sink == nil {
		return &DirSink{Dir: j.OutDir}
	}
	return j.sink
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	SrcDir   string    `json:"src_dir"`
	OutDir   string    `json:"out_dir"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:     j.ID,
		SrcDir: j.SrcDir,
		OutDir: j.OutDir,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			Total:     j.Progress.Total,
			Processed: j.Progress.Processed,
			Written:   j.Progress.Written,
			Unchanged: j.Progress.Unchanged,
			Warnings:  append([]string{}, j.warnings...),
			Errors:    append([]string{}, j.errors...),
		},
	}
}

// ContentHashHex computes the BLAKE3 digest of content as a hex string.
func ContentHashHex(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
