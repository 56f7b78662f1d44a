package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusDownloading JobStatus = "downloading"
	StatusParsing     JobStatus = "parsing"
	StatusOutlining   JobStatus = "outlining"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Terminal reports whether no further transitions follow s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Source says where a job's PDF comes from.
type Source string

const (
	SourceUpload Source = "upload"
	SourceArxiv  Source = "arxiv"
)

// Job tracks the ingestion of one paper into a session.
type Job struct {
	mu sync.Mutex

	ID        string `json:"job_id"`
	SessionID string `json:"session_id"`
	Source    Source `json:"source"`
	ArxivID   string `json:"arxiv_id,omitempty"`
	Filename  string `json:"filename"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
	done     chan struct{}
}

// Progress counts what the job has extracted so far.
type Progress struct {
	TotalPages int      `json:"total_pages"`
	Spans      int      `json:"spans"`
	Sections   int      `json:"sections"`
	Figures    int      `json:"figures"`
	References int      `json:"references"`
	Attempts   int      `json:"download_attempts,omitempty"`
	Errors     []string `json:"errors"`
}

// NewUploadJob returns a queued job for an uploaded file.
func NewUploadJob(filename string, data []byte) *Job {
	j := newJob(SourceUpload, filename)
	j.fileData = data
	return j
}

// NewArxivJob returns a queued job that downloads the PDF for arxivID.
func NewArxivJob(arxivID string) *Job {
	j := newJob(SourceArxiv, fmt.Sprintf("arxiv-%s.pdf", arxivID))
	j.ArxivID = arxivID
	return j
}

func newJob(src Source, filename string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		SessionID: uuid.NewString(),
		Source:    src,
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		done:      make(chan struct{}),
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs that have not changed within the TTL.
// Running jobs are kept regardless of age.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// doneLocked returns the completion channel, creating it for jobs built
// without a constructor.
func (j *Job) doneLocked() chan struct{} {
	if j.done == nil {
		j.done = make(chan struct{})
	}
	return j.done
}

// Done is closed once the job reaches a terminal status.
func (j *Job) Done() <-chan struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.doneLocked()
}

// SetStatus updates job status atomically. Terminal statuses are final.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Terminal() {
		return
	}
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	if status.Terminal() {
		j.fileData = nil
		close(j.doneLocked())
	}
}

// Fail records err and marks the job failed during phase.
func (j *Job) Fail(phase string, err error) {
	j.AddError(fmt.Sprintf("%s: %s", phase, err))
	j.SetStatus(StatusFailed, phase)
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetExtracted records the size of the parsed document.
func (j *Job) SetExtracted(pages, spans int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = pages
	j.Progress.Spans = spans
	j.UpdatedAt = time.Now()
}

// SetOutlined records what the outline and reference list found.
func (j *Job) SetOutlined(sections, figures, refs int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Sections = sections
	j.Progress.Figures = figures
	j.Progress.References = refs
	j.UpdatedAt = time.Now()
}

func (j *Job) setContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// IncrAttempts counts one download attempt.
func (j *Job) IncrAttempts() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Attempts++
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	SessionID   string    `json:"session_id"`
	Source      Source    `json:"source"`
	ArxivID     string    `json:"arxiv_id,omitempty"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.Progress
	progress.Errors = append([]string{}, j.errors...)
	return JobSnapshot{
		ID:          j.ID,
		SessionID:   j.SessionID,
		Source:      j.Source,
		ArxivID:     j.ArxivID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Progress:    progress,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
