package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/learnaloud/internal/config"
	"github.com/dgallion1/learnaloud/internal/parser"
	"github.com/dgallion1/learnaloud/internal/session"
	"github.com/dgallion1/learnaloud/internal/uploads"
)

var (
	// ErrQueueFull is returned by Submit when the job queue has no room.
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("pipeline stopped")
	// ErrJobNotFound is returned for unknown or expired job IDs.
	ErrJobNotFound = errors.New("job not found")
)

// Deps are the collaborators the pipeline writes into.
type Deps struct {
	Sessions session.Store
	Uploads  *uploads.Dir
	// Parser defaults to a PDF parser configured from Config.
	Parser parser.Parser
	// Fetcher is optional; arXiv jobs fail without it.
	Fetcher Fetcher
}

// Orchestrator manages the paper ingestion pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	sessions session.Store
	uploads  *uploads.Dir
	parser   parser.Parser
	fetcher  Fetcher
	log      *slog.Logger
	cfg      config.Config
	backoff  func(int) time.Duration

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, deps Deps, log *slog.Logger) *Orchestrator {
	p := deps.Parser
	if p == nil {
		p = parser.NewPDFParser(parser.Options{
			Validate:          cfg.PDFValidate,
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
		})
	}
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		sessions: deps.Sessions,
		uploads:  deps.Uploads,
		parser:   p,
		fetcher:  deps.Fetcher,
		log:      log,
		cfg:      cfg,
		backoff:  Backoff,
	}
}

// Start launches worker goroutines and the cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.sessions, o.uploads, o.parser, o.fetcher, o.cfg.Outline, o.log)
			w.backoff = o.backoff
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	interval := o.cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.Cleanup(workerCtx)
			}
		}
	}()
}

// Cleanup evicts finished jobs and expired sessions along with their uploads.
func (o *Orchestrator) Cleanup(ctx context.Context) {
	if n := o.jobs.Cleanup(); n > 0 {
		o.log.Info("evicted jobs", "count", n)
	}
	ids, err := o.sessions.Cleanup(ctx)
	if err != nil {
		o.log.Error("session cleanup failed", "error", err)
		return
	}
	for _, id := range ids {
		if err := o.uploads.Remove(id); err != nil {
			o.log.Warn("remove expired upload failed", "session_id", id, "error", err)
		}
	}
	if len(ids) > 0 {
		o.log.Info("expired sessions", "count", len(ids))
	}
}

// Stop gracefully shuts down the pipeline. Queued jobs that never ran are
// marked failed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
	for job := range o.queue {
		job.Fail("queued", ErrStopped)
	}
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// Wait blocks until the job finishes or ctx ends.
func (o *Orchestrator) Wait(ctx context.Context, id string) (JobSnapshot, error) {
	job := o.jobs.Get(id)
	if job == nil {
		return JobSnapshot{}, ErrJobNotFound
	}
	select {
	case <-job.Done():
		return job.Snapshot(), nil
	case <-ctx.Done():
		return job.Snapshot(), ctx.Err()
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// JobCount returns the number of tracked jobs.
func (o *Orchestrator) JobCount() int {
	return o.jobs.Len()
}
