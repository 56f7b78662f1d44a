package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/learnaloud/internal/outline"
	"github.com/dgallion1/learnaloud/internal/parser"
	"github.com/dgallion1/learnaloud/internal/references"
	"github.com/dgallion1/learnaloud/internal/session"
	"github.com/dgallion1/learnaloud/internal/uploads"
)

// Fetcher downloads paper PDFs by arXiv ID.
type Fetcher interface {
	Download(ctx context.Context, id string) ([]byte, error)
}

// Worker processes a single ingestion job.
type Worker struct {
	sessions   session.Store
	uploads    *uploads.Dir
	parser     parser.Parser
	fetcher    Fetcher
	outlineCfg outline.Config
	log        *slog.Logger
	backoff    func(attempt int) time.Duration
}

func NewWorker(sessions session.Store, up *uploads.Dir, p parser.Parser, fetcher Fetcher, outlineCfg outline.Config, log *slog.Logger) *Worker {
	return &Worker{
		sessions:   sessions,
		uploads:    up,
		parser:     p,
		fetcher:    fetcher,
		outlineCfg: outlineCfg,
		log:        log,
		backoff:    Backoff,
	}
}

// Process runs the full ingest pipeline for a job and always leaves it in a
// terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "session_id", job.SessionID, "source", job.Source)
	start := time.Now()

	data := job.FileData()
	if job.Source == SourceArxiv {
		job.SetStatus(StatusDownloading, "downloading")
		var err error
		data, err = w.download(ctx, job, log)
		if err != nil {
			log.Error("download failed", "arxiv_id", job.ArxivID, "error", err)
			job.Fail("downloading", err)
			return
		}
		log.Info("downloaded paper", "arxiv_id", job.ArxivID, "bytes", len(data))
	}
	if len(data) == 0 {
		job.Fail("parsing", errors.New("empty file"))
		return
	}
	job.setContentHash(ContentHashHex(data))

	// Phase 1: Save
	path, _, err := w.uploads.Save(job.SessionID, bytes.NewReader(data))
	if err != nil {
		log.Error("save upload failed", "error", err)
		job.Fail("storing", err)
		return
	}
	// Later failures release the saved file before the job is marked failed.
	fail := func(phase string, err error) {
		if rerr := w.uploads.Remove(job.SessionID); rerr != nil {
			log.Warn("remove upload failed", "error", rerr)
		}
		job.Fail(phase, err)
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	if n, err := parser.PageCount(path); err == nil {
		job.SetExtracted(n, 0)
	}
	doc, err := w.parser.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		fail("parsing", err)
		return
	}
	job.SetExtracted(doc.TotalPages(), doc.SpanCount())
	log.Info("parsed document", "pages", doc.TotalPages(), "spans", doc.SpanCount())

	// Phase 3: Outline
	job.SetStatus(StatusOutlining, "outlining")
	out, err := outline.Build(doc, w.outlineCfg)
	if err != nil {
		log.Error("outline failed", "error", err)
		fail("outlining", err)
		return
	}
	refs, err := references.List(doc)
	if err != nil {
		log.Error("reference listing failed", "error", err)
		fail("outlining", err)
		return
	}
	job.SetOutlined(len(out.Sections), len(out.Figures), len(refs))

	// Phase 4: Store
	job.SetStatus(StatusStoring, "storing")
	sess := session.New(job.SessionID, job.Filename, path, doc, out)
	if err := w.sessions.Put(ctx, sess); err != nil {
		log.Error("store session failed", "error", err)
		fail("storing", err)
		return
	}

	log.Info("ingest complete",
		"pages", doc.TotalPages(),
		"sections", len(out.Sections),
		"figures", len(out.Figures),
		"references", len(refs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	job.SetStatus(StatusCompleted, "done")
}

// download fetches the job's paper, retrying transient failures.
func (w *Worker) download(ctx context.Context, job *Job, log *slog.Logger) ([]byte, error) {
	if w.fetcher == nil {
		return nil, errors.New("arxiv downloads are not configured")
	}
	var lastErr error
	for attempt := range MaxRetries {
		job.IncrAttempts()
		data, err := w.fetcher.Download(ctx, job.ArxivID)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		delay := retryDelay(err, attempt, w.backoff)
		log.Warn("retryable download error", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", job.Snapshot().Progress.Attempts, lastErr)
}
