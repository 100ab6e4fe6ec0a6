package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgallion1/templext/internal/fsutil"
	"github.com/dgallion1/templext/internal/report"
)

// Sink receives resolved pages by path relative to the source root.
type Sink interface {
	// Write stores data and reports whether anything changed.
	Write(rel string, data []byte) (bool, error)
}

// DirSink mirrors pages under Dir. Pages whose content hash matches the file
// already on disk are left alone.
type DirSink struct {
	Dir string
}

func (s *DirSink) Write(rel string, data []byte) (bool, error) {
	dst := filepath.Join(s.Dir, filepath.FromSlash(rel))
	if existing, err := os.ReadFile(dst); err == nil && ContentHashHex(existing) == ContentHashHex(data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", rel, err)
	}
	return true, nil
}

// WorkerOptions selects which pages a Worker builds.
type WorkerOptions struct {
	Extensions         []string
	Ignore             []string
	MaxConcurrentFiles int
}

// Worker builds every page of a job's source tree.
type Worker struct {
	proc *Processor
	log  *slog.Logger
	opts WorkerOptions
}

func NewWorker(proc *Processor, log *slog.Logger, opts WorkerOptions) *Worker {
	if opts.MaxConcurrentFiles <= 0 {
		opts.MaxConcurrentFiles = 1
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".html"}
	}
	return &Worker{proc: proc, log: log, opts: opts}
}

// Process runs a full build for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "src", job.SrcDir)

	// Phase 1: Discover
	job.SetStatus(StatusDiscovering, "discovering")
	files, err := fsutil.FindFiles(job.SrcDir, w.opts.Extensions, w.opts.Ignore)
	if err != nil {
		log.Error("discovery failed", "error", err)
		job.AddError(fmt.Sprintf("discover: %s", err))
		job.SetStatus(StatusFailed, "discovering")
		return
	}
	job.SetTotal(len(files))
	log.Info("discovered pages", "pages", len(files))

	if len(files) == 0 {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 2: Resolve pages with bounded concurrency.
	job.SetStatus(StatusResolving, "resolving")
	sink := job.Sink()
	type fileResult struct {
		rel string
		err error
	}
	results := make(chan fileResult, len(files))
	sem := make(chan struct{}, w.opts.MaxConcurrentFiles)

	launched := 0
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		launched++
		go func(path string) {
			defer func() { <-sem }()
			rel, err := w.processFile(ctx, job, sink, path, log)
			results <- fileResult{rel: rel, err: err}
		}(path)
	}

	hadErrors := false
	emitted := 0
	for range launched {
		r := <-results
		job.IncrProcessed()
		if r.err != nil {
			log.Error("page failed", "path", r.rel, "error", r.err)
			job.AddError(fmt.Sprintf("%s: %s", r.rel, r.err))
			hadErrors = true
			continue
		}
		emitted++
	}
	if launched < len(files) {
		job.AddError(fmt.Sprintf("cancelled: %d pages not processed", len(files)-launched))
		hadErrors = true
	}

	log.Info("build complete", "emitted", emitted, "total", len(files), "errors", hadErrors)

	switch {
	case hadErrors && emitted > 0:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "resolving")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) processFile(ctx context.Context, job *Job, sink Sink, path string, log *slog.Logger) (string, error) {
	rel, err := filepath.Rel(job.SrcDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	data, err := os.ReadFile(path)
	if err != nil {
		return rel, fmt.Errorf("read: %w", err)
	}

	res, err := w.proc.Process(ctx, Unit{Path: path, Contents: data}, report.NewLogger(log.With("path", rel)))
	for _, msg := range res.Warnings {
		job.AddWarning(rel + ": " + msg)
	}
	if err != nil {
		return rel, err
	}

	written, err := sink.Write(rel, res.Contents)
	if err != nil {
		return rel, err
	}
	job.RecordOutput(written)
	return rel, nil
}

// MemorySink keeps pages in memory, keyed by relative path.
type MemorySink struct {
	mu    sync.Mutex
	pages map[string][]byte
}

func NewMemorySink() *MemorySink {
	return &MemorySink{pages: make(map[string][]byte)}
}

func (s *MemorySink) Write(rel string, data []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.pages[rel]; ok && bytes.Equal(old, data) {
		return false, nil
	}
	s.pages[rel] = append([]byte(nil), data...)
	return true, nil
}

// Pages returns a copy of the stored pages.
func (s *MemorySink) Pages() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.pages))
	for k, v := range s.pages {
		out[k] = v
	}
	return out
}
