// Package proclog writes one JSON-lines log file per extraction run.
package proclog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/smeshko/text-extractor/internal/entity"
)

type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailure        Status = "failure"
)

// RunLog is the log of a single extraction run.
type RunLog struct {
	*slog.Logger

	path  string
	start time.Time

	mu     sync.Mutex
	closer io.Closer
	done   bool
}

// Open creates extraction_<YYYYMMDD_HHMMSS>.log in dir and records the run start.
func Open(dir string, documents, keywords []string, now time.Time) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	base := filepath.Join(dir, "extraction_"+now.Format("20060102_150405"))

	var (
		f    *os.File
		path string
		err  error
	)
	for i := 1; ; i++ {
		path = base + ".log"
		if i > 1 {
			path = fmt.Sprintf("%s_%d.log", base, i)
		}
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create log file: %w", err)
		}
	}

	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := &RunLog{
		Logger: slog.New(h),
		path:   path,
		start:  now,
		closer: f,
	}
	l.Info("run.start",
		"documents", strings.Join(documents, ", "),
		"keywords", strings.Join(keywords, ", "),
	)
	return l, nil
}

// Discard returns a RunLog that writes nowhere and has no path.
func Discard() *RunLog {
	return &RunLog{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), start: time.Now()}
}

func (l *RunLog) Path() string { return l.path }

// Finalize records the summary and closes the file. Later calls are no-ops.
func (l *RunLog) Finalize(status Status, batch *entity.BatchResults) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return nil
	}
	l.done = true

	if batch != nil {
		for _, r := range batch.Results {
			l.Info("run.document",
				"document", r.Document.Filename,
				"successful", r.SuccessCount(),
				"not_found", r.NotFoundCount(),
				"ambiguous", r.AmbiguousCount(),
				"warnings", len(r.Warnings),
				"errors", len(r.Errors),
			)
		}
		l.Info("run.summary", "summary", batch.StatusSummary(), "batch_warnings", len(batch.Warnings))
	}
	l.Info("run.finish", "status", string(status), "elapsed_ms", time.Since(l.start).Milliseconds())

	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// StatusFor maps a batch outcome to a log status.
func StatusFor(batch *entity.BatchResults) Status {
	switch {
	case batch == nil || !batch.HasResults():
		return StatusFailure
	case batch.HasResultErrors() || batch.HasWarnings():
		return StatusPartialSuccess
	default:
		return StatusSuccess
	}
}
