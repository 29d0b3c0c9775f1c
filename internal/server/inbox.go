package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smeshko/text-extractor/internal/async"
	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
	"github.com/smeshko/text-extractor/internal/ingest"
	"github.com/smeshko/text-extractor/internal/state"
)

// SessionRunner is the part of *session.Session the inbox drives.
type SessionRunner interface {
	SelectDocuments(ctx context.Context, paths []string) ([]entity.Document, error)
	AddKeyword(ctx context.Context, text string) error
	State() state.ApplicationState
	Run(ctx context.Context, opts ...async.PollerOption) (state.ApplicationState, error)
}

// ErrDuplicate is returned for files whose content was already processed.
var ErrDuplicate = errors.New("duplicate content")

// InboxService extracts a fixed keyword list from every new document in a
// watched directory, one document at a time.
type InboxService struct {
	session  SessionRunner
	deduper  *ingest.Deduper
	keywords []string
	logger   *slog.Logger
}

func NewInboxService(s SessionRunner, keywords []string, logger *slog.Logger) *InboxService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InboxService{
		session:  s,
		deduper:  ingest.NewDeduper(),
		keywords: keywords,
		logger:   logger,
	}
}

// Run processes paths until the channel closes or ctx ends. Watcher errors
// are logged and do not stop the loop.
func (s *InboxService) Run(ctx context.Context, paths <-chan string, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Error("inbox.watch.failed", "error", err)
		case path, ok := <-paths:
			if !ok {
				return nil
			}
			if _, err := s.ProcessFile(ctx, path); err != nil && !errors.Is(err, ErrDuplicate) {
				s.logger.Warn("inbox.file.failed", "path", path, "error", err)
			}
		}
	}
}

// ProcessFile runs one extraction over path and returns the final state.
func (s *InboxService) ProcessFile(ctx context.Context, path string) (state.ApplicationState, error) {
	hash, first, dup, err := s.deduper.Seen(path)
	if err != nil {
		return state.ApplicationState{}, fmt.Errorf("hash %s: %w", path, err)
	}
	if dup {
		s.logger.Info("inbox.file.duplicate", "path", path, "first_path", first)
		return state.ApplicationState{}, ErrDuplicate
	}

	snap, err := s.process(ctx, path)
	if err != nil || snap.IsProcessing {
		// let a later event retry the same content
		s.deduper.Forget(hash)
	}
	return snap, err
}

func (s *InboxService) process(ctx context.Context, path string) (state.ApplicationState, error) {
	if err := s.ensureKeywords(ctx); err != nil {
		return s.session.State(), err
	}
	docs, err := s.session.SelectDocuments(ctx, []string{path})
	if err != nil {
		if errors.Is(err, common.ErrExtractionInProgress) {
			s.logger.Warn("inbox.rejected", "path", path, "reason", "Extraction already in progress")
		}
		return s.session.State(), err
	}
	if len(docs) == 1 && !docs[0].IsValid {
		return s.session.State(), common.NewAppError(common.CodeInput, docs[0].ErrorMessage, common.ErrInvalidInput)
	}

	s.logger.Info("inbox.file.started", "path", path)
	snap, err := s.session.Run(ctx, async.WithProgressHandler(func(m async.Message) {
		s.logger.Debug("inbox.progress", "path", path, "text", m.Text)
	}))
	if err != nil {
		if errors.Is(err, common.ErrExtractionInProgress) {
			s.logger.Warn("inbox.rejected", "path", path, "reason", "Extraction already in progress")
		}
		return snap, err
	}
	if snap.Results == nil {
		return snap, common.NewAppError(common.CodeInput, lastError(snap), nil)
	}
	s.logger.Info("inbox.file.finished", "path", path, "status", snap.Status, "summary", snap.Results.StatusSummary())
	return snap, nil
}

func (s *InboxService) ensureKeywords(ctx context.Context) error {
	if snap := s.session.State(); snap.HasKeywords() {
		return nil
	}
	for _, kw := range s.keywords {
		if err := s.session.AddKeyword(ctx, kw); err != nil && !errors.Is(err, common.ErrDuplicateKeyword) {
			return err
		}
	}
	return nil
}

func lastError(snap state.ApplicationState) string {
	if n := len(snap.ErrorMessages); n > 0 {
		return snap.ErrorMessages[n-1]
	}
	return "extraction failed"
}
