package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/async"
	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
	"github.com/smeshko/text-extractor/internal/metrics"
	"github.com/smeshko/text-extractor/internal/parser"
	"github.com/smeshko/text-extractor/internal/proclog"
	"github.com/smeshko/text-extractor/internal/repository"
	"github.com/smeshko/text-extractor/internal/state"
)

// Progress texts reported by an extraction run.
const (
	ProgressParsing    = "Parsing document..."
	ProgressExtracting = "Extracting data..."
	ProgressOutput     = "Generating output..."
	ProgressComplete   = "Complete!"
)

// DocumentParser validates and parses selected documents.
type DocumentParser interface {
	Validate(ctx context.Context, path string) error
	ValidateDocument(ctx context.Context, doc *entity.Document) error
	Parse(ctx context.Context, path string) (*parser.ParseResult, error)
}

// Extractor turns parsed pages into results.
type Extractor interface {
	Extract(ctx context.Context, pages []entity.PageContent, keywords []string, doc entity.Document) *entity.ExtractionResults
}

// ReportWriter persists the outcome of a run.
type ReportWriter interface {
	WriteBatch(ctx context.Context, b *entity.BatchResults) ([]string, error)
}

var (
	ErrNoHistory = errors.New("keyword history is not configured")
	ErrNoPresets = errors.New("keyword presets are not configured")
)

// Session drives one user's extraction workflow: document selection, the
// active keyword list and runs on the coordinator's worker.
type Session struct {
	manager  *state.Manager
	coord    *async.Coordinator
	docs     DocumentParser
	engine   Extractor
	output   ReportWriter
	history  repository.KeywordHistoryRepository
	presets  repository.PresetRepository
	metrics  *metrics.Metrics
	logDir   string
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Session)

func WithHistory(repo repository.KeywordHistoryRepository) Option {
	return func(s *Session) { s.history = repo }
}

func WithPresets(repo repository.PresetRepository) Option {
	return func(s *Session) { s.presets = repo }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLogDir enables per-run processing logs in dir.
func WithLogDir(dir string) Option {
	return func(s *Session) { s.logDir = dir }
}

func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(manager *state.Manager, coord *async.Coordinator, docs DocumentParser, engine Extractor, output ReportWriter, opts ...Option) *Session {
	s := &Session{
		manager:  manager,
		coord:    coord,
		docs:     docs,
		engine:   engine,
		output:   output,
		interval: 100 * time.Millisecond,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns a snapshot of the application state.
func (s *Session) State() state.ApplicationState { return s.manager.Snapshot() }

// Subscribe registers obs for state changes and returns its cancel func.
func (s *Session) Subscribe(obs state.Observer) func() { return s.manager.Subscribe(obs) }

// SelectDocuments replaces the selection with paths, validating each one.
// Invalid documents stay in the selection with their error message.
func (s *Session) SelectDocuments(ctx context.Context, paths []string) ([]entity.Document, error) {
	docs := make([]entity.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := entity.NewDocumentFromPath(path)
		if err != nil {
			docs = append(docs, s.unsupported(ctx, path, err))
			continue
		}
		if err := s.docs.ValidateDocument(ctx, &doc); err != nil {
			return nil, err
		}
		if !doc.IsValid {
			s.logger.Info("session.document.invalid", "document", doc.Filename, "reason", doc.ErrorMessage)
		}
		docs = append(docs, doc)
	}
	if err := s.manager.SetDocuments(docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Session) unsupported(ctx context.Context, path string, cause error) entity.Document {
	msg := cause.Error()
	if err := s.docs.Validate(ctx, path); err != nil {
		msg = parser.UserMessage(err)
	}
	return entity.Document{
		ID:           uuid.New(),
		Path:         path,
		Filename:     filepath.Base(path),
		State:        constants.DocumentInvalid,
		ErrorMessage: msg,
	}
}

// AddKeyword activates text and records it in the history.
func (s *Session) AddKeyword(ctx context.Context, text string) error {
	kw, err := entity.NewKeyword(text)
	if err != nil {
		return common.NewAppError(common.CodeValidation, err.Error(), common.ErrInvalidInput)
	}
	return s.activate(ctx, kw)
}

// AddKeywordFromHistory activates a keyword that must already be in the history.
func (s *Session) AddKeywordFromHistory(ctx context.Context, text string) error {
	if s.history == nil {
		return ErrNoHistory
	}
	kw, err := entity.NewKeyword(text)
	if err != nil {
		return common.NewAppError(common.CodeValidation, err.Error(), common.ErrInvalidInput)
	}
	ok, err := s.history.Contains(ctx, kw.Text)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: keyword %q is not in the history", common.ErrNotFound, kw.Text)
	}
	kw.IsHistorical = true
	return s.activate(ctx, kw)
}

func (s *Session) activate(ctx context.Context, kw entity.Keyword) error {
	if err := s.manager.AddKeyword(kw); err != nil {
		return err
	}
	if s.history == nil {
		return nil
	}
	// The keyword is already active; a history failure is only logged.
	if err := s.history.Add(ctx, kw.Text); err != nil {
		s.logger.Warn("session.history.add.failed", "keyword", kw.Text, "err", err)
	}
	return nil
}

func (s *Session) RemoveKeyword(text string) error { return s.manager.RemoveKeyword(text) }

func (s *Session) ClearKeywords() error { return s.manager.ClearKeywords() }

// History lists previously used keywords, oldest first.
func (s *Session) History(ctx context.Context) ([]string, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.List(ctx)
}

// SavePreset stores the active keywords under name.
func (s *Session) SavePreset(ctx context.Context, name string) (*repository.Preset, error) {
	if s.presets == nil {
		return nil, ErrNoPresets
	}
	keywords := entity.KeywordTexts(s.manager.Snapshot().ActiveKeywords)
	if len(keywords) == 0 {
		return nil, common.NewAppError(common.CodeValidation, "No keywords to save", common.ErrInvalidInput)
	}
	return s.presets.Save(ctx, name, keywords)
}

// LoadPreset replaces the active keywords with the preset's.
func (s *Session) LoadPreset(ctx context.Context, name string) (*repository.Preset, error) {
	if s.presets == nil {
		return nil, ErrNoPresets
	}
	p, err := s.presets.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.manager.ClearKeywords(); err != nil {
		return nil, err
	}
	for _, text := range p.Keywords {
		kw, err := entity.NewKeyword(text)
		if err != nil {
			return nil, err
		}
		if err := s.activate(ctx, kw); err != nil {
			return nil, err
		}
	}
	s.logger.Info("session.preset.loaded", "preset", p.Name, "keywords", len(p.Keywords))
	return p, nil
}

func (s *Session) DeletePreset(ctx context.Context, name string) error {
	if s.presets == nil {
		return ErrNoPresets
	}
	return s.presets.Delete(ctx, name)
}

func (s *Session) Presets(ctx context.Context) ([]*repository.Preset, error) {
	if s.presets == nil {
		return nil, ErrNoPresets
	}
	return s.presets.List(ctx)
}

// StartExtraction moves the state into processing and hands the run to the
// coordinator. Its outcome reaches the state through a Poller.
func (s *Session) StartExtraction(ctx context.Context) (uuid.UUID, error) {
	if err := s.manager.StartProcessing(); err != nil {
		if s.manager.Snapshot().IsProcessing {
			s.metrics.Rejected()
			s.logger.Warn("session.start.rejected", "reason", "Extraction already in progress")
			return uuid.Nil, fmt.Errorf("%w: %w", common.ErrExtractionInProgress, err)
		}
		return uuid.Nil, err
	}
	snap := s.manager.Snapshot()
	keywords := entity.KeywordTexts(snap.ActiveKeywords)

	jobID, err := s.coord.StartExtraction(ctx, s.job(snap.Documents, keywords))
	if err != nil {
		if ferr := s.manager.FailProcessing(common.UserMessage(err)); ferr != nil {
			s.logger.Error("session.start.revert.failed", "err", ferr)
		}
		return uuid.Nil, err
	}
	s.logger.Info("session.extraction.started", "job_id", jobID, "documents", len(snap.Documents), "keywords", len(keywords))
	return jobID, nil
}

// Poller returns a poller feeding job outcomes into this session's state.
func (s *Session) Poller(opts ...async.PollerOption) *async.Poller {
	base := []async.PollerOption{
		async.WithInterval(s.interval),
		async.WithPollerLogger(s.logger),
		async.WithRejectionHandler(func(async.Message) { s.metrics.Rejected() }),
	}
	return async.NewPoller(s.coord, s.manager, append(base, opts...)...)
}

// Run starts an extraction and polls it to completion.
func (s *Session) Run(ctx context.Context, opts ...async.PollerOption) (state.ApplicationState, error) {
	jobID, err := s.StartExtraction(ctx)
	if err != nil {
		return s.State(), err
	}
	if err := s.Poller(opts...).Run(ctx, jobID); err != nil {
		return s.State(), err
	}
	return s.State(), nil
}

func (s *Session) job(docs []entity.Document, keywords []string) async.ExtractionFunc {
	return func(ctx context.Context, progress *async.ProgressReporter) (*entity.BatchResults, error) {
		start := s.now()
		logger := s.logger.With("job_id", common.JobIDFromContext(ctx))
		logger.Info("session.run.started", "documents", len(docs), "keywords", len(keywords))
		s.metrics.RunStarted()
		runLog := s.openRunLog(docs, keywords, start)

		batch := entity.NewBatchResults(keywords)
		batch.Timestamp = start
		var lastErr error
		for i, doc := range docs {
			prefix := ""
			if len(docs) > 1 {
				prefix = fmt.Sprintf("[%d/%d] %s: ", i+1, len(docs), doc.Filename)
			}

			progress.Report(prefix + ProgressParsing)
			parsed, err := s.docs.Parse(ctx, doc.Path)
			if err != nil {
				lastErr = err
				msg := parser.UserMessage(err)
				runLog.Warn("document.parse.failed", "document", doc.Filename, "err", msg)
				logger.Warn("session.document.skipped", "document", doc.Filename, "err", err)
				batch.AddWarning(fmt.Sprintf("%s: %s", doc.Filename, msg))
				continue
			}
			runLog.Info("document.parsed", "document", doc.Filename, "method", parsed.Method, "pages", parsed.PageCount(), "duration", parsed.Duration)

			progress.Report(prefix + ProgressExtracting)
			if doc.PageCount == 0 {
				doc.PageCount = parsed.PageCount()
			}
			res := s.engine.Extract(ctx, parsed.Pages, keywords, doc)
			for _, w := range parsed.Warnings {
				res.AddWarning(w)
			}
			res.LogPath = runLog.Path()
			runLog.Info("document.extracted", "document", doc.Filename, "found", res.SuccessCount(), "not_found", res.NotFoundCount(), "ambiguous", res.AmbiguousCount())
			batch.AddResult(res)
		}

		if !batch.HasResults() {
			err := s.noResults(docs, batch, lastErr)
			s.finish(runLog, nil, start)
			return nil, err
		}

		progress.Report(ProgressOutput)
		if _, err := s.output.WriteBatch(ctx, batch); err != nil {
			runLog.Error("output.write.failed", "err", err)
			logger.Error("session.output.failed", "err", err)
			s.finish(runLog, nil, start)
			return nil, err
		}
		progress.Report(ProgressComplete)
		s.finish(runLog, batch, start)
		return batch, nil
	}
}

func (s *Session) noResults(docs []entity.Document, batch *entity.BatchResults, lastErr error) error {
	if len(docs) == 1 && lastErr != nil {
		return common.NewAppError(common.CodeInput, parser.UserMessage(lastErr), lastErr)
	}
	if len(docs) == 0 {
		return common.NewAppError(common.CodeInput, "No documents selected", common.ErrInvalidInput)
	}
	return common.NewAppError(common.CodeInput,
		"No documents could be processed: "+strings.Join(batch.Warnings, "; "), lastErr)
}

func (s *Session) openRunLog(docs []entity.Document, keywords []string, start time.Time) *proclog.RunLog {
	if s.logDir == "" {
		return proclog.Discard()
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Filename
	}
	l, err := proclog.Open(s.logDir, names, keywords, start)
	if err != nil {
		s.logger.Warn("session.runlog.open.failed", "dir", s.logDir, "err", err)
		return proclog.Discard()
	}
	return l
}

func (s *Session) finish(runLog *proclog.RunLog, batch *entity.BatchResults, start time.Time) {
	if err := runLog.Finalize(proclog.StatusFor(batch), batch); err != nil {
		s.logger.Warn("session.runlog.close.failed", "path", runLog.Path(), "err", err)
	}
	status := string(state.DeriveStatus(batch))
	s.metrics.RunFinished(status, batch, s.now().Sub(start))
	s.logger.Info("session.extraction.finished", "status", status, "elapsed", s.now().Sub(start))
}
