package session

import (
	"context"
	"log/slog"

	"github.com/smeshko/text-extractor/internal/async"
	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/export"
	"github.com/smeshko/text-extractor/internal/extract"
	"github.com/smeshko/text-extractor/internal/metrics"
	"github.com/smeshko/text-extractor/internal/parser"
	"github.com/smeshko/text-extractor/internal/repository"
	"github.com/smeshko/text-extractor/internal/state"
)

// FromConfig assembles a session with the standard parser, engine and report
// writer. db and m may be nil.
func FromConfig(cfg *common.Config, db *repository.DB, m *metrics.Metrics, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	registry := parser.NewRegistry(parser.Config{
		AntiwordPath:     cfg.Parser.AntiwordPath,
		WordsPerPage:     cfg.Parser.WordsPerPage,
		ScannedThreshold: cfg.Parser.ScannedThreshold,
		MaxFileSizeMB:    cfg.Extraction.MaxFileSizeMB,
	}, logger)
	coord := async.NewCoordinator(
		async.WithQueueSize(cfg.Extraction.QueueSize),
		async.WithLogger(logger),
	)

	opts := []Option{
		WithMetrics(m),
		WithLogDir(cfg.Logging.Directory),
		WithPollInterval(cfg.Extraction.PollInterval),
		WithLogger(logger),
	}
	if db != nil {
		opts = append(opts,
			WithHistory(repository.NewKeywordHistoryRepository(db, cfg.History.MaxSize, logger)),
			WithPresets(repository.NewPresetRepository(db, logger)),
		)
	}
	return New(
		state.NewManager(logger),
		coord,
		registry,
		extract.NewEngine(extract.WithLogger(logger)),
		export.NewService(cfg.Output, logger),
		opts...,
	)
}

// Shutdown waits for a running extraction to finish or for ctx to end.
func (s *Session) Shutdown(ctx context.Context) {
	s.coord.Shutdown(ctx)
}
