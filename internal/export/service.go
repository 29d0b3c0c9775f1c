package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
)

const (
	FormatText = "txt"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// Service writes report files for finished extractions into one folder.
// Existing files with the same name are overwritten.
type Service struct {
	folder  string
	formats []string
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Service)

// WithClock overrides the clock used for fallback file names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(cfg common.OutputConfig, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		folder:  cfg.Folder,
		formats: cfg.Formats,
		now:     time.Now,
		logger:  logger,
	}
	if s.folder == "" {
		s.folder = "."
	}
	if len(s.formats) == 0 {
		s.formats = []string{FormatText}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Folder() string { return s.folder }

func (s *Service) enabled(format string) bool { return slices.Contains(s.formats, format) }

// Write writes the reports for a single result and records their paths on it.
func (s *Service) Write(ctx context.Context, r *entity.ExtractionResults) ([]string, error) {
	keywords, _ := r.MatchesByKeyword()
	return s.WriteBatch(ctx, entity.SingleResult(r, keywords))
}

// WriteBatch writes one text report per document and, for the workbook and
// JSON formats, one file covering the whole batch. A batch of more than one
// document also gets a text summary. Paths are recorded on the results and
// the batch.
func (s *Service) WriteBatch(ctx context.Context, b *entity.BatchResults) ([]string, error) {
	start := time.Now()
	if err := EnsureWritable(s.folder); err != nil {
		return nil, err
	}

	var (
		paths []string
		used  = make(map[string]bool)
		now   = s.now()
	)
	write := func(path string, data []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			s.logger.Error("export.write.failed", "path", path, "error", err)
			return common.NewAppError(common.CodeOutput, fmt.Sprintf("Insufficient disk space or I/O error: %v", err), err)
		}
		paths = append(paths, path)
		return nil
	}

	// Single-document batches name every file after the document's person.
	single := b.DocumentCount() == 1
	batchName := func(ext string) string {
		if single {
			return Filename(b.Results[0].PersonalInfo, ext, now)
		}
		return fmt.Sprintf("batch_%s.%s", now.Format("20060102_150405"), ext)
	}

	if s.enabled(FormatText) {
		for _, r := range b.Results {
			p := uniquePath(used, filepath.Join(s.folder, Filename(r.PersonalInfo, FormatText, now)))
			if err := write(p, []byte(RenderText(r))); err != nil {
				return paths, err
			}
			r.OutputPaths = append(r.OutputPaths, p)
		}
		if !single && b.HasResults() {
			p := uniquePath(used, filepath.Join(s.folder, batchName(FormatText)))
			if err := write(p, []byte(RenderBatchText(b))); err != nil {
				return paths, err
			}
		}
	}

	shared := make([]string, 0, 2)
	if s.enabled(FormatXLSX) {
		data, err := RenderXLSX(b.Results, b.Warnings)
		if err != nil {
			return paths, common.NewAppError(common.CodeOutput, "Failed to generate workbook", err)
		}
		p := uniquePath(used, filepath.Join(s.folder, batchName(FormatXLSX)))
		if err := write(p, data); err != nil {
			return paths, err
		}
		shared = append(shared, p)
	}
	if s.enabled(FormatJSON) {
		data, err := RenderJSON(b)
		if err != nil {
			return paths, common.NewAppError(common.CodeOutput, "Failed to generate JSON report", err)
		}
		p := uniquePath(used, filepath.Join(s.folder, batchName(FormatJSON)))
		if err := write(p, data); err != nil {
			return paths, err
		}
		shared = append(shared, p)
	}
	for _, r := range b.Results {
		r.OutputPaths = append(r.OutputPaths, shared...)
	}

	if len(paths) > 0 {
		b.OutputPath = paths[len(paths)-1]
		if single {
			b.OutputPath = paths[0]
		}
	}
	s.logger.Info("export.ok",
		"documents", b.DocumentCount(),
		"files", len(paths),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return paths, nil
}
