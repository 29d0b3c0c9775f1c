package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

// Parser turns one document into pages of text.
type Parser interface {
	Parse(ctx context.Context, path string) (*ParseResult, error)
	Validate(ctx context.Context, path string) error
	PageCount(ctx context.Context, path string) (int, error)
}

// ParseResult holds the pages of a parsed document.
type ParseResult struct {
	Pages    []entity.PageContent
	Method   string // "pdf-text" | "docx-xml" | "doc-antiword"
	Duration time.Duration
	Warnings []string
}

// PageCount returns the number of parsed pages.
func (r *ParseResult) PageCount() int { return len(r.Pages) }

type Config struct {
	AntiwordPath     string // binary name or absolute path; if empty -> "antiword"
	WordsPerPage     int    // DOCX/DOC pagination, default 500
	ScannedThreshold int    // minimum visible characters in the first 3 pages, default 10
	MaxFileSizeMB    int    // default 50
}

func (c Config) withDefaults() Config {
	if c.AntiwordPath == "" {
		c.AntiwordPath = "antiword"
	}
	if c.WordsPerPage <= 0 {
		c.WordsPerPage = 500
	}
	if c.ScannedThreshold <= 0 {
		c.ScannedThreshold = 10
	}
	if c.MaxFileSizeMB <= 0 {
		c.MaxFileSizeMB = constants.DefaultMaxFileSizeMB
	}
	return c
}

// Registry picks a parser by file extension after checking the file itself.
type Registry struct {
	cfg     Config
	logger  *slog.Logger
	parsers map[constants.FileType]Parser
}

type RegistryOption func(*Registry)

// WithParser overrides the parser used for a file type.
func WithParser(ft constants.FileType, p Parser) RegistryOption {
	return func(r *Registry) { r.parsers[ft] = p }
}

// WithRunner sets the command runner used by the DOC parser.
func WithRunner(runner Runner) RegistryOption {
	return func(r *Registry) {
		r.parsers[constants.DOC] = NewDOCParser(r.cfg, runner, r.logger)
	}
}

func NewRegistry(cfg Config, logger *slog.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	r := &Registry{
		cfg:    cfg,
		logger: logger,
		parsers: map[constants.FileType]Parser{
			constants.PDF:  NewPDFParser(cfg, logger),
			constants.DOCX: NewDOCXParser(cfg, logger),
			constants.DOC:  NewDOCParser(cfg, nil, logger),
		},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ForPath returns the parser for path's extension.
func (r *Registry) ForPath(path string) (Parser, error) {
	ext := filepath.Ext(path)
	p, ok := r.parsers[constants.MapExtToFormat(ext)]
	if !ok {
		return nil, newError(ErrUnsupportedFormat, path,
			fmt.Sprintf("Unsupported file type: %s. Supported types: .pdf, .docx, .doc", ext), nil)
	}
	return p, nil
}

// CheckFile verifies the file exists, is a readable regular file and is within the size limit.
func (r *Registry) CheckFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return newError(ErrFileNotFound, path, fmt.Sprintf("File not found: %s", path), nil)
		case errors.Is(err, fs.ErrPermission):
			return newError(ErrPermissionDenied, path, fmt.Sprintf("File is not readable: %s", path), nil)
		default:
			return newError(ErrCorrupted, path, fmt.Sprintf("Cannot access file: %s", path), err)
		}
	}
	if !info.Mode().IsRegular() {
		return newError(ErrUnsupportedFormat, path, fmt.Sprintf("Not a regular file: %s", path), nil)
	}
	if limit := int64(r.cfg.MaxFileSizeMB) * 1024 * 1024; info.Size() > limit {
		return newError(ErrFileTooLarge, path,
			fmt.Sprintf("File is too large: %.1f MB (maximum %d MB)", float64(info.Size())/(1024*1024), r.cfg.MaxFileSizeMB), nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return newError(ErrPermissionDenied, path, fmt.Sprintf("File is not readable: %s", path), err)
	}
	return f.Close()
}

// Parse checks and parses the document at path.
func (r *Registry) Parse(ctx context.Context, path string) (*ParseResult, error) {
	p, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	if err := r.CheckFile(path); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := p.Parse(ctx, path)
	if err != nil {
		r.logger.Warn("parser.parse.failed", "path", path, "err", err)
		return nil, err
	}
	res.Duration = time.Since(start)
	r.logger.Debug("parser.parse.ok", "path", path, "method", res.Method, "pages", res.PageCount(), "duration", res.Duration)
	return res, nil
}

// Validate checks the document without keeping its content.
func (r *Registry) Validate(ctx context.Context, path string) error {
	p, err := r.ForPath(path)
	if err != nil {
		return err
	}
	if err := r.CheckFile(path); err != nil {
		return err
	}
	return p.Validate(ctx, path)
}

// ValidateDocument runs the document through validating into valid or invalid.
func (r *Registry) ValidateDocument(ctx context.Context, doc *entity.Document) error {
	if doc.State != constants.DocumentSelected {
		if err := doc.Reselect(); err != nil {
			return err
		}
	}
	if err := doc.BeginValidation(); err != nil {
		return err
	}
	if err := r.Validate(ctx, doc.Path); err != nil {
		return doc.MarkInvalid(UserMessage(err))
	}
	p, _ := r.ForPath(doc.Path)
	pages, err := p.PageCount(ctx, doc.Path)
	if err != nil {
		return doc.MarkInvalid(UserMessage(err))
	}
	return doc.MarkValid(pages)
}
