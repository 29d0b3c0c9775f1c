package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

// Engine runs the three extraction stages over one parsed document.
type Engine struct {
	matcher  KeywordLocator
	numbers  NumberLocator
	personal PersonalInfoLocator
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithKeywordLocator replaces the keyword stage.
func WithKeywordLocator(l KeywordLocator) Option {
	return func(e *Engine) { e.matcher = l }
}

// WithNumberLocator replaces the number stage.
func WithNumberLocator(l NumberLocator) Option {
	return func(e *Engine) { e.numbers = l }
}

// WithPersonalInfoLocator replaces the personal information stage.
func WithPersonalInfoLocator(l PersonalInfoLocator) Option {
	return func(e *Engine) { e.personal = l }
}

// WithClock sets the time source used for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an engine with the default stages.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.matcher == nil {
		e.matcher = NewKeywordMatcher(e.logger)
	}
	if e.numbers == nil {
		e.numbers = NewNumberExtractor(e.logger)
	}
	if e.personal == nil {
		e.personal = NewPersonalInfoExtractor(e.logger)
	}
	return e
}

// Extract never returns an error and never panics. Stage failures are
// recorded on the result and later stages still run.
func (e *Engine) Extract(ctx context.Context, pages []entity.PageContent, keywords []string, doc entity.Document) (res *entity.ExtractionResults) {
	start := e.now()
	if doc.PageCount == 0 {
		doc.PageCount = len(pages)
	}
	res = entity.NewExtractionResults(doc)
	keywords = trimKeywords(keywords)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction.failed", "document", doc.String(), "panic", r)
			res.AddError(constants.ErrExtraction, fmt.Sprintf("Unexpected error during extraction: %v", r), nil)
		}
		end := e.now()
		res.ProcessingTime = end.Sub(start)
		res.Timestamp = end
		e.logger.Debug("extraction.done",
			"document", doc.String(),
			"matches", len(res.Matches),
			"errors", len(res.Errors),
			"duration", res.ProcessingTime,
		)
	}()

	var keywordMatches []entity.KeywordMatch
	err := runStage(func() error {
		var err error
		keywordMatches, err = e.matcher.FindKeywords(ctx, pages, uniqueKeywords(keywords))
		return err
	})
	if err != nil {
		e.logger.Warn("extraction.stage.failed", "stage", "keywords", "err", err)
		res.AddError(constants.ErrKeywordMatching, fmt.Sprintf("Failed to match keywords: %v", err),
			map[string]string{"keywords": strings.Join(keywords, ", ")})
		keywordMatches = nil
	}

	var valueMatches []entity.ExtractionMatch
	err = runStage(func() error {
		var err error
		valueMatches, err = e.numbers.ExtractNumbers(ctx, keywordMatches)
		return err
	})
	if err != nil {
		e.logger.Warn("extraction.stage.failed", "stage", "numbers", "err", err)
		res.AddError(constants.ErrNumberExtraction, fmt.Sprintf("Failed to extract numbers: %v", err), nil)
	} else {
		e.assembleMatches(res, keywords, valueMatches)
	}

	var info entity.PersonalInformation
	err = runStage(func() error {
		var err error
		info, err = e.personal.ExtractPersonalInfo(ctx, pages)
		return err
	})
	if err != nil {
		e.logger.Warn("extraction.stage.failed", "stage", "personal_info", "err", err)
		res.AddError(constants.ErrPersonalInfoExtraction, fmt.Sprintf("Failed to extract personal information: %v", err), nil)
		res.PersonalInfo = entity.EmptyPersonalInformation()
	} else {
		res.PersonalInfo = info
		if info.FirstName == "" {
			res.AddWarning("First name not found in document")
		}
		if info.IDNumberPrefix == "" {
			res.AddWarning("ID number not found in document")
		}
	}
	return res
}

// assembleMatches re-emits matches grouped by keyword in input keyword order,
// synthesizing not_found entries for keywords without any match. A keyword
// given twice gets its group twice; its warnings are recorded once.
func (e *Engine) assembleMatches(res *entity.ExtractionResults, keywords []string, matches []entity.ExtractionMatch) {
	byKeyword := make(map[string][]entity.ExtractionMatch, len(keywords))
	for _, m := range matches {
		byKeyword[m.Keyword] = append(byKeyword[m.Keyword], m)
	}
	warned := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		group, ok := byKeyword[kw]
		if !ok {
			res.Matches = append(res.Matches, entity.NotFoundMatch(kw, 1))
			continue
		}
		for _, m := range group {
			res.Matches = append(res.Matches, m.Clone())
			if m.IsAmbiguous() && m.Warning != "" && !warned[kw] {
				res.AddWarning(m.Warning)
			}
		}
		warned[kw] = true
	}
}

// runStage converts a panic inside fn into an error.
func runStage(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// trimKeywords trims keywords and drops blanks, keeping order and duplicates.
func trimKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// uniqueKeywords drops exact duplicates from trimmed keywords, keeping order.
func uniqueKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
