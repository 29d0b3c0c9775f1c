package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smeshko/text-extractor/internal/entity"
)

// KeywordMatcher finds the lines on which each keyword occurs.
type KeywordMatcher struct {
	logger *slog.Logger
}

func NewKeywordMatcher(logger *slog.Logger) *KeywordMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeywordMatcher{logger: logger}
}

// FindKeywords returns one match per (keyword, line) in keyword, page, line order.
// Blank keywords are skipped.
func (m *KeywordMatcher) FindKeywords(ctx context.Context, pages []entity.PageContent, keywords []string) ([]entity.KeywordMatch, error) {
	matches := make([]entity.KeywordMatch, 0)
	for _, keyword := range keywords {
		kw := strings.TrimSpace(keyword)
		if kw == "" {
			continue
		}
		re, err := keywordPattern(kw)
		if err != nil {
			return matches, fmt.Errorf("compile pattern for %q: %w", kw, err)
		}
		for _, page := range pages {
			if err := ctx.Err(); err != nil {
				return matches, err
			}
			for i, line := range page.Lines {
				if !re.MatchString(line) {
					continue
				}
				matches = append(matches, entity.KeywordMatch{
					Keyword:    kw,
					PageNumber: page.PageNumber,
					LineNumber: i + 1,
					LineText:   line,
				})
			}
		}
	}
	m.logger.Debug("extract.keywords.matched", "keywords", len(keywords), "matches", len(matches))
	return matches, nil
}
