package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

var (
	// digits, optional comma groups, optional decimal part; submatch 1 is the token
	numberToken     = regexp.MustCompile(leadingBoundary + `(\d+(?:,\d+)*(?:\.\d+)?)` + trailingBoundary)
	strictThousands = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

// NumberExtractor applies the "next number after keyword" rule on the keyword's line.
type NumberExtractor struct {
	logger *slog.Logger
}

func NewNumberExtractor(logger *slog.Logger) *NumberExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &NumberExtractor{logger: logger}
}

// ExtractNumbers returns exactly one ExtractionMatch per input match, in input order.
func (n *NumberExtractor) ExtractNumbers(ctx context.Context, matches []entity.KeywordMatch) ([]entity.ExtractionMatch, error) {
	out := make([]entity.ExtractionMatch, 0, len(matches))
	patterns := make(map[string]*regexp.Regexp)

	for _, km := range matches {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		re, ok := patterns[km.Keyword]
		if !ok {
			var err error
			re, err = keywordPattern(km.Keyword)
			if err != nil {
				return out, fmt.Errorf("compile pattern for %q: %w", km.Keyword, err)
			}
			patterns[km.Keyword] = re
		}
		out = append(out, classify(km, re))
	}
	return out, nil
}

func classify(km entity.KeywordMatch, re *regexp.Regexp) entity.ExtractionMatch {
	line := km.LineNumber
	result := entity.ExtractionMatch{
		Keyword:    km.Keyword,
		Value:      constants.NotFoundValue,
		PageNumber: km.PageNumber,
		LineNumber: &line,
		Status:     constants.MatchNotFound,
	}

	end := locateKeyword(re, km.LineText)
	if end < 0 {
		return result
	}
	token := numberToken.FindStringSubmatch(km.LineText[end:])
	if token == nil {
		return result
	}
	value := token[1]

	result.Value = value
	result.Status = constants.MatchFound
	if strings.Contains(value, ",") && !strings.Contains(value, ".") {
		result.Status = constants.MatchAmbiguous
		if strictThousands.MatchString(value) {
			result.Warning = fmt.Sprintf("Number '%s' interpreted as thousands separator. If this is incorrect, please review the document.", value)
		} else {
			result.Warning = fmt.Sprintf("Number '%s' has unusual format and may be ambiguous", value)
		}
	}
	return result
}
