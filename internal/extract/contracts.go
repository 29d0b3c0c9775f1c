package extract

import (
	"context"

	"github.com/smeshko/text-extractor/internal/entity"
)

// KeywordLocator is Stage 1: pages + keywords -> keyword occurrences.
type KeywordLocator interface {
	FindKeywords(ctx context.Context, pages []entity.PageContent, keywords []string) ([]entity.KeywordMatch, error)
}

// NumberLocator is Stage 2: keyword occurrences -> adjacent values.
type NumberLocator interface {
	ExtractNumbers(ctx context.Context, matches []entity.KeywordMatch) ([]entity.ExtractionMatch, error)
}

// PersonalInfoLocator is Stage 3: pages -> identity fields.
type PersonalInfoLocator interface {
	ExtractPersonalInfo(ctx context.Context, pages []entity.PageContent) (entity.PersonalInformation, error)
}

var (
	_ KeywordLocator      = (*KeywordMatcher)(nil)
	_ NumberLocator       = (*NumberExtractor)(nil)
	_ PersonalInfoLocator = (*PersonalInfoExtractor)(nil)
)
