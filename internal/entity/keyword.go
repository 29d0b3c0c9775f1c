package entity

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxKeywordLength is the maximum keyword length in characters.
const MaxKeywordLength = 100

var (
	ErrEmptyKeyword   = errors.New("keyword cannot be empty")
	ErrKeywordTooLong = errors.New("keyword cannot exceed 100 characters")
)

// Keyword is a user-supplied search term. Equality is defined on Normalized.
type Keyword struct {
	Text         string `json:"text"`
	Normalized   string `json:"normalized"`
	IsHistorical bool   `json:"is_historical"`
	IsActive     bool   `json:"is_active"`
}

// NewKeyword trims text and validates its length.
func NewKeyword(text string) (Keyword, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Keyword{}, ErrEmptyKeyword
	}
	if utf8.RuneCountInString(trimmed) > MaxKeywordLength {
		return Keyword{}, ErrKeywordTooLong
	}
	return Keyword{
		Text:       trimmed,
		Normalized: NormalizeKeyword(trimmed),
		IsActive:   true,
	}, nil
}

// NormalizeKeyword returns the case-folded comparison form of a keyword.
func NormalizeKeyword(text string) string {
	// Casers keep state, so each call gets its own.
	return cases.Lower(language.Und).String(strings.TrimSpace(text))
}

// Equal compares two keywords case-insensitively.
func (k Keyword) Equal(other Keyword) bool {
	return k.Normalized == other.Normalized
}

func (k Keyword) String() string { return k.Text }

// KeywordTexts returns the display texts of keywords in order.
func KeywordTexts(keywords []Keyword) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = k.Text
	}
	return out
}
