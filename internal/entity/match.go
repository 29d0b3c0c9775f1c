package entity

import (
	"fmt"

	"github.com/smeshko/text-extractor/constants"
)

// KeywordMatch is one line on which a keyword occurs.
type KeywordMatch struct {
	Keyword    string `json:"keyword"`
	PageNumber int    `json:"page_number"`
	LineNumber int    `json:"line_number"`
	LineText   string `json:"line_text"`
}

// NewKeywordMatch validates and builds a KeywordMatch.
func NewKeywordMatch(keyword string, page, line int, lineText string) (KeywordMatch, error) {
	if page < 1 {
		return KeywordMatch{}, fmt.Errorf("page number must be >= 1, got %d", page)
	}
	if line < 1 {
		return KeywordMatch{}, fmt.Errorf("line number must be >= 1, got %d", line)
	}
	if lineText == "" {
		return KeywordMatch{}, fmt.Errorf("line text cannot be empty")
	}
	return KeywordMatch{Keyword: keyword, PageNumber: page, LineNumber: line, LineText: lineText}, nil
}

// ExtractionMatch associates a keyword with the value found next to it.
type ExtractionMatch struct {
	Keyword    string                `json:"keyword"`
	Value      string                `json:"value"`
	PageNumber int                   `json:"page_number"`
	LineNumber *int                  `json:"line_number,omitempty"`
	Status     constants.MatchStatus `json:"status"`
	Warning    string                `json:"warning,omitempty"`
}

// NewExtractionMatch validates and builds an ExtractionMatch.
func NewExtractionMatch(keyword, value string, page int, line *int, status constants.MatchStatus, warning string) (ExtractionMatch, error) {
	if page < 1 {
		return ExtractionMatch{}, fmt.Errorf("page number must be >= 1, got %d", page)
	}
	if line != nil && *line < 1 {
		return ExtractionMatch{}, fmt.Errorf("line number must be >= 1, got %d", *line)
	}
	if !status.Valid() {
		return ExtractionMatch{}, fmt.Errorf("invalid match status %q", status)
	}
	if status == constants.MatchNotFound && value != constants.NotFoundValue {
		return ExtractionMatch{}, fmt.Errorf("not_found match must carry value %q", constants.NotFoundValue)
	}
	m := ExtractionMatch{
		Keyword:    keyword,
		Value:      value,
		PageNumber: page,
		Status:     status,
		Warning:    warning,
	}
	if line != nil {
		l := *line
		m.LineNumber = &l
	}
	return m, nil
}

// NotFoundMatch builds the synthesized match for a keyword with no occurrence.
func NotFoundMatch(keyword string, page int) ExtractionMatch {
	if page < 1 {
		page = 1
	}
	return ExtractionMatch{
		Keyword:    keyword,
		Value:      constants.NotFoundValue,
		PageNumber: page,
		Status:     constants.MatchNotFound,
	}
}

func (m ExtractionMatch) IsFound() bool     { return m.Status == constants.MatchFound }
func (m ExtractionMatch) IsAmbiguous() bool { return m.Status == constants.MatchAmbiguous }
func (m ExtractionMatch) IsNotFound() bool  { return m.Status == constants.MatchNotFound }

// Clone returns an independent copy of the match.
func (m ExtractionMatch) Clone() ExtractionMatch {
	if m.LineNumber != nil {
		l := *m.LineNumber
		m.LineNumber = &l
	}
	return m
}
