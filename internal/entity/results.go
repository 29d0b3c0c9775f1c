package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smeshko/text-extractor/constants"
)

// ResultError is a structured error recorded during extraction.
type ResultError struct {
	Type    constants.ErrorType `json:"type"`
	Message string              `json:"message"`
	Context map[string]string   `json:"context,omitempty"`
}

// ExtractionResults is the outcome of one extraction call over one document.
type ExtractionResults struct {
	ID             uuid.UUID           `json:"id"`
	Document       Document            `json:"document"`
	PersonalInfo   PersonalInformation `json:"personal_info"`
	Matches        []ExtractionMatch   `json:"matches"`
	Errors         []ResultError       `json:"errors"`
	Warnings       []string            `json:"warnings"`
	ProcessingTime time.Duration       `json:"processing_time"`
	Timestamp      time.Time           `json:"timestamp"`
	OutputPaths    []string            `json:"output_paths,omitempty"`
	LogPath        string              `json:"log_path,omitempty"`
}

// NewExtractionResults starts an empty result for doc.
func NewExtractionResults(doc Document) *ExtractionResults {
	return &ExtractionResults{
		ID:           uuid.New(),
		Document:     doc,
		PersonalInfo: EmptyPersonalInformation(),
		Matches:      []ExtractionMatch{},
		Errors:       []ResultError{},
		Warnings:     []string{},
		Timestamp:    time.Now(),
	}
}

// AddError records a structured error.
func (r *ExtractionResults) AddError(t constants.ErrorType, message string, context map[string]string) {
	r.Errors = append(r.Errors, ResultError{Type: t, Message: message, Context: context})
}

// AddWarning records a warning message.
func (r *ExtractionResults) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

func (r *ExtractionResults) HasErrors() bool   { return len(r.Errors) > 0 }
func (r *ExtractionResults) HasWarnings() bool { return len(r.Warnings) > 0 }

func (r *ExtractionResults) countStatus(s constants.MatchStatus) int {
	n := 0
	for _, m := range r.Matches {
		if m.Status == s {
			n++
		}
	}
	return n
}

// SuccessCount returns the number of found matches.
func (r *ExtractionResults) SuccessCount() int { return r.countStatus(constants.MatchFound) }

// NotFoundCount returns the number of not_found matches.
func (r *ExtractionResults) NotFoundCount() int { return r.countStatus(constants.MatchNotFound) }

// AmbiguousCount returns the number of ambiguous matches.
func (r *ExtractionResults) AmbiguousCount() int { return r.countStatus(constants.MatchAmbiguous) }

// MatchesByKeyword groups matches by keyword, preserving insertion order of
// both keywords and matches.
func (r *ExtractionResults) MatchesByKeyword() ([]string, map[string][]ExtractionMatch) {
	order := make([]string, 0)
	groups := make(map[string][]ExtractionMatch)
	for _, m := range r.Matches {
		if _, ok := groups[m.Keyword]; !ok {
			order = append(order, m.Keyword)
		}
		groups[m.Keyword] = append(groups[m.Keyword], m)
	}
	return order, groups
}

// StatusSummary renders e.g. "Total: 3 (1 successful, 2 not found)".
func (r *ExtractionResults) StatusSummary() string {
	parts := make([]string, 0, 3)
	if n := r.SuccessCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d successful", n))
	}
	if n := r.NotFoundCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d not found", n))
	}
	if n := r.AmbiguousCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d ambiguous", n))
	}
	return fmt.Sprintf("Total: %d (%s)", len(r.Matches), strings.Join(parts, ", "))
}

// ErrorSummary renders one "- message" line per error, or "No errors".
func (r *ExtractionResults) ErrorSummary() string {
	if !r.HasErrors() {
		return "No errors"
	}
	lines := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		lines[i] = "- " + e.Message
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy of the result.
func (r *ExtractionResults) Clone() *ExtractionResults {
	if r == nil {
		return nil
	}
	out := *r
	out.PersonalInfo = r.PersonalInfo.Clone()
	out.Matches = make([]ExtractionMatch, len(r.Matches))
	for i, m := range r.Matches {
		out.Matches[i] = m.Clone()
	}
	out.Errors = make([]ResultError, len(r.Errors))
	for i, e := range r.Errors {
		out.Errors[i] = e
		if e.Context != nil {
			ctx := make(map[string]string, len(e.Context))
			for k, v := range e.Context {
				ctx[k] = v
			}
			out.Errors[i].Context = ctx
		}
	}
	out.Warnings = append([]string{}, r.Warnings...)
	out.OutputPaths = append([]string(nil), r.OutputPaths...)
	return &out
}

// ProcessingSeconds returns ProcessingTime in seconds.
func (r *ExtractionResults) ProcessingSeconds() float64 {
	return r.ProcessingTime.Seconds()
}
