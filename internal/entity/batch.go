package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BatchResults collects the results of one extraction run over one or more documents.
type BatchResults struct {
	ID         uuid.UUID            `json:"id"`
	Results    []*ExtractionResults `json:"results"`
	Keywords   []string             `json:"keywords"`
	Warnings   []string             `json:"warnings"`
	Timestamp  time.Time            `json:"timestamp"`
	OutputPath string               `json:"output_path,omitempty"`
}

// NewBatchResults starts an empty batch for keywords.
func NewBatchResults(keywords []string) *BatchResults {
	return &BatchResults{
		ID:        uuid.New(),
		Results:   []*ExtractionResults{},
		Keywords:  append([]string{}, keywords...),
		Warnings:  []string{},
		Timestamp: time.Now(),
	}
}

// SingleResult wraps one result in a batch of one.
func SingleResult(r *ExtractionResults, keywords []string) *BatchResults {
	b := NewBatchResults(keywords)
	if r != nil {
		b.Results = append(b.Results, r)
		b.Timestamp = r.Timestamp
	}
	return b
}

func (b *BatchResults) AddResult(r *ExtractionResults) { b.Results = append(b.Results, r) }
func (b *BatchResults) AddWarning(msg string)          { b.Warnings = append(b.Warnings, msg) }

// DocumentCount returns the number of documents with results.
func (b *BatchResults) DocumentCount() int { return len(b.Results) }

func (b *BatchResults) HasResults() bool  { return len(b.Results) > 0 }
func (b *BatchResults) HasWarnings() bool { return len(b.Warnings) > 0 }

// HasErrors reports whether no document was processed but warnings exist.
func (b *BatchResults) HasErrors() bool { return !b.HasResults() && b.HasWarnings() }

// HasResultErrors reports whether any contained result recorded an error.
func (b *BatchResults) HasResultErrors() bool {
	for _, r := range b.Results {
		if r.HasErrors() {
			return true
		}
	}
	return false
}

// FoundMatchCount returns the total number of found matches across all results.
func (b *BatchResults) FoundMatchCount() int {
	n := 0
	for _, r := range b.Results {
		n += r.SuccessCount()
	}
	return n
}

// SuccessCount returns the number of documents with at least one found match.
func (b *BatchResults) SuccessCount() int {
	n := 0
	for _, r := range b.Results {
		if r.SuccessCount() > 0 {
			n++
		}
	}
	return n
}

// TotalProcessingTime sums the processing time of all results.
func (b *BatchResults) TotalProcessingTime() time.Duration {
	var total time.Duration
	for _, r := range b.Results {
		total += r.ProcessingTime
	}
	return total
}

// StatusSummary renders e.g. "3 documents processed, 2 with matches, 1 warnings".
func (b *BatchResults) StatusSummary() string {
	parts := []string{fmt.Sprintf("%d documents processed", b.DocumentCount())}
	if n := b.SuccessCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d with matches", n))
	}
	if n := len(b.Warnings); n > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", n))
	}
	return strings.Join(parts, ", ")
}

// Clone returns a deep copy of the batch.
func (b *BatchResults) Clone() *BatchResults {
	if b == nil {
		return nil
	}
	out := *b
	out.Results = make([]*ExtractionResults, len(b.Results))
	for i, r := range b.Results {
		out.Results[i] = r.Clone()
	}
	out.Keywords = append([]string{}, b.Keywords...)
	out.Warnings = append([]string{}, b.Warnings...)
	return &out
}
