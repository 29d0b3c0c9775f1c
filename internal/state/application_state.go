package state

import (
	"errors"
	"fmt"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
)

// ErrNotProcessing is returned when a run is finished while none is active.
var ErrNotProcessing = errors.New("no extraction in progress")

// ApplicationState is the session state. Values handed out by Manager are
// deep copies; mutating them has no effect on the manager.
type ApplicationState struct {
	Documents      []entity.Document          `json:"documents"`
	ActiveKeywords []entity.Keyword           `json:"active_keywords"`
	Status         constants.ProcessingStatus `json:"status"`
	Results        *entity.BatchResults       `json:"results,omitempty"`
	ErrorMessages  []string                   `json:"error_messages"`
	IsProcessing   bool                       `json:"is_processing"`
	Version        uint64                     `json:"version"`
}

// NewApplicationState returns an idle state.
func NewApplicationState() ApplicationState {
	return ApplicationState{
		Documents:      []entity.Document{},
		ActiveKeywords: []entity.Keyword{},
		Status:         constants.StatusIdle,
		ErrorMessages:  []string{},
	}
}

func (s *ApplicationState) HasDocuments() bool { return len(s.Documents) > 0 }
func (s *ApplicationState) HasKeywords() bool  { return len(s.ActiveKeywords) > 0 }

// AllDocumentsValid reports whether at least one document is selected and all are valid.
func (s *ApplicationState) AllDocumentsValid() bool {
	if len(s.Documents) == 0 {
		return false
	}
	for _, d := range s.Documents {
		if !d.IsValid {
			return false
		}
	}
	return true
}

// KeywordTexts returns the active keyword texts in insertion order.
func (s *ApplicationState) KeywordTexts() []string {
	return entity.KeywordTexts(s.ActiveKeywords)
}

// HasKeyword reports whether a keyword with the same normalized form is active.
func (s *ApplicationState) HasKeyword(text string) bool {
	normalized := entity.NormalizeKeyword(text)
	for _, k := range s.ActiveKeywords {
		if k.Normalized == normalized {
			return true
		}
	}
	return false
}

// CanStartExtraction holds when documents are all valid, keywords exist,
// nothing is running and the status allows a new run.
func (s *ApplicationState) CanStartExtraction() bool {
	if !s.AllDocumentsValid() || !s.HasKeywords() || s.IsProcessing {
		return false
	}
	switch s.Status {
	case constants.StatusReady, constants.StatusComplete, constants.StatusError, constants.StatusPartialSuccess:
		return true
	}
	return false
}

// SetDocuments replaces the selection and derives the status from validity.
func (s *ApplicationState) SetDocuments(docs []entity.Document) error {
	if s.IsProcessing {
		return common.ErrExtractionInProgress
	}
	s.Documents = append([]entity.Document{}, docs...)
	switch {
	case len(docs) == 0:
		s.Status = constants.StatusIdle
	case s.AllDocumentsValid() && s.HasKeywords():
		s.Status = constants.StatusReady
	case s.AllDocumentsValid():
		s.Status = constants.StatusFileSelected
	default:
		s.Status = constants.StatusError
		for _, d := range docs {
			if !d.IsValid && d.ErrorMessage != "" {
				s.ErrorMessages = append(s.ErrorMessages, d.ErrorMessage)
			}
		}
	}
	return nil
}

// AddKeyword appends kw unless an equal keyword is active.
func (s *ApplicationState) AddKeyword(kw entity.Keyword) error {
	if s.IsProcessing {
		return common.ErrExtractionInProgress
	}
	if s.HasKeyword(kw.Text) {
		return fmt.Errorf("%w: %s", common.ErrDuplicateKeyword, kw.Text)
	}
	kw.IsActive = true
	s.ActiveKeywords = append(s.ActiveKeywords, kw)
	if s.AllDocumentsValid() && s.Status == constants.StatusFileSelected {
		s.Status = constants.StatusReady
	}
	return nil
}

// RemoveKeyword drops the keyword matching text case-insensitively.
func (s *ApplicationState) RemoveKeyword(text string) error {
	if s.IsProcessing {
		return common.ErrExtractionInProgress
	}
	normalized := entity.NormalizeKeyword(text)
	kept := s.ActiveKeywords[:0:0]
	for _, k := range s.ActiveKeywords {
		if k.Normalized != normalized {
			kept = append(kept, k)
		}
	}
	if len(kept) == len(s.ActiveKeywords) {
		return fmt.Errorf("%w: keyword %q", common.ErrNotFound, text)
	}
	s.ActiveKeywords = kept
	s.settleWithoutKeywords()
	return nil
}

// ClearKeywords removes every active keyword.
func (s *ApplicationState) ClearKeywords() error {
	if s.IsProcessing {
		return common.ErrExtractionInProgress
	}
	s.ActiveKeywords = []entity.Keyword{}
	s.settleWithoutKeywords()
	return nil
}

func (s *ApplicationState) settleWithoutKeywords() {
	if s.HasKeywords() {
		return
	}
	if s.HasDocuments() {
		s.Status = constants.StatusFileSelected
	} else {
		s.Status = constants.StatusIdle
	}
}

// StartProcessing enters the processing status, clearing previous errors and results.
func (s *ApplicationState) StartProcessing() error {
	if !s.CanStartExtraction() {
		return fmt.Errorf("%w: status %s", common.ErrCannotStart, s.Status)
	}
	s.IsProcessing = true
	s.Status = constants.StatusProcessing
	s.ErrorMessages = []string{}
	s.Results = nil
	return nil
}

// CompleteProcessing stores results and derives the terminal status.
func (s *ApplicationState) CompleteProcessing(results *entity.BatchResults) error {
	if !s.IsProcessing {
		return ErrNotProcessing
	}
	s.IsProcessing = false
	s.Results = results
	s.Status = DeriveStatus(results)
	return nil
}

// FailProcessing ends the run with the error status.
func (s *ApplicationState) FailProcessing(message string) error {
	if !s.IsProcessing {
		return ErrNotProcessing
	}
	s.IsProcessing = false
	s.Status = constants.StatusError
	s.ErrorMessages = append(s.ErrorMessages, message)
	return nil
}

// Reset returns to the idle state.
func (s *ApplicationState) Reset() {
	version := s.Version
	*s = NewApplicationState()
	s.Version = version
}

// DeriveStatus maps results to complete, partial_success or error.
// Errors with at least one found value are a partial success.
func DeriveStatus(results *entity.BatchResults) constants.ProcessingStatus {
	if results == nil || results.HasErrors() {
		return constants.StatusError
	}
	if !results.HasResultErrors() {
		return constants.StatusComplete
	}
	if results.FoundMatchCount() > 0 {
		return constants.StatusPartialSuccess
	}
	return constants.StatusError
}

// Clone returns a deep copy of the state.
func (s ApplicationState) Clone() ApplicationState {
	out := s
	out.Documents = append([]entity.Document{}, s.Documents...)
	out.ActiveKeywords = append([]entity.Keyword{}, s.ActiveKeywords...)
	out.ErrorMessages = append([]string{}, s.ErrorMessages...)
	out.Results = s.Results.Clone()
	return out
}
