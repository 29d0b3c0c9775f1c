package constants

// ProcessingStatus is the session-level extraction status.
type ProcessingStatus string

// Stable values (surface these exact strings in snapshots and reports).
const (
	StatusIdle           ProcessingStatus = "idle"            // nothing selected
	StatusFileSelected   ProcessingStatus = "file_selected"   // documents valid, no keywords
	StatusReady          ProcessingStatus = "ready"           // documents and keywords present
	StatusProcessing     ProcessingStatus = "processing"      // worker active
	StatusComplete       ProcessingStatus = "complete"        // terminal, no errors
	StatusError          ProcessingStatus = "error"           // terminal failure
	StatusPartialSuccess ProcessingStatus = "partial_success" // terminal, errors plus found values
)

// IsTerminal reports whether s ends a processing run.
func (s ProcessingStatus) IsTerminal() bool {
	switch s {
	case StatusComplete, StatusError, StatusPartialSuccess:
		return true
	}
	return false
}

// MatchStatus classifies a single keyword/value association.
type MatchStatus string

const (
	MatchFound     MatchStatus = "found"
	MatchNotFound  MatchStatus = "not_found"
	MatchAmbiguous MatchStatus = "ambiguous"
)

// NotFoundValue is the value carried by every not_found match.
const NotFoundValue = "Not found"

// Valid reports whether s is one of the known match statuses.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchFound, MatchNotFound, MatchAmbiguous:
		return true
	}
	return false
}

// DocumentState tracks a document through selection and validation.
type DocumentState string

const (
	DocumentUnselected DocumentState = "unselected"
	DocumentSelected   DocumentState = "selected"
	DocumentValidating DocumentState = "validating"
	DocumentValid      DocumentState = "valid"
	DocumentInvalid    DocumentState = "invalid"
)

var documentTransitions = map[DocumentState][]DocumentState{
	DocumentUnselected: {DocumentSelected},
	DocumentSelected:   {DocumentValidating},
	DocumentValidating: {DocumentValid, DocumentInvalid},
	DocumentValid:      {DocumentSelected},
	DocumentInvalid:    {DocumentSelected},
}

// CanTransition reports whether a document may move from s to next.
func (s DocumentState) CanTransition(next DocumentState) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
