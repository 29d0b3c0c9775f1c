package entity

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/smeshko/text-extractor/constants"
)

// Document represents a selected input document for data transfer between layers.
type Document struct {
	ID           uuid.UUID               `json:"id"`
	Path         string                  `json:"path"`
	Filename     string                  `json:"filename"`
	FileType     constants.FileType      `json:"file_type"`
	PageCount    int                     `json:"page_count"`
	IsValid      bool                    `json:"is_valid"`
	ErrorMessage string                  `json:"error_message,omitempty"`
	State        constants.DocumentState `json:"state"`
}

// NewDocumentFromPath builds a selected document from a filesystem path.
// The path is made absolute and the type is derived from its extension.
func NewDocumentFromPath(path string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("resolve path %q: %w", path, err)
	}
	ft := constants.MapExtToFormat(filepath.Ext(abs))
	if ft == "" {
		return Document{}, fmt.Errorf("unsupported file type: %s", filepath.Ext(abs))
	}
	return Document{
		ID:       uuid.New(),
		Path:     abs,
		Filename: filepath.Base(abs),
		FileType: ft,
		State:    constants.DocumentSelected,
	}, nil
}

// BeginValidation moves the document into the validating state.
func (d *Document) BeginValidation() error {
	return d.transition(constants.DocumentValidating)
}

// MarkValid records a successful validation with the detected page count.
func (d *Document) MarkValid(pageCount int) error {
	if err := d.transition(constants.DocumentValid); err != nil {
		return err
	}
	d.IsValid = true
	d.PageCount = pageCount
	d.ErrorMessage = ""
	return nil
}

// MarkInvalid records a failed validation.
func (d *Document) MarkInvalid(message string) error {
	if err := d.transition(constants.DocumentInvalid); err != nil {
		return err
	}
	d.IsValid = false
	d.ErrorMessage = message
	return nil
}

// Reselect returns a validated document to the selected state.
func (d *Document) Reselect() error {
	if err := d.transition(constants.DocumentSelected); err != nil {
		return err
	}
	d.IsValid = false
	d.ErrorMessage = ""
	return nil
}

func (d *Document) transition(next constants.DocumentState) error {
	if !d.State.CanTransition(next) {
		return fmt.Errorf("document %s: invalid transition %s -> %s", d.Filename, d.State, next)
	}
	d.State = next
	return nil
}

// String returns a short label for logs.
func (d Document) String() string {
	if d.Filename != "" {
		return d.Filename
	}
	return d.Path
}
