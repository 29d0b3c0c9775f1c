package parser

import (
	"errors"
	"fmt"
)

// Input error kinds. A document failing with any of these cannot be extracted.
var (
	ErrFileNotFound      = errors.New("file not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrPasswordProtected = errors.New("password protected")
	ErrScannedDocument   = errors.New("no extractable text")
	ErrCorrupted         = errors.New("corrupted document")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrParserUnavailable = errors.New("parser unavailable")
)

// Error describes why a document could not be parsed.
type Error struct {
	Kind    error
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, path, message string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Cause: cause}
}

// UserMessage returns the message shown for err without the underlying cause.
func UserMessage(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
