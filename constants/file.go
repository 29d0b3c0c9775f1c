package constants

import "strings"

// FileType is the canonical document type.
type FileType string

const (
	PDF  FileType = "pdf"
	DOCX FileType = "docx"
	DOC  FileType = "doc"
)

// FileTypes holds the supported document types in display order.
var FileTypes = []FileType{PDF, DOCX, DOC}

// AllowedExtensions holds the file extensions accepted for extraction.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"doc":  {},
}

// DefaultMaxFileSizeMB caps the size of a document accepted for parsing.
const DefaultMaxFileSizeMB = 50

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension (with or without the dot) to its FileType.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) FileType {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "doc":
		return DOC
	default:
		return ""
	}
}
