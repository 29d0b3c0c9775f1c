package ingest

import (
	"path/filepath"
	"strings"

	"github.com/smeshko/text-extractor/constants"
)

// AllowedExt checks if a file extension is one we can extract from (pdf/docx/doc).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// isOfficeLockFile matches the "~$name.docx" owner files Word leaves next to open documents.
func isOfficeLockFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}

// Candidate reports whether path names a document worth processing.
func Candidate(path string) bool {
	return AllowedExt(filepath.Ext(path)) && !IsHidden(path) && !isOfficeLockFile(path)
}
