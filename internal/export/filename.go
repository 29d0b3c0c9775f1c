package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
)

// Filename derives "<INITIALS>-<AGE>.<ext>" from a complete name and age,
// falling back to "output_YYYYMMDD_HHMMSS.<ext>".
func Filename(pi entity.PersonalInformation, ext string, now time.Time) string {
	ext = strings.TrimPrefix(ext, ".")
	if pi.FullName() != "" && pi.Age != nil {
		if initials := pi.Initials(); initials != "" {
			return fmt.Sprintf("%s-%d.%s", initials, *pi.Age, ext)
		}
	}
	return fmt.Sprintf("output_%s.%s", now.Format("20060102_150405"), ext)
}

// uniquePath appends _2, _3, ... to the base name until the path is unused
// within this run.
func uniquePath(used map[string]bool, path string) string {
	if !used[path] {
		used[path] = true
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 2; ; i++ {
		p := fmt.Sprintf("%s_%d%s", base, i, ext)
		if !used[p] {
			used[p] = true
			return p
		}
	}
}

// EnsureWritable creates folder if needed and probes it with a temp file.
func EnsureWritable(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return common.NewAppError(common.CodeOutput, fmt.Sprintf("Output folder cannot be created: %s", folder), err)
	}
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return common.NewAppError(common.CodeOutput, fmt.Sprintf("Not a valid directory: %s", folder), err)
	}
	f, err := os.CreateTemp(folder, ".textextract-probe-*")
	if err != nil {
		return common.NewAppError(common.CodeOutput, fmt.Sprintf("Output folder is not writable: %s", folder), err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
