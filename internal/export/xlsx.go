package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/smeshko/text-extractor/internal/entity"
)

const (
	matchesSheet  = "Matches"
	personalSheet = "Personal Info"
	warningsSheet = "Warnings"
)

// RenderXLSX returns a workbook (as bytes) with one row per match, one row
// per document's personal information and the collected warnings.
func RenderXLSX(results []*entity.ExtractionResults, batchWarnings []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the matches sheet.
	if err := f.SetSheetName(f.GetSheetName(0), matchesSheet); err != nil {
		return nil, err
	}
	for _, s := range []string{personalSheet, warningsSheet} {
		if _, err := f.NewSheet(s); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(matchesSheet)
	f.SetActiveSheet(activeIndex)

	w := &sheetWriter{f: f}

	w.header(matchesSheet, "Document", "Keyword", "Value", "Status", "Page", "Line", "Warning")
	row := 2
	for _, r := range results {
		for _, m := range r.Matches {
			line := ""
			if m.LineNumber != nil {
				line = strconv.Itoa(*m.LineNumber)
			}
			w.row(matchesSheet, row, r.Document.Filename, m.Keyword, m.Value, string(m.Status), m.PageNumber, line, truncate(m.Warning, 140))
			row++
		}
	}

	w.header(personalSheet, "Document", "First Name", "Middle Name", "Last Name", "ID Number", "Age", "Character Set", "Page", "Complete")
	for i, r := range results {
		pi := r.PersonalInfo
		age := ""
		if pi.Age != nil {
			age = strconv.Itoa(*pi.Age)
		}
		page := ""
		if pi.ExtractionPage > 0 {
			page = strconv.Itoa(pi.ExtractionPage)
		}
		w.row(personalSheet, i+2, r.Document.Filename, pi.FirstName, pi.MiddleName, pi.LastName,
			pi.MaskedID(), age, pi.CharacterSet.Title(), page, pi.IsComplete)
	}

	w.header(warningsSheet, "Document", "Warning")
	row = 2
	for _, msg := range batchWarnings {
		w.row(warningsSheet, row, "", msg)
		row++
	}
	for _, r := range results {
		for _, msg := range r.Warnings {
			w.row(warningsSheet, row, r.Document.Filename, msg)
			row++
		}
		for _, e := range r.Errors {
			w.row(warningsSheet, row, r.Document.Filename, "Error: "+e.Message)
			row++
		}
	}
	if w.err != nil {
		return nil, w.err
	}

	_ = f.SetColWidth(matchesSheet, "A", "A", 32) // document
	_ = f.SetColWidth(matchesSheet, "B", "C", 20) // keyword, value
	_ = f.SetColWidth(matchesSheet, "G", "G", 60) // warning
	_ = f.SetColWidth(personalSheet, "A", "A", 32)
	_ = f.SetColWidth(personalSheet, "B", "G", 16)
	_ = f.SetColWidth(warningsSheet, "A", "A", 32)
	_ = f.SetColWidth(warningsSheet, "B", "B", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first cell error so rows can be written without
// checking each call.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) header(sheet string, titles ...string) {
	vals := make([]any, len(titles))
	for i, t := range titles {
		vals[i] = t
	}
	w.row(sheet, 1, vals...)
}

func (w *sheetWriter) row(sheet string, row int, vals ...any) {
	if w.err != nil {
		return
	}
	for i, v := range vals {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
