package export

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

var numericValue = regexp.MustCompile(`^\d+(?:,\d+)*(?:\.\d+)?$`)

// cellValue renders a match for the keyword table. Numeric values get a
// trailing ";", ambiguous ones an "[Ambiguous]" marker.
func cellValue(m entity.ExtractionMatch) string {
	switch m.Status {
	case constants.MatchNotFound:
		return constants.NotFoundValue
	case constants.MatchAmbiguous:
		return withSemicolon(m.Value) + " [Ambiguous]"
	default:
		return withSemicolon(m.Value)
	}
}

func withSemicolon(v string) string {
	if numericValue.MatchString(v) {
		return v + ";"
	}
	return v
}

func writeTable(sb *strings.Builder, headers []string, rows [][]string) {
	t := tablewriter.NewWriter(sb)
	t.SetHeader(headers)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetTablePadding("    ")
	t.SetNoWhiteSpace(true)
	t.AppendBulk(rows)
	t.Render()
}

// RenderText formats one result as the plain-text report.
func RenderText(r *entity.ExtractionResults) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Document: %s\n", r.Document.Filename)
	fmt.Fprintf(&sb, "Processed: %s\n\n", r.Timestamp.Format("2006-01-02 15:04:05"))

	sb.WriteString("--- Personal Information ---\n")
	pi := r.PersonalInfo
	if pi.FullName() != "" && pi.Age != nil {
		initials := pi.Initials()
		if initials == "" {
			initials = "???"
		}
		writeTable(&sb, []string{"ИМЕ", "ГОДИНИ"}, [][]string{{initials + ";", strconv.Itoa(*pi.Age)}})
	} else {
		fmt.Fprintf(&sb, "First Name: %s\n", orNotFound(pi.FirstName))
		fmt.Fprintf(&sb, "Last Name: %s\n", orNotFound(pi.LastName))
		fmt.Fprintf(&sb, "ID Number: %s\n", orNotFound(pi.MaskedID()))
		if pi.CharacterSet != constants.CharsetUnknown && pi.CharacterSet != "" {
			fmt.Fprintf(&sb, "Character Set: %s\n", pi.CharacterSet.Title())
		}
	}
	sb.WriteString("\n")

	sb.WriteString("--- Keyword Extractions ---\n")
	order, groups := r.MatchesByKeyword()
	if len(order) == 0 {
		sb.WriteString("No keyword extractions performed\n")
	} else {
		headers := append([]string(nil), order...)
		sort.Strings(headers)
		depth := 0
		for _, k := range headers {
			depth = max(depth, len(groups[k]))
		}
		rows := make([][]string, depth)
		for i := range rows {
			rows[i] = make([]string, len(headers))
			for j, k := range headers {
				if i < len(groups[k]) {
					rows[i][j] = cellValue(groups[k][i])
				}
			}
		}
		writeTable(&sb, headers, rows)
	}
	sb.WriteString("\n")

	sb.WriteString("--- Processing Summary ---\n")
	if len(order) > 0 {
		sorted := append([]string(nil), order...)
		sort.Strings(sorted)
		fmt.Fprintf(&sb, "Total keywords: %d (%s)\n", len(sorted), strings.Join(sorted, ", "))
	} else {
		sb.WriteString("Total keywords: 0\n")
	}
	fmt.Fprintf(&sb, "Successful extractions: %d\n", r.SuccessCount())
	fmt.Fprintf(&sb, "Not found: %d\n", r.NotFoundCount())
	if n := r.AmbiguousCount(); n > 0 {
		fmt.Fprintf(&sb, "Ambiguous: %d\n", n)
	}
	fmt.Fprintf(&sb, "Processing time: %.2f seconds\n\n", r.ProcessingSeconds())

	sb.WriteString("--- Warnings ---\n")
	writeList(&sb, r.Warnings)
	sb.WriteString("\n")

	sb.WriteString("--- Errors ---\n")
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	writeList(&sb, msgs)

	return sb.String()
}

// RenderBatchText formats the batch summary written next to per-document reports.
func RenderBatchText(b *entity.BatchResults) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch: %s\n", b.StatusSummary())
	fmt.Fprintf(&sb, "Processed: %s\n", b.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Keywords: %s\n\n", strings.Join(b.Keywords, ", "))

	rows := make([][]string, 0, len(b.Results))
	for _, r := range b.Results {
		rows = append(rows, []string{
			r.Document.Filename,
			strconv.Itoa(r.SuccessCount()),
			strconv.Itoa(r.NotFoundCount()),
			strconv.Itoa(r.AmbiguousCount()),
			fmt.Sprintf("%.2f", r.ProcessingSeconds()),
		})
	}
	writeTable(&sb, []string{"Document", "Found", "Not found", "Ambiguous", "Seconds"}, rows)
	sb.WriteString("\n--- Warnings ---\n")
	writeList(&sb, b.Warnings)
	return sb.String()
}

func writeList(sb *strings.Builder, items []string) {
	if len(items) == 0 {
		sb.WriteString("None\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
}

func orNotFound(s string) string {
	if s == "" {
		return constants.NotFoundValue
	}
	return s
}
