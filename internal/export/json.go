package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

// Report is the JSON form of a batch. ID numbers are masked.
type Report struct {
	ID        string           `json:"id"`
	Timestamp string           `json:"timestamp"`
	Keywords  []string         `json:"keywords"`
	Summary   string           `json:"summary"`
	Warnings  []string         `json:"warnings"`
	Documents []DocumentReport `json:"documents"`
}

type DocumentReport struct {
	Document          string         `json:"document"`
	Path              string         `json:"path"`
	FileType          string         `json:"file_type"`
	PageCount         int            `json:"page_count"`
	PersonalInfo      PersonalReport `json:"personal_info"`
	Matches           []MatchReport  `json:"matches"`
	Warnings          []string       `json:"warnings"`
	Errors            []ErrorReport  `json:"errors"`
	ProcessingSeconds float64        `json:"processing_seconds"`
	Timestamp         string         `json:"timestamp"`
}

type PersonalReport struct {
	FirstName      string `json:"first_name,omitempty"`
	MiddleName     string `json:"middle_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	IDNumber       string `json:"id_number,omitempty"`
	Age            *int   `json:"age,omitempty"`
	CharacterSet   string `json:"character_set"`
	ExtractionPage int    `json:"extraction_page,omitempty"`
	IsComplete     bool   `json:"is_complete"`
}

type MatchReport struct {
	Keyword    string `json:"keyword"`
	Value      string `json:"value"`
	Status     string `json:"status"`
	PageNumber int    `json:"page_number"`
	LineNumber *int   `json:"line_number,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

type ErrorReport struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// BuildReportJSONSchema returns the report schema as a generic map.
func BuildReportJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}
	strList := map[string]any{"type": "array", "items": str}
	statuses := []string{string(constants.MatchFound), string(constants.MatchNotFound), string(constants.MatchAmbiguous)}

	match := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"keyword":     map[string]any{"type": "string", "minLength": 1},
			"value":       str,
			"status":      map[string]any{"type": "string", "enum": statuses},
			"page_number": map[string]any{"type": "integer", "minimum": 1},
			"line_number": map[string]any{"type": "integer", "minimum": 1},
			"warning":     str,
		},
		"required": []string{"keyword", "value", "status", "page_number"},
	}
	personal := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"first_name":      str,
			"middle_name":     str,
			"last_name":       str,
			"id_number":       map[string]any{"type": "string", "pattern": `^\d{4}\*+$`},
			"age":             map[string]any{"type": "integer", "minimum": 0, "maximum": 150},
			"character_set":   map[string]any{"type": "string", "enum": constants.CharsetStrings()},
			"extraction_page": map[string]any{"type": "integer", "minimum": 1},
			"is_complete":     map[string]any{"type": "boolean"},
		},
		"required": []string{"character_set", "is_complete"},
	}
	errItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":    str,
			"message": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"type", "message"},
	}
	document := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"document":           map[string]any{"type": "string", "minLength": 1},
			"path":               str,
			"file_type":          map[string]any{"type": "string", "enum": []string{"pdf", "docx", "doc"}},
			"page_count":         map[string]any{"type": "integer", "minimum": 0},
			"personal_info":      personal,
			"matches":            map[string]any{"type": "array", "items": match},
			"warnings":           strList,
			"errors":             map[string]any{"type": "array", "items": errItem},
			"processing_seconds": map[string]any{"type": "number", "minimum": 0},
			"timestamp":          str,
		},
		"required": []string{"document", "file_type", "personal_info", "matches", "warnings", "errors"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"id":        str,
			"timestamp": str,
			"keywords":  strList,
			"summary":   str,
			"warnings":  strList,
			"documents": map[string]any{"type": "array", "items": document},
		},
		"required": []string{"id", "timestamp", "keywords", "documents", "warnings"},
	}
}

// NewReport converts a batch into its JSON form.
func NewReport(b *entity.BatchResults) Report {
	rep := Report{
		ID:        b.ID.String(),
		Timestamp: b.Timestamp.Format(time.RFC3339),
		Keywords:  append([]string{}, b.Keywords...),
		Summary:   b.StatusSummary(),
		Warnings:  append([]string{}, b.Warnings...),
		Documents: make([]DocumentReport, 0, len(b.Results)),
	}
	for _, r := range b.Results {
		pi := r.PersonalInfo
		doc := DocumentReport{
			Document:  r.Document.Filename,
			Path:      r.Document.Path,
			FileType:  string(r.Document.FileType),
			PageCount: r.Document.PageCount,
			PersonalInfo: PersonalReport{
				FirstName:      pi.FirstName,
				MiddleName:     pi.MiddleName,
				LastName:       pi.LastName,
				IDNumber:       pi.MaskedID(),
				Age:            pi.Age,
				CharacterSet:   string(pi.CharacterSet),
				ExtractionPage: pi.ExtractionPage,
				IsComplete:     pi.IsComplete,
			},
			Matches:           make([]MatchReport, 0, len(r.Matches)),
			Warnings:          append([]string{}, r.Warnings...),
			Errors:            make([]ErrorReport, 0, len(r.Errors)),
			ProcessingSeconds: r.ProcessingSeconds(),
			Timestamp:         r.Timestamp.Format(time.RFC3339),
		}
		if doc.PersonalInfo.CharacterSet == "" {
			doc.PersonalInfo.CharacterSet = string(constants.CharsetUnknown)
		}
		for _, m := range r.Matches {
			doc.Matches = append(doc.Matches, MatchReport{
				Keyword:    m.Keyword,
				Value:      m.Value,
				Status:     string(m.Status),
				PageNumber: m.PageNumber,
				LineNumber: m.LineNumber,
				Warning:    m.Warning,
			})
		}
		for _, e := range r.Errors {
			doc.Errors = append(doc.Errors, ErrorReport{Type: string(e.Type), Message: e.Message})
		}
		rep.Documents = append(rep.Documents, doc)
	}
	return rep
}

// RenderJSON marshals the batch report and validates it against its schema.
func RenderJSON(b *entity.BatchResults) ([]byte, error) {
	data, err := json.MarshalIndent(NewReport(b), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := ValidateJSONAgainstSchema(BuildReportJSONSchema(), data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("report.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("report.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
