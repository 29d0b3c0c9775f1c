package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
)

func TestFilename(t *testing.T) {
	full := entity.PersonalInformation{FirstName: "John", LastName: "Doe", Age: intPtr(25)}
	assert.Equal(t, "JD-25.txt", Filename(full, "txt", fixedNow))
	assert.Equal(t, "JD-25.xlsx", Filename(full, ".xlsx", fixedNow))

	cyr := entity.PersonalInformation{FirstName: "иван", MiddleName: "йорданов", LastName: "тодоров", Age: intPtr(33)}
	assert.Equal(t, "ИЙТ-33.txt", Filename(cyr, "txt", fixedNow))

	noAge := entity.PersonalInformation{FirstName: "John", LastName: "Doe"}
	assert.Equal(t, "output_20260314_092653.txt", Filename(noAge, "txt", fixedNow))
	assert.Equal(t, "output_20260314_092653.json", Filename(entity.EmptyPersonalInformation(), "json", fixedNow))
}

func TestUniquePath(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "/out/a.txt", uniquePath(used, "/out/a.txt"))
	assert.Equal(t, "/out/a_2.txt", uniquePath(used, "/out/a.txt"))
	assert.Equal(t, "/out/a_3.txt", uniquePath(used, "/out/a.txt"))
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, "1,234.50;", cellValue(entity.ExtractionMatch{Value: "1,234.50", Status: constants.MatchFound}))
	assert.Equal(t, "1,23; [Ambiguous]", cellValue(entity.ExtractionMatch{Value: "1,23", Status: constants.MatchAmbiguous}))
	assert.Equal(t, "Not found", cellValue(entity.ExtractionMatch{Value: "Not found", Status: constants.MatchNotFound}))
	assert.Equal(t, "n/a", cellValue(entity.ExtractionMatch{Value: "n/a", Status: constants.MatchFound}))
}

func TestRenderText(t *testing.T) {
	out := RenderText(sampleResult(t, "report.pdf"))

	assert.True(t, strings.HasPrefix(out, "Document: report.pdf\nProcessed: 2026-03-14 09:26:53\n"))
	for _, want := range []string{
		"--- Personal Information ---",
		"ИМЕ", "ГОДИНИ", "ИЙТ;", "33",
		"--- Keyword Extractions ---",
		"1,234.50;", "1,234; [Ambiguous]", "Not found",
		"Total keywords: 2 (Tax, Total)",
		"Successful extractions: 1",
		"Not found: 1",
		"Ambiguous: 1",
		"Processing time: 1.25 seconds",
		"- Value '1,234' interpreted as thousands separator",
		"--- Errors ---\nNone",
	} {
		assert.Contains(t, out, want)
	}
	// Keyword columns are sorted.
	assert.Less(t, strings.Index(out, "Tax"), strings.Index(out, "Total"))
}

func TestRenderText_LabelledFallback(t *testing.T) {
	r := sampleResult(t, "report.docx")
	r.PersonalInfo = entity.PersonalInformation{FirstName: "Anna", IDNumberPrefix: "1234", CharacterSet: constants.CharsetLatin}
	r.Matches = nil
	r.AddError(constants.ErrNumberExtraction, "Failed to extract numbers: boom", nil)

	out := RenderText(r)
	assert.Contains(t, out, "First Name: Anna\n")
	assert.Contains(t, out, "Last Name: Not found\n")
	assert.Contains(t, out, "ID Number: 1234******\n")
	assert.Contains(t, out, "Character Set: Latin\n")
	assert.Contains(t, out, "No keyword extractions performed")
	assert.Contains(t, out, "Total keywords: 0")
	assert.Contains(t, out, "- Failed to extract numbers: boom")
	assert.NotContains(t, out, "Ambiguous:")
}

func TestRenderJSON_ValidatesAgainstSchema(t *testing.T) {
	b := entity.SingleResult(sampleResult(t, "report.pdf"), []string{"Total", "Tax"})

	data, err := RenderJSON(b)
	require.NoError(t, err)

	var rep Report
	require.NoError(t, json.Unmarshal(data, &rep))
	require.Len(t, rep.Documents, 1)
	assert.Equal(t, "8501******", rep.Documents[0].PersonalInfo.IDNumber)
	assert.Equal(t, []string{"Total", "Tax"}, rep.Keywords)
	assert.Len(t, rep.Documents[0].Matches, 3)
}

func TestValidateJSONAgainstSchema_Rejects(t *testing.T) {
	bad := []byte(`{"id":"x","timestamp":"t","keywords":[],"warnings":[],"documents":[{"document":"a.pdf","file_type":"txt","personal_info":{"character_set":"latin","is_complete":false},"matches":[],"warnings":[],"errors":[]}]}`)
	err := ValidateJSONAgainstSchema(BuildReportJSONSchema(), bad)
	assert.Error(t, err)
}

func TestRenderXLSX(t *testing.T) {
	r := sampleResult(t, "report.pdf")
	data, err := RenderXLSX([]*entity.ExtractionResults{r}, []string{"other.pdf: File not found"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(matchesSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Total", v)
	v, err = f.GetCellValue(matchesSheet, "D4")
	require.NoError(t, err)
	assert.Equal(t, "not_found", v)

	v, err = f.GetCellValue(personalSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "8501******", v)

	v, err = f.GetCellValue(warningsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "other.pdf: File not found", v)
}

func TestService_WriteSingle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	svc := NewService(common.OutputConfig{Folder: dir, Formats: []string{"txt", "json"}}, nil, WithClock(func() time.Time { return fixedNow }))

	r := sampleResult(t, "report.pdf")
	paths, err := svc.Write(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "ИЙТ-33.txt"), filepath.Join(dir, "ИЙТ-33.json")}, paths)
	assert.Equal(t, paths, r.OutputPaths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Document: report.pdf")
}

func TestService_WriteBatch(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(common.OutputConfig{Folder: dir, Formats: []string{"txt", "xlsx"}}, nil, WithClock(func() time.Time { return fixedNow }))

	a := sampleResult(t, "a.pdf")
	b := sampleResult(t, "b.pdf")
	b.PersonalInfo = entity.EmptyPersonalInformation()
	c := sampleResult(t, "c.pdf")
	c.PersonalInfo = entity.EmptyPersonalInformation()

	batch := entity.NewBatchResults([]string{"Total", "Tax"})
	batch.AddResult(a)
	batch.AddResult(b)
	batch.AddResult(c)
	batch.AddWarning("d.pdf: File not found")

	paths, err := svc.WriteBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "ИЙТ-33.txt"),
		filepath.Join(dir, "output_20260314_092653.txt"),
		filepath.Join(dir, "output_20260314_092653_2.txt"),
		filepath.Join(dir, "batch_20260314_092653.txt"),
		filepath.Join(dir, "batch_20260314_092653.xlsx"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
	assert.Equal(t, []string{filepath.Join(dir, "output_20260314_092653_2.txt"), filepath.Join(dir, "batch_20260314_092653.xlsx")}, c.OutputPaths)

	summary, err := os.ReadFile(filepath.Join(dir, "batch_20260314_092653.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "3 documents processed")
	assert.Contains(t, string(summary), "- d.pdf: File not found")
}

func TestEnsureWritable(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, EnsureWritable(filepath.Join(dir, "new", "nested")))

	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	err := EnsureWritable(file)
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeOutput, appErr.Code)
}
