package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func intPtr(v int) *int { return &v }

func sampleResult(t *testing.T, name string) *entity.ExtractionResults {
	t.Helper()
	doc, err := entity.NewDocumentFromPath(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	doc.PageCount = 2

	r := entity.NewExtractionResults(doc)
	r.Timestamp = fixedNow
	r.ProcessingTime = 1250 * time.Millisecond
	r.PersonalInfo = entity.PersonalInformation{
		FirstName:      "Иван",
		MiddleName:     "Йорданов",
		LastName:       "Тодоров",
		IDNumberPrefix: "8501",
		Age:            intPtr(33),
		CharacterSet:   constants.CharsetCyrillic,
		ExtractionPage: 1,
		IsComplete:     true,
	}
	r.Matches = []entity.ExtractionMatch{
		{Keyword: "Total", Value: "1,234.50", PageNumber: 1, LineNumber: intPtr(3), Status: constants.MatchFound},
		{Keyword: "Total", Value: "1,234", PageNumber: 2, LineNumber: intPtr(7), Status: constants.MatchAmbiguous,
			Warning: "Value '1,234' interpreted as thousands separator"},
		{Keyword: "Tax", Value: constants.NotFoundValue, PageNumber: 1, Status: constants.MatchNotFound},
	}
	r.Warnings = []string{"Value '1,234' interpreted as thousands separator"}
	return r
}
