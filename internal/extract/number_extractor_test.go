package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

func TestNumberExtractor_Classification(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		value   string
		status  constants.MatchStatus
		warning string
	}{
		{name: "thousands", line: "Salary 1,234 USD", value: "1,234", status: constants.MatchAmbiguous, warning: "thousands separator"},
		{name: "unusual comma", line: "Salary 1,23 USD", value: "1,23", status: constants.MatchAmbiguous, warning: "unusual format"},
		{name: "decimal", line: "Salary 1234.50", value: "1234.50", status: constants.MatchFound},
		{name: "thousands with decimal", line: "Salary: 1,234.56", value: "1,234.56", status: constants.MatchFound},
		{name: "plain integer", line: "Salary 42 days", value: "42", status: constants.MatchFound},
		{name: "large integer", line: "Salary 1234567", value: "1234567", status: constants.MatchFound},
		{name: "millions", line: "Salary 1,234,567", value: "1,234,567", status: constants.MatchAmbiguous, warning: "thousands separator"},
		{name: "number before keyword ignored", line: "2024 Salary 300", value: "300", status: constants.MatchFound},
		{name: "no number after keyword", line: "99 Salary pending", value: constants.NotFoundValue, status: constants.MatchNotFound},
		{name: "case insensitive", line: "SALARY: 77", value: "77", status: constants.MatchFound},
		{name: "digits after latin letter", line: "Salary x100", value: constants.NotFoundValue, status: constants.MatchNotFound},
		{name: "digits after cyrillic letter", line: "Salary за100", value: constants.NotFoundValue, status: constants.MatchNotFound},
		{name: "digits before cyrillic letter", line: "Salary 100лв", value: constants.NotFoundValue, status: constants.MatchNotFound},
		{name: "glued token skipped for next", line: "Salary 100лв 250", value: "250", status: constants.MatchFound},
		{name: "cyrillic text around number", line: "Salary за месец 1500 лв", value: "1500", status: constants.MatchFound},
		{name: "decimal glued to letter keeps integer part", line: "Salary 12.5x", value: "12", status: constants.MatchFound},
		{name: "number at line start of remainder", line: "Salary:300", value: "300", status: constants.MatchFound},
	}

	ex := NewNumberExtractor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := entity.NewKeywordMatch("Salary", 1, 3, tt.line)
			require.NoError(t, err)

			out, err := ex.ExtractNumbers(context.Background(), []entity.KeywordMatch{km})
			require.NoError(t, err)
			require.Len(t, out, 1)

			m := out[0]
			assert.Equal(t, tt.value, m.Value)
			assert.Equal(t, tt.status, m.Status)
			require.NotNil(t, m.LineNumber)
			assert.Equal(t, 3, *m.LineNumber)
			if tt.warning == "" {
				assert.Empty(t, m.Warning)
			} else {
				assert.Contains(t, m.Warning, tt.warning)
			}
		})
	}
}

func TestNumberExtractor_OneOutputPerInput(t *testing.T) {
	matches := []entity.KeywordMatch{
		{Keyword: "Salary", PageNumber: 1, LineNumber: 1, LineText: "Salary 10"},
		{Keyword: "Salary", PageNumber: 2, LineNumber: 4, LineText: "Salary none"},
		{Keyword: "Bonus", PageNumber: 1, LineNumber: 2, LineText: "Bonus 5.5"},
	}
	out, err := NewNumberExtractor(nil).ExtractNumbers(context.Background(), matches)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "10", out[0].Value)
	assert.Equal(t, constants.NotFoundValue, out[1].Value)
	assert.Equal(t, 2, out[1].PageNumber)
	assert.Equal(t, "5.5", out[2].Value)
}

func TestNumberExtractor_KeywordNotOnLine(t *testing.T) {
	km := entity.KeywordMatch{Keyword: "Salary", PageNumber: 1, LineNumber: 1, LineText: "Bonus 100"}
	out, err := NewNumberExtractor(nil).ExtractNumbers(context.Background(), []entity.KeywordMatch{km})
	require.NoError(t, err)
	assert.Equal(t, constants.MatchNotFound, out[0].Status)
}
