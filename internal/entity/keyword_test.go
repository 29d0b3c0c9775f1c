package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeshko/text-extractor/constants"
)

func TestNewKeyword(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantText string
		wantNorm string
		wantErr  error
	}{
		{name: "trims", in: "  Salary \t", wantText: "Salary", wantNorm: "salary"},
		{name: "cyrillic", in: "ЗАПЛАТА", wantText: "ЗАПЛАТА", wantNorm: "заплата"},
		{name: "empty", in: "", wantErr: ErrEmptyKeyword},
		{name: "blank", in: "   ", wantErr: ErrEmptyKeyword},
		{name: "exactly max runes", in: strings.Repeat("ж", MaxKeywordLength), wantText: strings.Repeat("ж", MaxKeywordLength), wantNorm: strings.Repeat("ж", MaxKeywordLength)},
		{name: "too long", in: strings.Repeat("ж", MaxKeywordLength+1), wantErr: ErrKeywordTooLong},
		{name: "max length after trim", in: " " + strings.Repeat("a", MaxKeywordLength) + " ", wantText: strings.Repeat("a", MaxKeywordLength), wantNorm: strings.Repeat("a", MaxKeywordLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw, err := NewKeyword(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, kw.Text)
			assert.Equal(t, tt.wantNorm, kw.Normalized)
			assert.True(t, kw.IsActive)
			assert.False(t, kw.IsHistorical)
		})
	}
}

func TestKeyword_EqualIgnoresCase(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Salary", "SALARY", true},
		{"Заплата", "заплата", true},
		{"ЗАПЛАТА", " заплата ", true},
		{"Salary", "Bonus", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			a, err := NewKeyword(tt.a)
			require.NoError(t, err)
			b, err := NewKeyword(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Equal(b))
		})
	}
	assert.Equal(t, "доход", NormalizeKeyword(" ДоХоД "))
}

func TestNewExtractionMatch(t *testing.T) {
	line := func(n int) *int { return &n }
	tests := []struct {
		name    string
		value   string
		page    int
		line    *int
		status  constants.MatchStatus
		wantErr string
	}{
		{name: "found", value: "100", page: 1, line: line(2), status: constants.MatchFound},
		{name: "not found with marker", value: constants.NotFoundValue, page: 1, status: constants.MatchNotFound},
		{name: "not found with value", value: "100", page: 1, status: constants.MatchNotFound, wantErr: "not_found match"},
		{name: "page zero", value: "1", page: 0, status: constants.MatchFound, wantErr: "page number"},
		{name: "line zero", value: "1", page: 1, line: line(0), status: constants.MatchFound, wantErr: "line number"},
		{name: "unknown status", value: "1", page: 1, status: constants.MatchStatus("maybe"), wantErr: "invalid match status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewExtractionMatch("Salary", tt.value, tt.page, tt.line, tt.status, "")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, m.Status)
			if tt.line != nil {
				require.NotNil(t, m.LineNumber)
				assert.Equal(t, *tt.line, *m.LineNumber)
				*tt.line = 99
				assert.NotEqual(t, 99, *m.LineNumber)
			}
		})
	}
}

func TestNewKeywordMatch(t *testing.T) {
	_, err := NewKeywordMatch("Salary", 0, 1, "Salary 1")
	assert.ErrorContains(t, err, "page number")
	_, err = NewKeywordMatch("Salary", 1, 0, "Salary 1")
	assert.ErrorContains(t, err, "line number")
	_, err = NewKeywordMatch("Salary", 1, 1, "")
	assert.ErrorContains(t, err, "line text")

	km, err := NewKeywordMatch("Salary", 2, 3, "Salary 1")
	require.NoError(t, err)
	assert.Equal(t, KeywordMatch{Keyword: "Salary", PageNumber: 2, LineNumber: 3, LineText: "Salary 1"}, km)
}

func TestNotFoundMatch(t *testing.T) {
	m := NotFoundMatch("Bonus", 0)
	assert.Equal(t, 1, m.PageNumber)
	assert.Nil(t, m.LineNumber)
	assert.True(t, m.IsNotFound())
	assert.Equal(t, constants.NotFoundValue, m.Value)
}

func TestNewPageContent(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		lines []string
		want  []string
	}{
		{name: "lf", text: "a\nb", want: []string{"a", "b"}},
		{name: "crlf", text: "a\r\nb\r\nc", want: []string{"a", "b", "c"}},
		{name: "cr", text: "a\rb", want: []string{"a", "b"}},
		{name: "mixed keeps empty lines", text: "a\r\n\rb\n", want: []string{"a", "", "b", ""}},
		{name: "empty text", text: "", want: []string{}},
		{name: "explicit lines win", text: "a\nb", lines: []string{"x"}, want: []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPageContent(1, tt.text, tt.lines)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Lines)
		})
	}

	_, err := NewPageContent(0, "a", nil)
	assert.ErrorContains(t, err, "page number")
}

func TestPageContent_CloneIsIndependent(t *testing.T) {
	p, err := NewPageContent(1, "a\nb", nil)
	require.NoError(t, err)
	c := p.Clone()
	c.Lines[0] = "changed"
	assert.Equal(t, "a", p.Lines[0])
}
