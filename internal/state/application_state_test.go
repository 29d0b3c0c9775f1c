package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
)

func validDoc(name string) entity.Document {
	return entity.Document{Path: "/docs/" + name, Filename: name, FileType: constants.PDF, IsValid: true, State: constants.DocumentValid}
}

func invalidDoc(name, msg string) entity.Document {
	return entity.Document{Path: "/docs/" + name, Filename: name, FileType: constants.PDF, ErrorMessage: msg, State: constants.DocumentInvalid}
}

func keyword(t *testing.T, text string) entity.Keyword {
	t.Helper()
	kw, err := entity.NewKeyword(text)
	require.NoError(t, err)
	return kw
}

func resultWith(errs int, statuses ...constants.MatchStatus) *entity.ExtractionResults {
	r := entity.NewExtractionResults(validDoc("a.pdf"))
	for _, s := range statuses {
		value := "1"
		if s == constants.MatchNotFound {
			value = constants.NotFoundValue
		}
		r.Matches = append(r.Matches, entity.ExtractionMatch{Keyword: "k", Value: value, PageNumber: 1, Status: s})
	}
	for i := 0; i < errs; i++ {
		r.AddError(constants.ErrNumberExtraction, "boom", nil)
	}
	return r
}

func TestApplicationState_DocumentTransitions(t *testing.T) {
	s := NewApplicationState()
	assert.Equal(t, constants.StatusIdle, s.Status)

	require.NoError(t, s.SetDocuments([]entity.Document{validDoc("a.pdf")}))
	assert.Equal(t, constants.StatusFileSelected, s.Status)

	require.NoError(t, s.AddKeyword(keyword(t, "Salary")))
	assert.Equal(t, constants.StatusReady, s.Status)

	require.NoError(t, s.SetDocuments([]entity.Document{validDoc("a.pdf"), invalidDoc("b.pdf", "File is password-protected")}))
	assert.Equal(t, constants.StatusError, s.Status)
	assert.Equal(t, []string{"File is password-protected"}, s.ErrorMessages)
	assert.False(t, s.CanStartExtraction())

	require.NoError(t, s.SetDocuments([]entity.Document{validDoc("c.docx")}))
	assert.Equal(t, constants.StatusReady, s.Status)
	assert.True(t, s.CanStartExtraction())

	require.NoError(t, s.SetDocuments(nil))
	assert.Equal(t, constants.StatusIdle, s.Status)
}

func TestApplicationState_KeywordRules(t *testing.T) {
	s := NewApplicationState()
	require.NoError(t, s.SetDocuments([]entity.Document{validDoc("a.pdf")}))
	require.NoError(t, s.AddKeyword(keyword(t, "Salary")))

	err := s.AddKeyword(keyword(t, "SALARY"))
	assert.ErrorIs(t, err, common.ErrDuplicateKeyword)
	assert.Len(t, s.ActiveKeywords, 1)

	require.NoError(t, s.AddKeyword(keyword(t, "Bonus")))
	require.NoError(t, s.RemoveKeyword("salary"))
	assert.Equal(t, []string{"Bonus"}, s.KeywordTexts())
	assert.Equal(t, constants.StatusReady, s.Status)

	require.NoError(t, s.RemoveKeyword("bonus"))
	assert.Equal(t, constants.StatusFileSelected, s.Status)

	assert.ErrorIs(t, s.RemoveKeyword("absent"), common.ErrNotFound)

	empty := NewApplicationState()
	require.NoError(t, empty.AddKeyword(keyword(t, "Tax")))
	assert.Equal(t, constants.StatusIdle, empty.Status)
	require.NoError(t, empty.ClearKeywords())
	assert.Equal(t, constants.StatusIdle, empty.Status)
}

func TestApplicationState_ProcessingLifecycle(t *testing.T) {
	s := NewApplicationState()
	assert.ErrorIs(t, s.StartProcessing(), common.ErrCannotStart)

	require.NoError(t, s.SetDocuments([]entity.Document{validDoc("a.pdf")}))
	require.NoError(t, s.AddKeyword(keyword(t, "Salary")))
	s.ErrorMessages = []string{"old"}

	require.NoError(t, s.StartProcessing())
	assert.True(t, s.IsProcessing)
	assert.Equal(t, constants.StatusProcessing, s.Status)
	assert.Empty(t, s.ErrorMessages)
	assert.False(t, s.CanStartExtraction())

	assert.ErrorIs(t, s.AddKeyword(keyword(t, "Bonus")), common.ErrExtractionInProgress)
	assert.ErrorIs(t, s.ClearKeywords(), common.ErrExtractionInProgress)
	assert.ErrorIs(t, s.StartProcessing(), common.ErrCannotStart)

	require.NoError(t, s.FailProcessing("parser crashed"))
	assert.Equal(t, constants.StatusError, s.Status)
	assert.Equal(t, []string{"parser crashed"}, s.ErrorMessages)
	assert.True(t, s.CanStartExtraction())

	require.NoError(t, s.StartProcessing())
	batch := entity.SingleResult(resultWith(0, constants.MatchFound), []string{"Salary"})
	require.NoError(t, s.CompleteProcessing(batch))
	assert.Equal(t, constants.StatusComplete, s.Status)
	assert.True(t, s.CanStartExtraction())

	assert.ErrorIs(t, s.CompleteProcessing(batch), ErrNotProcessing)
	assert.ErrorIs(t, s.FailProcessing("late"), ErrNotProcessing)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		batch    *entity.BatchResults
		expected constants.ProcessingStatus
	}{
		{name: "no errors", batch: entity.SingleResult(resultWith(0, constants.MatchNotFound), nil), expected: constants.StatusComplete},
		{name: "errors with found", batch: entity.SingleResult(resultWith(1, constants.MatchFound, constants.MatchNotFound), nil), expected: constants.StatusPartialSuccess},
		{name: "errors only ambiguous", batch: entity.SingleResult(resultWith(1, constants.MatchAmbiguous), nil), expected: constants.StatusError},
		{name: "errors no matches", batch: entity.SingleResult(resultWith(1), nil), expected: constants.StatusError},
		{name: "nil", batch: nil, expected: constants.StatusError},
		{
			name: "error in one document, found in another",
			batch: func() *entity.BatchResults {
				b := entity.NewBatchResults(nil)
				b.AddResult(resultWith(1))
				b.AddResult(resultWith(0, constants.MatchFound))
				return b
			}(),
			expected: constants.StatusPartialSuccess,
		},
		{
			name: "nothing processed",
			batch: func() *entity.BatchResults {
				b := entity.NewBatchResults(nil)
				b.AddWarning("Skipped x.pdf: corrupted")
				return b
			}(),
			expected: constants.StatusError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveStatus(tt.batch))
		})
	}
}

func TestApplicationState_CloneIsDeep(t *testing.T) {
	s := NewApplicationState()
	require.NoError(t, s.SetDocuments([]entity.Document{validDoc("a.pdf")}))
	require.NoError(t, s.AddKeyword(keyword(t, "Salary")))
	require.NoError(t, s.StartProcessing())
	require.NoError(t, s.CompleteProcessing(entity.SingleResult(resultWith(0, constants.MatchFound), []string{"Salary"})))

	c := s.Clone()
	c.Documents[0].Filename = "changed"
	c.ActiveKeywords[0].Text = "changed"
	c.Results.Results[0].Matches[0].Value = "changed"
	c.Results.Keywords[0] = "changed"

	assert.Equal(t, "a.pdf", s.Documents[0].Filename)
	assert.Equal(t, "Salary", s.ActiveKeywords[0].Text)
	assert.Equal(t, "1", s.Results.Results[0].Matches[0].Value)
	assert.Equal(t, "Salary", s.Results.Keywords[0])
}
