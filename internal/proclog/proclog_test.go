package proclog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestOpenAndFinalize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)

	l, err := Open(dir, []string{"a.pdf"}, []string{"Total", "Tax"}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "extraction_20260502_083000.log"), l.Path())

	l.Info("stage.parse", "pages", 3)

	r := entity.NewExtractionResults(entity.Document{Filename: "a.pdf"})
	r.Matches = append(r.Matches, entity.NotFoundMatch("Tax", 1))
	batch := entity.SingleResult(r, []string{"Total", "Tax"})
	require.NoError(t, l.Finalize(StatusFor(batch), batch))
	require.NoError(t, l.Finalize(StatusFailure, nil))

	entries := readEntries(t, l.Path())
	require.Len(t, entries, 5)
	assert.Equal(t, "run.start", entries[0]["msg"])
	assert.Equal(t, "Total, Tax", entries[0]["keywords"])
	assert.Equal(t, "stage.parse", entries[1]["msg"])
	assert.Equal(t, "run.document", entries[2]["msg"])
	assert.EqualValues(t, 1, entries[2]["not_found"])
	assert.Equal(t, "run.summary", entries[3]["msg"])
	assert.Equal(t, "run.finish", entries[4]["msg"])
	assert.Equal(t, "success", entries[4]["status"])
}

func TestOpen_SameSecondGetsSuffix(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)

	a, err := Open(dir, nil, nil, now)
	require.NoError(t, err)
	b, err := Open(dir, nil, nil, now)
	require.NoError(t, err)

	assert.NotEqual(t, a.Path(), b.Path())
	assert.Equal(t, filepath.Join(dir, "extraction_20260502_083000_2.log"), b.Path())
	require.NoError(t, a.Finalize(StatusFailure, nil))
	require.NoError(t, b.Finalize(StatusFailure, nil))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusFailure, StatusFor(nil))
	assert.Equal(t, StatusFailure, StatusFor(entity.NewBatchResults(nil)))

	ok := entity.SingleResult(entity.NewExtractionResults(entity.Document{}), nil)
	assert.Equal(t, StatusSuccess, StatusFor(ok))

	withErr := entity.NewExtractionResults(entity.Document{})
	withErr.AddError(constants.ErrExtraction, "boom", nil)
	assert.Equal(t, StatusPartialSuccess, StatusFor(entity.SingleResult(withErr, nil)))
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("ignored")
	assert.Empty(t, l.Path())
	assert.NoError(t, l.Finalize(StatusSuccess, nil))
}
