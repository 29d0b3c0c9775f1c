package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCandidate(t *testing.T) {
	assert.True(t, Candidate("/in/report.PDF"))
	assert.True(t, Candidate("/in/letter.docx"))
	assert.True(t, Candidate("/in/old.doc"))
	assert.False(t, Candidate("/in/scan.png"))
	assert.False(t, Candidate("/in/.hidden.pdf"))
	assert.False(t, Candidate("/in/~$letter.docx"))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"), "b")
	touch(t, filepath.Join(root, "a.docx"), "a")
	touch(t, filepath.Join(root, "notes.txt"), "n")
	touch(t, filepath.Join(root, "sub", "c.doc"), "c")
	touch(t, filepath.Join(root, ".cache", "d.pdf"), "d")
	touch(t, filepath.Join(root, "~$a.docx"), "lock")

	paths, stats, err := ScanDirectory(context.Background(), root, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.docx"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "c.doc"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)

	paths, _, err = ScanDirectory(context.Background(), root, false, nil)
	require.NoError(t, err)
	assert.Contains(t, paths, filepath.Join(root, ".cache", "d.pdf"))

	_, _, err = ScanDirectory(context.Background(), " ", true, nil)
	assert.Error(t, err)
}

func TestDeduper(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	c := filepath.Join(dir, "c.pdf")
	touch(t, a, "same bytes")
	touch(t, b, "same bytes")
	touch(t, c, "other bytes")

	d := NewDeduper()
	h, first, dup, err := d.Seen(a)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.Equal(t, a, first)
	assert.Len(t, h, 64)

	_, first, dup, err = d.Seen(b)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, a, first)

	_, _, dup, err = d.Seen(c)
	require.NoError(t, err)
	assert.False(t, dup)

	d.Forget(h)
	_, _, dup, err = d.Seen(b)
	require.NoError(t, err)
	assert.False(t, dup)

	_, _, _, err = d.Seen(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestStartWatcher_InitialScanAndNewFiles(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.pdf")
	touch(t, existing, "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 200 * time.Millisecond})
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, existing, p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit existing document")
	}

	created := filepath.Join(root, "new.docx")
	touch(t, created, "first")
	touch(t, created, "second")
	touch(t, filepath.Join(root, "ignored.txt"), "x")

	select {
	case p := <-events:
		assert.Equal(t, created, p)
	case <-time.After(3 * time.Second):
		t.Fatal("new document was not emitted")
	}

	// The burst was coalesced into one event.
	select {
	case p := <-events:
		t.Fatalf("unexpected extra event for %s", p)
	case <-time.After(600 * time.Millisecond):
	}

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
