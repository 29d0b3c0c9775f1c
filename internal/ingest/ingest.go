package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Deduper remembers content hashes so the same bytes are processed once,
// whatever the file is called.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]string // hash -> first path
}

func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]string)}
}

// Seen hashes path and reports whether identical content was seen before.
// The first path that carried the content is returned as well.
func (d *Deduper) Seen(path string) (hashHex string, firstPath string, dup bool, err error) {
	hashHex, err = HashFile(path)
	if err != nil {
		return "", "", false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if first, ok := d.seen[hashHex]; ok {
		return hashHex, first, true, nil
	}
	d.seen[hashHex] = path
	return hashHex, path, false, nil
}

// Forget drops a hash so the content can be processed again.
func (d *Deduper) Forget(hashHex string) {
	d.mu.Lock()
	delete(d.seen, hashHex)
	d.mu.Unlock()
}

// HashFile returns the hex SHA-256 of the file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
