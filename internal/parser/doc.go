package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/richardlehane/mscfb"
)

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

const antiwordTimeout = 30 * time.Second

// DOCParser handles legacy Word documents through the antiword binary.
type DOCParser struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewDOCParser(cfg Config, runner Runner, logger *slog.Logger) *DOCParser {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &DOCParser{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// Validate checks the OLE container and the FIB encryption flag.
// antiword is not needed here, so a document can be selected without it.
func (p *DOCParser) Validate(_ context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return newError(ErrPermissionDenied, path, fmt.Sprintf("File is not readable: %s", path), err)
	}
	defer f.Close()

	magic := make([]byte, len(oleMagic))
	if _, err := io.ReadFull(f, magic); err != nil || !bytes.Equal(magic, oleMagic) {
		return newError(ErrCorrupted, path, "Unable to parse document. The file may be corrupted or invalid.", err)
	}

	encrypted, err := wordDocumentEncrypted(f)
	if err != nil {
		p.logger.Debug("parser.doc.fib_unreadable", "path", path, "err", err)
		return nil
	}
	if encrypted {
		return newError(ErrPasswordProtected, path, "Password-protected .doc files are not supported", nil)
	}
	return nil
}

// wordDocumentEncrypted reads fEncrypted from the File Information Block
// at the start of the WordDocument stream.
func wordDocumentEncrypted(r io.ReaderAt) (bool, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return false, err
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != "WordDocument" {
			continue
		}
		header := make([]byte, 68)
		if _, err := io.ReadFull(entry, header); err != nil {
			return false, err
		}
		return header[11]&0x01 != 0, nil
	}
	return false, errors.New("WordDocument stream not found")
}

func (p *DOCParser) text(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, antiwordTimeout)
	defer cancel()

	stdout, stderr, err := p.runner.Run(ctx, p.cfg.AntiwordPath, "-w", "0", path)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", newError(ErrParserUnavailable, path,
				"DOC file support requires antiword. Install antiword and try again.", err)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", newError(ErrCorrupted, path, "Document processing timed out", err)
		}
		p.logger.Warn("parser.doc.antiword_failed", "path", path, "stderr", truncate(string(stderr), 512))
		return "", newError(ErrCorrupted, path, "Unable to parse document. The file may be corrupted or invalid.", err)
	}
	return normalizeText(decodeTextBytes(stdout)), nil
}

func (p *DOCParser) Parse(ctx context.Context, path string) (*ParseResult, error) {
	if err := p.Validate(ctx, path); err != nil {
		return nil, err
	}
	text, err := p.text(ctx, path)
	if err != nil {
		return nil, err
	}
	pages := paginate(splitParagraphs(text), p.cfg.WordsPerPage)
	if visibleChars(pages, 3) < p.cfg.ScannedThreshold {
		return nil, newError(ErrScannedDocument, path, "Document contains no extractable text", nil)
	}
	return &ParseResult{Pages: pages, Method: "doc-antiword"}, nil
}

// PageCount estimates pages from the word count; it falls back to 1 when
// antiword cannot read the file.
func (p *DOCParser) PageCount(ctx context.Context, path string) (int, error) {
	text, err := p.text(ctx, path)
	if err != nil {
		p.logger.Debug("parser.doc.page_count_fallback", "path", path, "err", err)
		return 1, nil
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return 1, nil
	}
	return (words + p.cfg.WordsPerPage - 1) / p.cfg.WordsPerPage, nil
}
