package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser reads page text from PDF content streams with pdfcpu.
type PDFParser struct {
	cfg    Config
	logger *slog.Logger
}

func NewPDFParser(cfg Config, logger *slog.Logger) *PDFParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFParser{cfg: cfg.withDefaults(), logger: logger}
}

func (p *PDFParser) open(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrPermissionDenied, path, fmt.Sprintf("File is not readable: %s", path), err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		if isPasswordError(err) {
			return nil, newError(ErrPasswordProtected, path, "Password-protected PDFs are not supported", err)
		}
		return nil, newError(ErrCorrupted, path, "Unable to parse document. The file may be corrupted or invalid.", err)
	}
	return ctx, nil
}

func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

// Parse extracts every page and rejects documents without extractable text.
func (p *PDFParser) Parse(ctx context.Context, path string) (*ParseResult, error) {
	pdf, err := p.open(path)
	if err != nil {
		return nil, err
	}

	res := &ParseResult{Method: "pdf-text"}
	for pageNr := 1; pageNr <= pdf.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := normalizeText(pageText(pdf, pageNr))
		page, err := newPage(pageNr, text)
		if err != nil {
			return nil, newError(ErrCorrupted, path, "Unable to parse document. The file may be corrupted or invalid.", err)
		}
		res.Pages = append(res.Pages, page)
	}

	if len(res.Pages) == 0 {
		return nil, newError(ErrCorrupted, path, "PDF has no pages", nil)
	}
	if visibleChars(res.Pages, 3) < p.cfg.ScannedThreshold {
		return nil, newError(ErrScannedDocument, path, "Scanned PDFs requiring OCR are not supported", nil)
	}
	return res, nil
}

// Validate opens the document and applies the scanned-document check.
func (p *PDFParser) Validate(ctx context.Context, path string) error {
	_, err := p.Parse(ctx, path)
	return err
}

func (p *PDFParser) PageCount(_ context.Context, path string) (int, error) {
	pdf, err := p.open(path)
	if err != nil {
		return 0, err
	}
	return pdf.PageCount, nil
}

func pageText(pdf *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdf, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}
