package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// DOCXParser reads paragraphs from word/document.xml and paginates them.
type DOCXParser struct {
	cfg    Config
	logger *slog.Logger
}

func NewDOCXParser(cfg Config, logger *slog.Logger) *DOCXParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &DOCXParser{cfg: cfg.withDefaults(), logger: logger}
}

var errNoDocumentXML = errors.New("word/document.xml not found in archive")

func (p *DOCXParser) paragraphs(ctx context.Context, path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, newError(ErrCorrupted, path, "Unable to parse document. The file may be corrupted or invalid.", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		switch f.Name {
		case "word/document.xml":
			docFile = f
		case "EncryptedPackage":
			return nil, newError(ErrPasswordProtected, path, "Password-protected documents are not supported", nil)
		}
	}
	if docFile == nil {
		return nil, newError(ErrCorrupted, path, "Unable to parse document. The file may be corrupted or invalid.", errNoDocumentXML)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, newError(ErrCorrupted, path, "Unable to parse document. The file may be corrupted or invalid.", err)
	}
	defer rc.Close()

	paras, err := documentParagraphs(ctx, rc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newError(ErrCorrupted, path, "Unable to parse document. The file may be corrupted or invalid.", err)
	}
	return paras, nil
}

// documentParagraphs walks WordprocessingML, emitting one string per <w:p>.
// Tabs and breaks inside a paragraph become a space.
func documentParagraphs(ctx context.Context, r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    []string
		sb     strings.Builder
		inText bool
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab", "br", "cr":
				sb.WriteByte(' ')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(sb.String()); s != "" {
					out = append(out, s)
				}
				sb.Reset()
			}
		}
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		out = append(out, s)
	}
	return out, nil
}

func (p *DOCXParser) Parse(ctx context.Context, path string) (*ParseResult, error) {
	paras, err := p.paragraphs(ctx, path)
	if err != nil {
		return nil, err
	}
	text := normalizeText(strings.Join(paras, "\n"))
	pages := paginate(splitParagraphs(text), p.cfg.WordsPerPage)
	if visibleChars(pages, 3) < p.cfg.ScannedThreshold {
		return nil, newError(ErrScannedDocument, path, "Document contains no extractable text", nil)
	}
	return &ParseResult{Pages: pages, Method: "docx-xml"}, nil
}

func (p *DOCXParser) Validate(ctx context.Context, path string) error {
	_, err := p.Parse(ctx, path)
	return err
}

func (p *DOCXParser) PageCount(ctx context.Context, path string) (int, error) {
	res, err := p.Parse(ctx, path)
	if err != nil {
		return 0, err
	}
	return res.PageCount(), nil
}
