package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/smeshko/text-extractor/internal/entity"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
)

// normalizeText applies NFC, unifies line endings and collapses runs of
// tabs and spaces. Line breaks are kept.
func normalizeText(s string) string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return norm.NFC.String(s)
}

// splitParagraphs returns the non-blank lines of text, trimmed.
func splitParagraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(normalizeText(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// paginate groups paragraphs into pages of roughly wordsPerPage words.
// A paragraph is never split across pages.
func paginate(paragraphs []string, wordsPerPage int) []entity.PageContent {
	if wordsPerPage <= 0 {
		wordsPerPage = 500
	}
	var (
		pages   []entity.PageContent
		current []string
		words   int
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		lines := append([]string(nil), current...)
		pages = append(pages, entity.PageContent{
			PageNumber: len(pages) + 1,
			Text:       strings.Join(lines, "\n"),
			Lines:      lines,
		})
		current, words = nil, 0
	}
	for _, p := range paragraphs {
		n := len(strings.Fields(p))
		if words+n > wordsPerPage && len(current) > 0 {
			flush()
		}
		current = append(current, p)
		words += n
	}
	flush()
	return pages
}

// visibleChars counts non-space runes in the first n pages.
func visibleChars(pages []entity.PageContent, n int) int {
	count := 0
	for i, p := range pages {
		if i >= n {
			break
		}
		for _, r := range p.Text {
			if !unicode.IsSpace(r) {
				count++
			}
		}
	}
	return count
}
