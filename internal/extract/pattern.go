package extract

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Go's \b only understands ASCII word characters, so keyword boundaries are
// spelled out with Unicode classes instead.
const (
	leadingBoundary  = `(?:^|[^\p{L}\p{M}\p{N}_])`
	trailingBoundary = `(?:$|[^\p{L}\p{M}\p{N}_])`
)

var errEmptyKeyword = errors.New("keyword is empty")

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
}

// keywordPattern compiles a case-insensitive pattern for the literal keyword.
// Submatch 1 spans the keyword itself. Boundaries are only required on edges
// where the keyword starts or ends with a word character.
func keywordPattern(keyword string) (*regexp.Regexp, error) {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return nil, errEmptyKeyword
	}
	first, _ := utf8.DecodeRuneInString(kw)
	last, _ := utf8.DecodeLastRuneInString(kw)

	var b strings.Builder
	b.WriteString("(?i)")
	if isWordRune(first) {
		b.WriteString(leadingBoundary)
	}
	b.WriteString("(")
	b.WriteString(regexp.QuoteMeta(kw))
	b.WriteString(")")
	if isWordRune(last) {
		b.WriteString(trailingBoundary)
	}
	return regexp.Compile(b.String())
}

// locateKeyword returns the byte offset just past the first keyword
// occurrence in line, or -1.
func locateKeyword(re *regexp.Regexp, line string) int {
	loc := re.FindStringSubmatchIndex(line)
	if loc == nil {
		return -1
	}
	return loc[3]
}
