package entity

import (
	"fmt"
	"strings"
)

// PageContent is the text of one document page, split into lines.
type PageContent struct {
	PageNumber int      `json:"page_number"`
	Text       string   `json:"text"`
	Lines      []string `json:"lines"`
}

// NewPageContent builds a page, splitting text on line breaks when lines is nil.
func NewPageContent(pageNumber int, text string, lines []string) (PageContent, error) {
	if pageNumber < 1 {
		return PageContent{}, fmt.Errorf("page number must be >= 1, got %d", pageNumber)
	}
	if lines == nil {
		lines = SplitLines(text)
	} else {
		lines = append([]string(nil), lines...)
	}
	return PageContent{PageNumber: pageNumber, Text: text, Lines: lines}, nil
}

// SplitLines splits text on \n, \r\n and \r.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

// Clone returns an independent copy of the page.
func (p PageContent) Clone() PageContent {
	p.Lines = append([]string(nil), p.Lines...)
	return p
}
