package constants

import "strings"

// CharacterSet describes the script used by extracted name parts.
type CharacterSet string

const (
	CharsetCyrillic CharacterSet = "cyrillic"
	CharsetLatin    CharacterSet = "latin"
	CharsetMixed    CharacterSet = "mixed"
	CharsetUnknown  CharacterSet = "unknown"
)

var allCharsets = []CharacterSet{CharsetCyrillic, CharsetLatin, CharsetMixed, CharsetUnknown}

// CharsetStrings returns the known character sets as plain strings.
func CharsetStrings() []string {
	result := make([]string, len(allCharsets))
	for i, cs := range allCharsets {
		result[i] = string(cs)
	}
	return result
}

// ParseCharacterSet maps a label to a CharacterSet; unknown labels map to CharsetUnknown.
func ParseCharacterSet(input string) (CharacterSet, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, cs := range allCharsets {
		if normalized == string(cs) {
			return cs, true
		}
	}
	return CharsetUnknown, false
}

// Title returns the display form, e.g. "Cyrillic".
func (c CharacterSet) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// ErrorType labels a structured error recorded on extraction results.
type ErrorType string

const (
	ErrKeywordMatching        ErrorType = "keyword_matching_error"
	ErrNumberExtraction       ErrorType = "number_extraction_error"
	ErrPersonalInfoExtraction ErrorType = "personal_info_extraction_error"
	ErrExtraction             ErrorType = "extraction_error"
)
