package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

// Name values never span a line break. An empty value may be picked up
// from the next non-empty line, see valueOnNextLine.
const nameValue = `([\p{Cyrillic}A-Za-z \t\-]*)`

var (
	firstNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(First Name|Име|Name|Имя):[ \t]*` + nameValue),
		regexp.MustCompile(`(Given Name|Личное имя):[ \t]*` + nameValue),
	}
	lastNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(Last Name|Фамилия|Surname|Фамилія):[ \t]*` + nameValue),
		regexp.MustCompile(`(Family Name):[ \t]*` + nameValue),
	}
	middleNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(Middle Name|Отчество|Patronymic|По батькові):[ \t]*` + nameValue),
	}
	idPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(ID|ЕГН|ID Number|Номер):\s*(\d{4})\d*`),
		regexp.MustCompile(`(Identification|Identifier):\s*(\d{4})\d*`),
	}
	agePattern = regexp.MustCompile(`,\s*(\d{1,3})(?:\s|$)`)
	nameLine   = regexp.MustCompile(`^[\p{Cyrillic}A-Za-z][\p{Cyrillic}A-Za-z \t\-]*$`)

	cyrillicLetter = regexp.MustCompile(`\p{Cyrillic}`)
	latinLetter    = regexp.MustCompile(`[A-Za-z]`)
)

// qualifiers that turn a bare "Name:" label into a different field.
var nameQualifiers = []string{"Last", "Family", "Middle", "Given", "First"}

// PersonalInfoExtractor finds labelled identity fields, preferring the first page.
type PersonalInfoExtractor struct {
	logger *slog.Logger
}

func NewPersonalInfoExtractor(logger *slog.Logger) *PersonalInfoExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersonalInfoExtractor{logger: logger}
}

// ExtractPersonalInfo scans page 1 first, then the remaining pages once for
// whatever is still missing, stopping as soon as the record is complete.
func (p *PersonalInfoExtractor) ExtractPersonalInfo(ctx context.Context, pages []entity.PageContent) (entity.PersonalInformation, error) {
	info := entity.EmptyPersonalInformation()
	if len(pages) == 0 {
		return info, nil
	}

	first := pages[0]
	info.FirstName = findLabelled(first.Text, firstNamePatterns)
	info.LastName = findLabelled(first.Text, lastNamePatterns)
	info.MiddleName = findLabelled(first.Text, middleNamePatterns)
	info.IDNumberPrefix = findLabelled(first.Text, idPatterns)
	info.Age = findAge(first.Text)
	if info.FirstName != "" || info.LastName != "" || info.IDNumberPrefix != "" {
		info.ExtractionPage = first.PageNumber
	}
	info.Recompute()

	if !info.IsComplete {
		for _, page := range pages[1:] {
			if err := ctx.Err(); err != nil {
				return info, err
			}
			p.fillFromPage(&info, page)
			info.Recompute()
			if info.IsComplete {
				break
			}
		}
	}

	if info.FirstName != "" || info.LastName != "" || info.MiddleName != "" {
		info.CharacterSet = DetectCharacterSet(info.FullName())
	}
	info.Recompute()

	p.logger.Debug("extract.personal_info.done",
		"complete", info.IsComplete,
		"page", info.ExtractionPage,
		"charset", info.CharacterSet,
	)
	return info, nil
}

func (p *PersonalInfoExtractor) fillFromPage(info *entity.PersonalInformation, page entity.PageContent) {
	found := false
	if info.FirstName == "" {
		if v := findLabelled(page.Text, firstNamePatterns); v != "" {
			info.FirstName, found = v, true
		}
	}
	if info.LastName == "" {
		if v := findLabelled(page.Text, lastNamePatterns); v != "" {
			info.LastName, found = v, true
		}
	}
	if info.MiddleName == "" {
		if v := findLabelled(page.Text, middleNamePatterns); v != "" {
			info.MiddleName, found = v, true
		}
	}
	if info.IDNumberPrefix == "" {
		if v := findLabelled(page.Text, idPatterns); v != "" {
			info.IDNumberPrefix, found = v, true
		}
	}
	if info.Age == nil {
		if age := findAge(page.Text); age != nil {
			info.Age, found = age, true
		}
	}
	if found && info.ExtractionPage == 0 {
		info.ExtractionPage = page.PageNumber
	}
}

// findLabelled returns the trimmed value of the first acceptable match across
// patterns in order. Each pattern captures the label in group 1 and the value in group 2.
func findLabelled(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if !labelStandsAlone(text, loc[2], text[loc[2]:loc[3]]) {
				continue
			}
			value := strings.TrimSpace(text[loc[4]:loc[5]])
			if value == "" {
				value = valueOnNextLine(text, loc[1])
			}
			if value != "" {
				return value
			}
		}
	}
	return ""
}

// valueOnNextLine handles labels whose value was laid out on the following
// line. It applies only when nothing but blanks follows pos on the label's
// line, and the next non-empty line must consist of a name alone.
func valueOnNextLine(text string, pos int) string {
	rest := text[pos:]
	nl := strings.IndexAny(rest, "\r\n")
	if nl < 0 || strings.TrimSpace(rest[:nl]) != "" {
		return ""
	}
	for _, line := range entity.SplitLines(rest[nl:]) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if nameLine.MatchString(line) {
			return line
		}
		return ""
	}
	return ""
}

// labelStandsAlone rejects labels glued to a preceding word ("Nickname:") and
// a bare "Name:" that belongs to a qualified label such as "Last Name:".
func labelStandsAlone(text string, start int, label string) bool {
	before := text[:start]
	if r, _ := utf8.DecodeLastRuneInString(before); r != utf8.RuneError && unicode.IsLetter(r) {
		return false
	}
	if label != "Name" {
		return true
	}
	trimmed := strings.TrimRight(before, " \t")
	for _, q := range nameQualifiers {
		if strings.HasSuffix(trimmed, q) {
			return false
		}
	}
	return true
}

func findAge(text string) *int {
	for _, m := range agePattern.FindAllStringSubmatch(text, -1) {
		age, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if age >= 0 && age <= 150 {
			return &age
		}
	}
	return nil
}

// DetectCharacterSet classifies text by the presence of Cyrillic and Latin letters.
func DetectCharacterSet(text string) constants.CharacterSet {
	hasCyrillic := cyrillicLetter.MatchString(text)
	hasLatin := latinLetter.MatchString(text)
	switch {
	case hasCyrillic && hasLatin:
		return constants.CharsetMixed
	case hasCyrillic:
		return constants.CharsetCyrillic
	case hasLatin:
		return constants.CharsetLatin
	default:
		return constants.CharsetUnknown
	}
}
