package parser

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/smeshko/text-extractor/internal/entity"
)

// newPage builds a page with trimmed, non-blank lines.
func newPage(number int, text string) (entity.PageContent, error) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if lines == nil {
		lines = []string{}
	}
	return entity.NewPageContent(number, strings.Join(lines, "\n"), lines)
}

// operand is one value on the content-stream operand stack.
type operand struct {
	str   string
	isStr bool
	num   float64
	isNum bool
	array []operand
	isArr bool
}

// textFromContentStream interprets the text-showing operators of a page
// content stream. Vertical moves start a new line; wide TJ gaps become spaces.
func textFromContentStream(data []byte) string {
	var (
		sb    strings.Builder
		stack []operand
	)
	newline := func() {
		s := sb.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") {
			sb.WriteByte('\n')
		}
	}
	space := func() {
		s := sb.String()
		if len(s) > 0 && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
			sb.WriteByte(' ')
		}
	}

	lx := &lexer{data: data}
	for {
		tok, op, ok := lx.next()
		if !ok {
			break
		}
		if op == "" {
			stack = append(stack, tok)
			continue
		}
		switch op {
		case "Tj":
			if s := lastString(stack); s != "" {
				sb.WriteString(s)
			}
		case "TJ":
			if n := len(stack); n > 0 && stack[n-1].isArr {
				for _, el := range stack[n-1].array {
					switch {
					case el.isStr:
						sb.WriteString(el.str)
					case el.isNum && el.num < -200:
						space()
					}
				}
			}
		case "'", `"`:
			newline()
			if s := lastString(stack); s != "" {
				sb.WriteString(s)
			}
		case "Td", "TD":
			if n := len(stack); n >= 2 && stack[n-1].isNum && stack[n-1].num != 0 {
				newline()
			} else {
				space()
			}
		case "Tm":
			newline()
		case "T*", "ET":
			newline()
		}
		stack = stack[:0]
	}
	return sb.String()
}

func lastString(stack []operand) string {
	if n := len(stack); n > 0 && stack[n-1].isStr {
		return stack[n-1].str
	}
	return ""
}

type lexer struct {
	data []byte
	pos  int
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isSpace(c)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

// next returns either an operand (op == "") or an operator name.
func (l *lexer) next() (operand, string, bool) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			l.pos++
			return operand{str: decodeTextBytes(l.literal()), isStr: true}, "", true
		case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
			l.skipDict()
		case c == '<':
			l.pos++
			return operand{str: decodeTextBytes(l.hex()), isStr: true}, "", true
		case c == '[':
			l.pos++
			var arr []operand
			for {
				tok, op, ok := l.next()
				if !ok || op == "]" {
					break
				}
				if op == "" {
					arr = append(arr, tok)
				}
			}
			return operand{array: arr, isArr: true}, "", true
		case c == ']':
			l.pos++
			return operand{}, "]", true
		case c == '/':
			l.pos++
			l.word()
			return operand{}, "", true
		default:
			w := l.word()
			if w == "" {
				l.pos++
				continue
			}
			if f, err := strconv.ParseFloat(w, 64); err == nil {
				return operand{num: f, isNum: true}, "", true
			}
			if w == "BI" {
				l.skipInlineImage()
				continue
			}
			return operand{}, w, true
		}
	}
	return operand{}, "", false
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literal reads a (string) body with nesting and escapes; pos is past '('.
func (l *lexer) literal() []byte {
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\n':
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						val = val*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// hex reads a <hex string> body; pos is past '<'.
func (l *lexer) hex() []byte {
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

func (l *lexer) skipDict() {
	depth := 0
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == '<' && l.data[l.pos+1] == '<' {
			depth++
			l.pos += 2
			continue
		}
		if l.data[l.pos] == '>' && l.data[l.pos+1] == '>' {
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		l.pos++
	}
	l.pos = len(l.data)
}

func (l *lexer) skipInlineImage() {
	idx := strings.Index(string(l.data[l.pos:]), "EI")
	if idx < 0 {
		l.pos = len(l.data)
		return
	}
	l.pos += idx + 2
}

// decodeTextBytes decodes UTF-16BE (with BOM), UTF-8, or falls back to Windows-1252.
func decodeTextBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		u := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u))
	}
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
