package project

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"region-explorer/internal/region"
)

// RON (Rusty Object Notation) is the format the original region files were
// written in. Only the subset needed by the region schema is supported:
// structs with optional names, lists, strings, numbers, comments and
// trailing commas.

const ronIndent = "    "

func encodeRON(doc *region.Document) []byte {
	var b bytes.Buffer
	b.WriteString("(\n")
	writeRONField(&b, 1, "name", ronString(doc.Name))
	writeRONField(&b, 1, "image", ronString(doc.Image))
	writeRONField(&b, 1, "description", ronString(doc.Description))

	if len(doc.Points) == 0 {
		writeRONField(&b, 1, "points", "[]")
	} else {
		b.WriteString(ronIndent + "points: [\n")
		for _, p := range doc.Points {
			b.WriteString(strings.Repeat(ronIndent, 2) + "(\n")
			writeRONField(&b, 3, "x", ronFloat(p.X))
			writeRONField(&b, 3, "y", ronFloat(p.Y))
			writeRONField(&b, 3, "description", ronString(p.Description))
			b.WriteString(strings.Repeat(ronIndent, 2) + "),\n")
		}
		b.WriteString(ronIndent + "],\n")
	}
	b.WriteString(")\n")
	return b.Bytes()
}

func writeRONField(b *bytes.Buffer, depth int, name, value string) {
	b.WriteString(strings.Repeat(ronIndent, depth))
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString(",\n")
}

func ronFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func ronString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u{%x}`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

type ronTokenKind int

const (
	tokEOF ronTokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type ronToken struct {
	kind ronTokenKind
	text string
	line int
	col  int
}

func (t ronToken) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return strconv.Quote(t.text)
	default:
		return "'" + t.text + "'"
	}
}

type ronLexer struct {
	src  []byte
	pos  int
	line int
	col  int
	peek *ronToken
}

func newRONLexer(src []byte) *ronLexer {
	return &ronLexer{src: src, line: 1, col: 1}
}

func (l *ronLexer) errorf(line, col int, format string, args ...interface{}) error {
	return fmt.Errorf("ron %d:%d: %s", line, col, fmt.Sprintf(format, args...))
}

func (l *ronLexer) advance() rune {
	r, size := utf8.DecodeRune(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *ronLexer) current() rune {
	if l.pos >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRune(l.src[l.pos:])
	return r
}

func (l *ronLexer) lookahead(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *ronLexer) skipSpace() error {
	for l.pos < len(l.src) {
		r := l.current()
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.lookahead(1) == '/':
			for l.pos < len(l.src) && l.current() != '\n' {
				l.advance()
			}
		case r == '/' && l.lookahead(1) == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			depth := 1
			for depth > 0 {
				if l.pos >= len(l.src) {
					return l.errorf(line, col, "unterminated block comment")
				}
				switch {
				case l.current() == '*' && l.lookahead(1) == '/':
					l.advance()
					l.advance()
					depth--
				case l.current() == '/' && l.lookahead(1) == '*':
					l.advance()
					l.advance()
					depth++
				default:
					l.advance()
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *ronLexer) Peek() (ronToken, error) {
	if l.peek != nil {
		return *l.peek, nil
	}
	tok, err := l.scan()
	if err != nil {
		return ronToken{}, err
	}
	l.peek = &tok
	return tok, nil
}

func (l *ronLexer) Next() (ronToken, error) {
	if l.peek != nil {
		tok := *l.peek
		l.peek = nil
		return tok, nil
	}
	return l.scan()
}

func (l *ronLexer) scan() (ronToken, error) {
	if err := l.skipSpace(); err != nil {
		return ronToken{}, err
	}
	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return ronToken{kind: tokEOF, line: line, col: col}, nil
	}

	r := l.current()
	switch {
	case strings.ContainsRune("()[]:,", r):
		l.advance()
		return ronToken{kind: tokPunct, text: string(r), line: line, col: col}, nil
	case r == '"':
		s, err := l.scanString()
		if err != nil {
			return ronToken{}, err
		}
		return ronToken{kind: tokString, text: s, line: line, col: col}, nil
	case r == '-' || r == '+' || r == '.' || unicode.IsDigit(r):
		start := l.pos
		l.advance()
		for l.pos < len(l.src) {
			c := l.current()
			if unicode.IsDigit(c) || c == '.' || c == '_' || c == 'e' || c == 'E' ||
				((c == '-' || c == '+') && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E')) {
				l.advance()
				continue
			}
			if unicode.IsLetter(c) {
				// -inf
				for l.pos < len(l.src) && unicode.IsLetter(l.current()) {
					l.advance()
				}
			}
			break
		}
		return ronToken{kind: tokNumber, text: string(l.src[start:l.pos]), line: line, col: col}, nil
	case r == '_' || unicode.IsLetter(r):
		start := l.pos
		for l.pos < len(l.src) {
			c := l.current()
			if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				break
			}
			l.advance()
		}
		return ronToken{kind: tokIdent, text: string(l.src[start:l.pos]), line: line, col: col}, nil
	default:
		return ronToken{}, l.errorf(line, col, "unexpected character %q", r)
	}
}

func (l *ronLexer) scanString() (string, error) {
	line, col := l.line, l.col
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(line, col, "unterminated string")
		}
		r := l.advance()
		switch r {
		case '"':
			return b.String(), nil
		case '\\':
			if l.pos >= len(l.src) {
				return "", l.errorf(line, col, "unterminated string")
			}
			esc := l.advance()
			switch esc {
			case '"', '\\', '\'', '/':
				b.WriteRune(esc)
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '0':
				b.WriteByte(0)
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				cp, err := l.scanUnicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(cp)
			case '\n':
				// line continuation: skip leading whitespace on the next line
				for l.pos < len(l.src) && unicode.IsSpace(l.current()) {
					l.advance()
				}
			default:
				return "", l.errorf(l.line, l.col-1, "unknown escape \\%c", esc)
			}
		default:
			b.WriteRune(r)
		}
	}
}

// scanUnicodeEscape reads the part after \u: either {hex...} or four hex digits.
func (l *ronLexer) scanUnicodeEscape() (rune, error) {
	line, col := l.line, l.col
	var hex string
	if l.current() == '{' {
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && l.current() != '}' {
			l.advance()
		}
		if l.pos >= len(l.src) {
			return 0, l.errorf(line, col, "unterminated unicode escape")
		}
		hex = string(l.src[start:l.pos])
		l.advance()
	} else {
		if l.pos+4 > len(l.src) {
			return 0, l.errorf(line, col, "short unicode escape")
		}
		hex = string(l.src[l.pos : l.pos+4])
		for i := 0; i < 4; i++ {
			l.advance()
		}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, l.errorf(line, col, "invalid unicode escape %q", hex)
	}
	return rune(v), nil
}

type ronParser struct {
	lex *ronLexer
}

func decodeRON(data []byte) (*region.Document, error) {
	p := &ronParser{lex: newRONLexer(data)}

	var f fileDocument
	err := p.parseStruct("RegionData", func(field string, tok ronToken) error {
		switch field {
		case "name":
			return p.parseStringInto(&f.Name)
		case "image":
			return p.parseStringInto(&f.Image)
		case "description":
			return p.parseStringInto(&f.Description)
		case "points":
			points, err := p.parsePoints()
			if err != nil {
				return err
			}
			f.Points = &points
			return nil
		default:
			return p.lex.errorf(tok.line, tok.col, "unknown field %q", field)
		}
	})
	if err != nil {
		return nil, err
	}

	tok, err := p.lex.Next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokEOF {
		return nil, p.lex.errorf(tok.line, tok.col, "trailing %s after document", tok)
	}
	return f.toDocument()
}

func (p *ronParser) expect(text string) (ronToken, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return tok, err
	}
	if tok.kind != tokPunct || tok.text != text {
		return tok, p.lex.errorf(tok.line, tok.col, "expected '%s', found %s", text, tok)
	}
	return tok, nil
}

// parseStruct parses `[Name](field: value, ...)`. The struct name is
// optional; when present it must match name. Duplicate fields are rejected.
func (p *ronParser) parseStruct(name string, field func(name string, tok ronToken) error) error {
	tok, err := p.lex.Peek()
	if err != nil {
		return err
	}
	if tok.kind == tokIdent {
		p.lex.Next()
		if tok.text != name {
			return p.lex.errorf(tok.line, tok.col, "expected struct %s, found %s", name, tok.text)
		}
	}
	if _, err := p.expect("("); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return err
		}
		if tok.kind == tokPunct && tok.text == ")" {
			return nil
		}
		if tok.kind != tokIdent {
			return p.lex.errorf(tok.line, tok.col, "expected field name in %s, found %s", name, tok)
		}
		if seen[tok.text] {
			return p.lex.errorf(tok.line, tok.col, "duplicate field %q", tok.text)
		}
		seen[tok.text] = true
		if _, err := p.expect(":"); err != nil {
			return err
		}
		if err := field(tok.text, tok); err != nil {
			return err
		}

		next, err := p.lex.Next()
		if err != nil {
			return err
		}
		if next.kind == tokPunct && next.text == ")" {
			return nil
		}
		if next.kind != tokPunct || next.text != "," {
			return p.lex.errorf(next.line, next.col, "expected ',' or ')', found %s", next)
		}
	}
}

func (p *ronParser) parseStringInto(dst **string) error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	if tok.kind != tokString {
		return p.lex.errorf(tok.line, tok.col, "expected string, found %s", tok)
	}
	s := tok.text
	*dst = &s
	return nil
}

func (p *ronParser) parseFloatInto(dst **float64) error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	var v float64
	switch {
	case tok.kind == tokIdent && (tok.text == "inf" || tok.text == "NaN"):
		if tok.text == "inf" {
			v = math.Inf(1)
		} else {
			v = math.NaN()
		}
	case tok.kind == tokNumber:
		text := strings.ReplaceAll(tok.text, "_", "")
		switch strings.TrimPrefix(strings.TrimPrefix(text, "+"), "-") {
		case "inf", "NaN":
			v = math.Inf(1)
			if strings.HasSuffix(text, "NaN") {
				v = math.NaN()
			} else if strings.HasPrefix(text, "-") {
				v = math.Inf(-1)
			}
		default:
			v, err = strconv.ParseFloat(text, 64)
			if err != nil {
				return p.lex.errorf(tok.line, tok.col, "invalid number %q", tok.text)
			}
		}
	default:
		return p.lex.errorf(tok.line, tok.col, "expected number, found %s", tok)
	}
	*dst = &v
	return nil
}

func (p *ronParser) parsePoints() ([]filePoint, error) {
	if _, err := p.expect("["); err != nil {
		return nil, err
	}

	points := []filePoint{}
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokPunct && tok.text == "]" {
			p.lex.Next()
			return points, nil
		}

		var fp filePoint
		err = p.parseStruct("MapPoint", func(field string, tok ronToken) error {
			switch field {
			case "x":
				return p.parseFloatInto(&fp.X)
			case "y":
				return p.parseFloatInto(&fp.Y)
			case "description":
				return p.parseStringInto(&fp.Description)
			default:
				return p.lex.errorf(tok.line, tok.col, "unknown field %q", field)
			}
		})
		if err != nil {
			return nil, err
		}
		points = append(points, fp)

		next, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		if next.kind == tokPunct && next.text == "]" {
			return points, nil
		}
		if next.kind != tokPunct || next.text != "," {
			return nil, p.lex.errorf(next.line, next.col, "expected ',' or ']', found %s", next)
		}
	}
}
