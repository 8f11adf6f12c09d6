package syntax

import (
	"iter"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxRepeat is the largest count accepted in {m,n}.
const MaxRepeat = 1000

// Scanner turns pattern text into tokens on demand. Lexical problems are
// returned as TokInvalid tokens; deciding to reject them is the parser's job.
// A Scanner is not safe for concurrent use.
type Scanner struct {
	input string
	pos   int
}

func NewScanner(pattern string) *Scanner { return &Scanner{input: pattern} }

// Reset rewinds the scanner to the start of the pattern.
func (s *Scanner) Reset() { s.pos = 0 }

// Pos is the byte offset of the next unread character.
func (s *Scanner) Pos() int { return s.pos }

// Backup rewinds to the start of tok, which must have come from this scanner.
func (s *Scanner) Backup(tok Token) { s.pos = tok.Span.Start }

// All yields every token up to and including EOF or the first invalid token.
// Bracket expressions are scanned in class context. Inline (?x) does not
// change verbose for the remainder of the walk.
func (s *Scanner) All(verbose bool) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		s.Reset()
		inClass, first := false, false
		for {
			var tok Token
			if inClass {
				tok = s.NextInClass(first)
				first = false
			} else {
				tok = s.Next(verbose)
			}
			if !yield(tok) {
				return
			}
			switch tok.Kind {
			case TokEOF, TokInvalid:
				return
			case TokOpenClass:
				inClass, first = true, true
			case TokCloseClass:
				inClass = false
			}
		}
	}
}

func (s *Scanner) eof() bool { return s.pos >= len(s.input) }

func (s *Scanner) peekByte(b byte) bool { return s.pos < len(s.input) && s.input[s.pos] == b }

// decode reads the rune at pos without consuming it. ok is false for an
// invalid UTF-8 sequence, in which case width is 1.
func (s *Scanner) decode() (r rune, width int, ok bool) {
	r, width = utf8.DecodeRuneInString(s.input[s.pos:])
	return r, width, !(r == utf8.RuneError && width == 1)
}

func (s *Scanner) tok(kind TokenKind, start int) Token {
	return Token{Kind: kind, Span: span(start, s.pos)}
}

func (s *Scanner) invalid(kind ErrorKind, start, end int) Token {
	return Token{Kind: TokInvalid, Err: kind, Span: span(start, end)}
}

func (s *Scanner) literal(r rune, start int) Token {
	return Token{Kind: TokLiteral, Rune: r, Span: span(start, s.pos)}
}

// Next returns the next token outside a bracket expression. With verbose set,
// whitespace and #-comments are skipped.
func (s *Scanner) Next(verbose bool) Token {
	if verbose {
		s.skipInsignificant()
	}
	if s.eof() {
		return s.tok(TokEOF, s.pos)
	}
	start := s.pos
	r, w, ok := s.decode()
	s.pos += w
	if !ok {
		return s.invalid(ErrInvalidUTF8, start, s.pos)
	}
	switch r {
	case '\\':
		return s.escape(start, false)
	case '.':
		return s.tok(TokDot, start)
	case '^', '$':
		// Rune marks the metacharacter form so the m flag can apply.
		t := s.tok(TokAssert, start)
		t.Assert, t.Rune = AssertBeginText, r
		if r == '$' {
			t.Assert = AssertEndText
		}
		return t
	case '|':
		return s.tok(TokAlternate, start)
	case ')':
		return s.tok(TokCloseGroup, start)
	case '(':
		return s.group(start)
	case '[':
		t := Token{Kind: TokOpenClass}
		if s.peekByte('^') {
			s.pos++
			t.Negated = true
		}
		t.Span = span(start, s.pos)
		return t
	case '*':
		return s.quantifier(start, 0, -1)
	case '+':
		return s.quantifier(start, 1, -1)
	case '?':
		return s.quantifier(start, 0, 1)
	case '{':
		return s.counted(start)
	}
	return s.literal(r, start)
}

func (s *Scanner) skipInsignificant() {
	for !s.eof() {
		switch c := s.input[s.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			s.pos++
		case c == '#':
			if i := strings.IndexByte(s.input[s.pos:], '\n'); i >= 0 {
				s.pos += i + 1
			} else {
				s.pos = len(s.input)
			}
		default:
			return
		}
	}
}

func (s *Scanner) quantifier(start, min, max int) Token {
	t := Token{Kind: TokQuantifier, Min: min, Max: max}
	if s.peekByte('?') {
		s.pos++
		t.Lazy = true
	}
	t.Span = span(start, s.pos)
	return t
}

// decimal reads a run of ASCII digits. Values above MaxRepeat are reported
// through tooLarge and not accumulated further.
func (s *Scanner) decimal() (v, digits int, tooLarge bool, sp Span) {
	start := s.pos
	for !s.eof() && s.input[s.pos] >= '0' && s.input[s.pos] <= '9' {
		if !tooLarge {
			v = v*10 + int(s.input[s.pos]-'0')
			tooLarge = v > MaxRepeat
		}
		s.pos++
		digits++
	}
	return v, digits, tooLarge, span(start, s.pos)
}

func (s *Scanner) counted(start int) Token {
	min, digits, tooLarge, minSpan := s.decimal()
	if digits == 0 {
		if s.eof() {
			return s.invalid(ErrRepetitionCountUnclosed, start, s.pos)
		}
		return s.invalid(ErrRepetitionCountEmpty, start, s.pos+1)
	}
	if tooLarge {
		return s.invalid(ErrRepetitionCountTooLarge, minSpan.Start, minSpan.End)
	}
	max := min
	if s.peekByte(',') {
		s.pos++
		v, n, big, sp := s.decimal()
		switch {
		case big:
			return s.invalid(ErrRepetitionCountTooLarge, sp.Start, sp.End)
		case n == 0:
			max = -1
		default:
			max = v
		}
	}
	if !s.peekByte('}') {
		return s.invalid(ErrRepetitionCountUnclosed, start, s.pos)
	}
	s.pos++
	return s.quantifier(start, min, max)
}

// group scans "(" and any "?..." prefix after it.
func (s *Scanner) group(start int) Token {
	t := Token{Kind: TokOpenGroup, Group: GroupCapturing}
	if !s.peekByte('?') {
		t.Span = span(start, s.pos)
		return t
	}
	s.pos++
	if s.eof() {
		return s.invalid(ErrFlagUnexpectedEOF, start, s.pos)
	}
	switch rest := s.input[s.pos:]; {
	case rest[0] == ':':
		s.pos++
		t.Group = GroupNonCapturing
	case rest[0] == '=':
		s.pos++
		t.Group = GroupLookAhead
	case rest[0] == '!':
		s.pos++
		t.Group = GroupNegativeLookAhead
	case strings.HasPrefix(rest, "<="):
		s.pos += 2
		t.Group = GroupLookBehind
	case strings.HasPrefix(rest, "<!"):
		s.pos += 2
		t.Group = GroupNegativeLookBehind
	case rest[0] == '<' || strings.HasPrefix(rest, "P<"):
		s.pos += strings.IndexByte(rest, '<') + 1
		name, nameSpan, bad, ok := s.groupName(start)
		if !ok {
			return bad
		}
		t.Group, t.Name, t.NameSpan = GroupNamedCapturing, name, nameSpan
	default:
		return s.flagGroup(start)
	}
	t.Span = span(start, s.pos)
	return t
}

// flagGroup scans the flag letters of (?flags) or (?flags:. The letters are
// validated by the parser.
func (s *Scanner) flagGroup(start int) Token {
	flagStart := s.pos
	for !s.eof() && s.input[s.pos] != ':' && s.input[s.pos] != ')' {
		_, w, _ := s.decode()
		s.pos += w
	}
	if s.eof() {
		return s.invalid(ErrFlagUnexpectedEOF, start, s.pos)
	}
	t := Token{Flags: s.input[flagStart:s.pos], FlagsSpan: span(flagStart, s.pos)}
	if s.input[s.pos] == ')' {
		t.Kind = TokSetFlags
	} else {
		t.Kind, t.Group = TokOpenGroup, GroupNonCapturing
	}
	s.pos++
	t.Span = span(start, s.pos)
	return t
}

// groupName reads "name>" for named groups and \k<name>. On failure the
// returned token is the invalid token to report.
func (s *Scanner) groupName(start int) (name string, sp Span, bad Token, ok bool) {
	nameStart := s.pos
	for !s.eof() {
		r, w, valid := s.decode()
		if r == '>' {
			name = s.input[nameStart:s.pos]
			sp = span(nameStart, s.pos)
			s.pos++
			if name == "" {
				return "", sp, s.invalid(ErrGroupNameEmpty, nameStart-1, s.pos), false
			}
			return name, sp, Token{}, true
		}
		first := s.pos == nameStart
		if !valid || !(r == '_' || unicode.IsLetter(r) || (!first && unicode.IsDigit(r))) {
			return "", sp, s.invalid(ErrGroupNameInvalid, s.pos, s.pos+w), false
		}
		s.pos += w
	}
	return "", sp, s.invalid(ErrGroupNameUnclosed, start, s.pos), false
}

func isASCIIPunct(r rune) bool {
	return r == ' ' || (r < utf8.RuneSelf && (unicode.IsPunct(r) || unicode.IsSymbol(r)))
}

var controlEscapes = map[rune]rune{
	'a': '\a', 'f': '\f', 't': '\t', 'n': '\n', 'r': '\r', 'v': '\v',
}

// escape scans what follows a backslash at start.
func (s *Scanner) escape(start int, inClass bool) Token {
	if s.eof() {
		return s.invalid(ErrIncompleteEscape, start, s.pos)
	}
	r, w, ok := s.decode()
	s.pos += w
	if !ok {
		return s.invalid(ErrInvalidUTF8, s.pos-w, s.pos)
	}
	if c, ok := controlEscapes[r]; ok {
		return s.literal(c, start)
	}
	switch r {
	case 'x', 'u', 'U':
		return s.hexEscape(start, r)
	case 'd', 'D', 's', 'S', 'w', 'W':
		t := s.tok(TokClassEscape, start)
		t.Item = ClassItem{
			Kind:    ClassPerl,
			Name:    string(unicode.ToLower(r)),
			Negated: unicode.IsUpper(r),
			Span:    t.Span,
		}
		return t
	case 'p', 'P':
		return s.unicodeClass(start, r == 'P')
	case 'b', 'B', 'A', 'z':
		if inClass {
			return s.invalid(ErrInvalidClassEscape, start, s.pos)
		}
		t := s.tok(TokAssert, start)
		t.Assert = map[rune]AssertKind{
			'b': AssertWordBoundary, 'B': AssertNotWordBoundary,
			'A': AssertBeginText, 'z': AssertEndText,
		}[r]
		return t
	case 'k':
		if inClass {
			return s.invalid(ErrInvalidClassEscape, start, s.pos)
		}
		if !s.peekByte('<') {
			return s.invalid(ErrInvalidEscape, start, s.pos)
		}
		s.pos++
		name, nameSpan, bad, ok := s.groupName(start)
		if !ok {
			return bad
		}
		t := s.tok(TokBackref, start)
		t.Name, t.NameSpan = name, nameSpan
		return t
	}
	if r >= '1' && r <= '9' {
		if inClass {
			return s.invalid(ErrInvalidClassEscape, start, s.pos)
		}
		n := int(r - '0')
		for i := 0; i < 1 && !s.eof() && s.input[s.pos] >= '0' && s.input[s.pos] <= '9'; i++ {
			n = n*10 + int(s.input[s.pos]-'0')
			s.pos++
		}
		t := s.tok(TokBackref, start)
		t.Ref = n
		return t
	}
	if isASCIIPunct(r) {
		return s.literal(r, start)
	}
	return s.invalid(ErrInvalidEscape, start, s.pos)
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// hexEscape scans \xHH, \uHHHH, \UHHHHHHHH or the braced \x{...} form.
func (s *Scanner) hexEscape(start int, kind rune) Token {
	if s.peekByte('{') {
		s.pos++
		digitsStart := s.pos
		for !s.eof() && s.input[s.pos] != '}' {
			if !isHex(s.input[s.pos]) {
				_, w, _ := s.decode()
				return s.invalid(ErrInvalidHexDigit, s.pos, s.pos+w)
			}
			s.pos++
		}
		if s.eof() {
			return s.invalid(ErrIncompleteEscape, start, s.pos)
		}
		digits := s.input[digitsStart:s.pos]
		s.pos++
		if digits == "" {
			return s.invalid(ErrEmptyHexEscape, start, s.pos)
		}
		return s.codePoint(start, digits)
	}
	n := map[rune]int{'x': 2, 'u': 4, 'U': 8}[kind]
	digitsStart := s.pos
	for i := 0; i < n; i++ {
		if s.eof() {
			return s.invalid(ErrIncompleteEscape, start, s.pos)
		}
		if !isHex(s.input[s.pos]) {
			_, w, _ := s.decode()
			return s.invalid(ErrInvalidHexDigit, s.pos, s.pos+w)
		}
		s.pos++
	}
	return s.codePoint(start, s.input[digitsStart:s.pos])
}

func (s *Scanner) codePoint(start int, digits string) Token {
	if len(digits) > 8 {
		return s.invalid(ErrInvalidCodePoint, start, s.pos)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return s.invalid(ErrInvalidCodePoint, start, s.pos)
	}
	return s.literal(rune(v), start)
}

// unicodeClass scans \pL, \p{Name} and \p{^Name}.
func (s *Scanner) unicodeClass(start int, negated bool) Token {
	if s.eof() {
		return s.invalid(ErrIncompleteEscape, start, s.pos)
	}
	var name string
	if s.peekByte('{') {
		s.pos++
		end := strings.IndexByte(s.input[s.pos:], '}')
		if end < 0 {
			s.pos = len(s.input)
			t := s.invalid(ErrInvalidUnicodeClass, start, s.pos)
			t.Detail = "missing closing brace"
			return t
		}
		name = s.input[s.pos : s.pos+end]
		s.pos += end + 1
		if strings.HasPrefix(name, "^") {
			negated = !negated
			name = name[1:]
		}
		if name == "" {
			t := s.invalid(ErrInvalidUnicodeClass, start, s.pos)
			t.Detail = "empty property name"
			return t
		}
	} else {
		r, w, ok := s.decode()
		s.pos += w
		if !ok || !unicode.IsLetter(r) {
			return s.invalid(ErrInvalidUnicodeClass, start, s.pos)
		}
		name = string(r)
	}
	t := s.tok(TokClassEscape, start)
	t.Item = ClassItem{Kind: ClassUnicode, Name: name, Negated: negated, Span: t.Span}
	return t
}

// NextInClass returns the next token inside a bracket expression. first is
// set for the position right after "[" or "[^", where "]" is a literal.
func (s *Scanner) NextInClass(first bool) Token {
	if s.eof() {
		return s.tok(TokEOF, s.pos)
	}
	start := s.pos
	r, w, ok := s.decode()
	s.pos += w
	if !ok {
		return s.invalid(ErrInvalidUTF8, start, s.pos)
	}
	switch r {
	case ']':
		if !first {
			return s.tok(TokCloseClass, start)
		}
	case '-':
		return s.tok(TokClassDash, start)
	case '\\':
		return s.escape(start, true)
	case '[':
		if t, ok := s.posixClass(start); ok {
			return t
		}
	}
	return s.literal(r, start)
}

// posixClass recognizes "[:name:]" and "[:^name:]" after the "[" at start.
func (s *Scanner) posixClass(start int) (Token, bool) {
	rest := s.input[s.pos:]
	if !strings.HasPrefix(rest, ":") {
		return Token{}, false
	}
	end := strings.Index(rest, ":]")
	if end < 1 {
		return Token{}, false
	}
	name := rest[1:end]
	negated := strings.HasPrefix(name, "^")
	name = strings.TrimPrefix(name, "^")
	if name == "" {
		return Token{}, false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 'a' || c > 'z' {
			return Token{}, false
		}
	}
	s.pos += end + 2
	t := s.tok(TokPosixClass, start)
	t.Item = ClassItem{Kind: ClassPOSIX, Name: name, Negated: negated, Span: t.Span}
	return t, true
}

// PeekClassDash reports whether the next character is an unescaped '-'.
func (s *Scanner) PeekClassDash() bool { return s.peekByte('-') }
