package syntax

import "fmt"

// TokenKind tags the variant of a Token.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokInvalid
	TokLiteral
	TokDot
	TokAssert
	TokClassEscape // \d, \pL and friends; Item holds the class
	TokBackref
	TokOpenGroup
	TokSetFlags // (?flags)
	TokCloseGroup
	TokAlternate
	TokQuantifier
	TokOpenClass

	// class context only
	TokClassDash
	TokPosixClass
	TokCloseClass
)

var tokenNames = [...]string{
	TokEOF:         "EOF",
	TokInvalid:     "Invalid",
	TokLiteral:     "Literal",
	TokDot:         "Dot",
	TokAssert:      "Assert",
	TokClassEscape: "ClassEscape",
	TokBackref:     "Backref",
	TokOpenGroup:   "OpenGroup",
	TokSetFlags:    "SetFlags",
	TokCloseGroup:  "CloseGroup",
	TokAlternate:   "Alternate",
	TokQuantifier:  "Quantifier",
	TokOpenClass:   "OpenClass",
	TokClassDash:   "ClassDash",
	TokPosixClass:  "PosixClass",
	TokCloseClass:  "CloseClass",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// Token is one lexical unit of a pattern. Only the fields relevant to Kind
// are populated.
type Token struct {
	Kind TokenKind
	Span Span

	Rune   rune       // Literal
	Assert AssertKind // Assert; ^ and $ arrive as BeginText/EndText with Rune set
	Item   ClassItem  // ClassEscape, PosixClass

	Group     GroupKind // OpenGroup
	Name      string    // OpenGroup (named), Backref (named)
	NameSpan  Span
	Flags     string // OpenGroup with (?flags:, SetFlags
	FlagsSpan Span

	Ref int // Backref by number

	Min, Max int  // Quantifier; Max == -1 means unbounded
	Lazy     bool // Quantifier followed by ?

	Negated bool // OpenClass

	Err    ErrorKind // Invalid
	Detail string    // Invalid
}

func (t Token) String() string {
	switch t.Kind {
	case TokLiteral:
		return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Rune, t.Span)
	case TokInvalid:
		return fmt.Sprintf("%s(%s)@%s", t.Kind, t.Err.Name(), t.Span)
	case TokQuantifier:
		return fmt.Sprintf("%s{%d,%d lazy=%t}@%s", t.Kind, t.Min, t.Max, t.Lazy, t.Span)
	case TokOpenGroup:
		return fmt.Sprintf("%s(%s %q)@%s", t.Kind, t.Group, t.Name, t.Span)
	}
	return fmt.Sprintf("%s@%s", t.Kind, t.Span)
}
