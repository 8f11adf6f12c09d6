// Package flagspec parses regex flag strings such as "im", "i-s" or "-x".
// The same grammar serves inline groups ((?i-s:...)), the config file and the
// command line.
package flagspec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Alphabet lists the recognized flag letters.
const Alphabet = "imsUx"

type List struct {
	Items []*Item `parser:"@@*"`
}

type Item struct {
	Pos    lexer.Position
	Negate bool   `parser:"  @Negate"`
	Letter string `parser:"| @Letter"`
}

var flagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Letter", Pattern: `[A-Za-z]`},
	{Name: "Negate", Pattern: `-`},
})

var parser = participle.MustBuild[List](participle.Lexer(flagLexer))

// Code classifies a flag string failure.
type Code uint8

const (
	Unrecognized Code = iota + 1
	Duplicate
	DanglingNegation
	RepeatedNegation
	Empty
)

func (c Code) String() string {
	switch c {
	case Unrecognized:
		return "unrecognized flag"
	case Duplicate:
		return "duplicate flag"
	case DanglingNegation:
		return "dangling flag negation operator"
	case RepeatedNegation:
		return "flag negation operator repeated"
	case Empty:
		return "empty flag set"
	}
	return fmt.Sprintf("Code(%d)", c)
}

// Error reports the byte offset, relative to the start of the flag string, of
// the offending character.
type Error struct {
	Code   Code
	Offset int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Code, e.Offset)
}

// Spec is a validated flag string: letters to enable and letters to disable,
// in source order.
type Spec struct {
	On  string
	Off string
}

// Parse validates s. Every failure is reported as *Error.
func Parse(s string) (Spec, error) {
	if s == "" {
		return Spec{}, &Error{Code: Empty}
	}
	list, err := parser.ParseString("", s)
	if err != nil {
		return Spec{}, &Error{Code: Unrecognized, Offset: offsetOf(err)}
	}
	return check(list)
}

func offsetOf(err error) int {
	var perr participle.Error
	if errors.As(err, &perr) {
		return perr.Position().Offset
	}
	return 0
}

func check(list *List) (Spec, error) {
	var on, off strings.Builder
	var negated bool
	var negateAt, afterNeg int
	seen := map[string]bool{}
	for _, it := range list.Items {
		if it.Negate {
			if negated {
				return Spec{}, &Error{Code: RepeatedNegation, Offset: it.Pos.Offset}
			}
			negated, negateAt = true, it.Pos.Offset
			continue
		}
		if !strings.Contains(Alphabet, it.Letter) {
			return Spec{}, &Error{Code: Unrecognized, Offset: it.Pos.Offset}
		}
		if seen[it.Letter] {
			return Spec{}, &Error{Code: Duplicate, Offset: it.Pos.Offset}
		}
		seen[it.Letter] = true
		if negated {
			off.WriteString(it.Letter)
			afterNeg++
		} else {
			on.WriteString(it.Letter)
		}
	}
	if negated && afterNeg == 0 {
		return Spec{}, &Error{Code: DanglingNegation, Offset: negateAt}
	}
	return Spec{On: on.String(), Off: off.String()}, nil
}
