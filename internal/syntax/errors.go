package syntax

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ErrorKind identifies the category of a parse failure. The marker returned by
// String is stable across versions; tools may match on it.
type ErrorKind uint8

const (
	ErrUnclosedGroup ErrorKind = iota + 1
	ErrUnmatchedCloseGroup
	ErrUnclosedCharClass
	ErrInvalidCharClass
	ErrInvalidCharClassRange
	ErrInvalidClassEscape
	ErrInvalidEscape
	ErrIncompleteEscape
	ErrInvalidHexDigit
	ErrEmptyHexEscape
	ErrInvalidCodePoint
	ErrInvalidUnicodeClass
	ErrUnknownUnicodeProperty
	ErrInvalidUTF8
	ErrQuantifierWithoutOperand
	ErrInvalidRepetitionRange
	ErrRepetitionCountEmpty
	ErrRepetitionCountUnclosed
	ErrRepetitionCountTooLarge
	ErrQuantifiedLookAround
	ErrFlagUnrecognized
	ErrFlagDuplicate
	ErrFlagDanglingNegation
	ErrFlagRepeatedNegation
	ErrFlagUnexpectedEOF
	ErrEmptyFlags
	ErrGroupNameEmpty
	ErrGroupNameInvalid
	ErrGroupNameUnclosed
	ErrGroupNameDuplicate
	ErrInvalidBackreference
	ErrRecursionLimitExceeded
	ErrEmptyPatternNotAllowed

	numErrorKinds = iota + 1
)

var kindMarkers = [numErrorKinds]string{
	ErrUnclosedGroup:            "unclosed group",
	ErrUnmatchedCloseGroup:      "unopened group",
	ErrUnclosedCharClass:        "unclosed character class",
	ErrInvalidCharClass:         "invalid character class",
	ErrInvalidCharClassRange:    "invalid character class range",
	ErrInvalidClassEscape:       "invalid escape sequence found in character class",
	ErrInvalidEscape:            "unrecognized escape sequence",
	ErrIncompleteEscape:         "incomplete escape sequence",
	ErrInvalidHexDigit:          "invalid hexadecimal digit",
	ErrEmptyHexEscape:           "hexadecimal literal empty",
	ErrInvalidCodePoint:         "hexadecimal literal is not a Unicode scalar value",
	ErrInvalidUnicodeClass:      "invalid Unicode character class",
	ErrUnknownUnicodeProperty:   "Unicode property not found",
	ErrInvalidUTF8:              "invalid UTF-8",
	ErrQuantifierWithoutOperand: "repetition operator missing expression",
	ErrInvalidRepetitionRange:   "invalid repetition count range",
	ErrRepetitionCountEmpty:     "repetition quantifier expects a valid decimal",
	ErrRepetitionCountUnclosed:  "unclosed counted repetition",
	ErrRepetitionCountTooLarge:  "repetition count exceeds maximum",
	ErrQuantifiedLookAround:     "look-around assertion cannot be repeated",
	ErrFlagUnrecognized:         "unrecognized flag",
	ErrFlagDuplicate:            "duplicate flag",
	ErrFlagDanglingNegation:     "dangling flag negation operator",
	ErrFlagRepeatedNegation:     "flag negation operator repeated",
	ErrFlagUnexpectedEOF:        "expected flag but got end of regex",
	ErrEmptyFlags:               "empty flag set",
	ErrGroupNameEmpty:           "empty capture group name",
	ErrGroupNameInvalid:         "invalid capture group character",
	ErrGroupNameUnclosed:        "unclosed capture group name",
	ErrGroupNameDuplicate:       "duplicate capture group name",
	ErrInvalidBackreference:     "invalid backreference",
	ErrRecursionLimitExceeded:   "exceeded the maximum nesting depth",
	ErrEmptyPatternNotAllowed:   "empty pattern not allowed",
}

var kindNames = [numErrorKinds]string{
	ErrUnclosedGroup:            "UnclosedGroup",
	ErrUnmatchedCloseGroup:      "UnmatchedCloseGroup",
	ErrUnclosedCharClass:        "UnclosedCharClass",
	ErrInvalidCharClass:         "InvalidCharClass",
	ErrInvalidCharClassRange:    "InvalidCharClassRange",
	ErrInvalidClassEscape:       "InvalidClassEscape",
	ErrInvalidEscape:            "InvalidEscape",
	ErrIncompleteEscape:         "IncompleteEscape",
	ErrInvalidHexDigit:          "InvalidHexDigit",
	ErrEmptyHexEscape:           "EmptyHexEscape",
	ErrInvalidCodePoint:         "InvalidCodePoint",
	ErrInvalidUnicodeClass:      "InvalidUnicodeClass",
	ErrUnknownUnicodeProperty:   "UnknownUnicodeProperty",
	ErrInvalidUTF8:              "InvalidUTF8",
	ErrQuantifierWithoutOperand: "QuantifierWithoutOperand",
	ErrInvalidRepetitionRange:   "InvalidRepetitionRange",
	ErrRepetitionCountEmpty:     "RepetitionCountEmpty",
	ErrRepetitionCountUnclosed:  "RepetitionCountUnclosed",
	ErrRepetitionCountTooLarge:  "RepetitionCountTooLarge",
	ErrQuantifiedLookAround:     "QuantifiedLookAround",
	ErrFlagUnrecognized:         "FlagUnrecognized",
	ErrFlagDuplicate:            "FlagDuplicate",
	ErrFlagDanglingNegation:     "FlagDanglingNegation",
	ErrFlagRepeatedNegation:     "FlagRepeatedNegation",
	ErrFlagUnexpectedEOF:        "FlagUnexpectedEOF",
	ErrEmptyFlags:               "EmptyFlags",
	ErrGroupNameEmpty:           "GroupNameEmpty",
	ErrGroupNameInvalid:         "GroupNameInvalid",
	ErrGroupNameUnclosed:        "GroupNameUnclosed",
	ErrGroupNameDuplicate:       "GroupNameDuplicate",
	ErrInvalidBackreference:     "InvalidBackreference",
	ErrRecursionLimitExceeded:   "RecursionLimitExceeded",
	ErrEmptyPatternNotAllowed:   "EmptyPatternNotAllowed",
}

// String returns the kind's marker message.
func (k ErrorKind) String() string {
	if k > 0 && int(k) < len(kindMarkers) {
		return kindMarkers[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Name returns the identifier-style name of the kind, e.g. "UnclosedGroup".
func (k ErrorKind) Name() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error lets kinds be used as errors.Is targets.
func (k ErrorKind) Error() string { return k.String() }

// ErrorKinds returns every defined kind in declaration order.
func ErrorKinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, numErrorKinds-1)
	for k := ErrorKind(1); k < numErrorKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Error is a parse failure. It is built once at the failure point.
type Error struct {
	Kind    ErrorKind
	Span    Span
	Pattern string
	// Aux points at a related location, e.g. the first definition of a
	// duplicated group name.
	Aux    *Span
	Detail string
}

func newError(kind ErrorKind, sp Span, pattern string) *Error {
	return &Error{Kind: kind, Span: sp, Pattern: pattern}
}

// Message is the kind marker followed by the optional detail.
func (e *Error) Message() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("regex parse error:\n")
	writeSnippet(&b, e.Pattern, e.Span)
	b.WriteString("error: ")
	b.WriteString(e.Message())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

const snippetIndent = "    "

// writeSnippet prints the line of pattern holding sp.Start with carets under
// the span. Lines are numbered when the pattern spans several lines.
func writeSnippet(b *strings.Builder, pattern string, sp Span) {
	start := clamp(sp.Start, 0, len(pattern))
	end := clamp(sp.End, start, len(pattern))

	lineStart := strings.LastIndexByte(pattern[:start], '\n') + 1
	lineEnd := len(pattern)
	if i := strings.IndexByte(pattern[lineStart:], '\n'); i >= 0 {
		lineEnd = lineStart + i
	}
	if end > lineEnd {
		end = lineEnd
	}

	label := ""
	if strings.IndexByte(pattern, '\n') >= 0 {
		label = fmt.Sprintf("%d: ", strings.Count(pattern[:lineStart], "\n")+1)
	}

	b.WriteString(snippetIndent)
	b.WriteString(label)
	b.WriteString(pattern[lineStart:lineEnd])
	b.WriteByte('\n')

	pad := len(label) + runewidth.StringWidth(pattern[lineStart:start])
	carets := runewidth.StringWidth(pattern[start:end])
	if carets < 1 {
		carets = 1
	}
	b.WriteString(snippetIndent)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(strings.Repeat("^", carets))
	b.WriteByte('\n')
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
