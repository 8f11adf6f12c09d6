package syntax

import (
	"strings"

	"rxparse/internal/flagspec"
)

// Flags alter which productions the parser builds. They can be set up front
// through Options or inline with (?flags) and (?flags:...).
type Flags uint8

const (
	FoldCase  Flags = 1 << iota // i
	MultiLine                   // m
	DotNL                       // s
	Ungreedy                    // U
	Verbose                     // x
)

var flagLetters = [...]struct {
	flag   Flags
	letter byte
}{
	{FoldCase, 'i'},
	{MultiLine, 'm'},
	{DotNL, 's'},
	{Ungreedy, 'U'},
	{Verbose, 'x'},
}

func (f Flags) String() string {
	var b strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			b.WriteByte(fl.letter)
		}
	}
	return b.String()
}

func flagOf(letter rune) Flags {
	for _, fl := range flagLetters {
		if rune(fl.letter) == letter {
			return fl.flag
		}
	}
	return 0
}

func lettersToFlags(letters string) Flags {
	var f Flags
	for _, r := range letters {
		f |= flagOf(r)
	}
	return f
}

// ParseFlags parses a flag string such as "im" or "i-s" into the set of
// enabled flags. Negated letters are removed from the result; use
// ParseFlagSpec to layer a flag string over existing flags.
func ParseFlags(s string) (Flags, error) {
	on, off, err := ParseFlagSpec(s)
	return on &^ off, err
}

// ParseFlagSpec parses a flag string into the letters it turns on and the
// letters it turns off.
func ParseFlagSpec(s string) (on, off Flags, err error) {
	if s == "" {
		return 0, 0, nil
	}
	spec, err := flagspec.Parse(s)
	if err != nil {
		return 0, 0, err
	}
	return lettersToFlags(spec.On), lettersToFlags(spec.Off), nil
}

// Apply returns f with on added and off removed.
func (f Flags) Apply(on, off Flags) Flags { return (f | on) &^ off }
