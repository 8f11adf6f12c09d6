package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorRendering(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a(b", "regex parse error:\n    a(b\n     ^\nerror: unclosed group"},
		{"a{5,2}", "regex parse error:\n    a{5,2}\n     ^^^^^\nerror: invalid repetition count range: 5 > 2"},
		{"ab\n(c", "regex parse error:\n    2: (c\n       ^\nerror: unclosed group"},
		{"日本(", "regex parse error:\n    日本(\n        ^\nerror: unclosed group"},
		{"", ""},
	}
	for _, tt := range tests {
		_, err := Options{DisallowEmpty: true}.Parse(tt.in)
		require.Error(t, err, tt.in)
		if tt.want == "" {
			// empty pattern: a single caret under nothing
			assert.Equal(t, "regex parse error:\n    \n    ^\nerror: empty pattern not allowed", err.Error())
			continue
		}
		assert.Equal(t, tt.want, err.Error(), tt.in)
	}
}

func TestErrorKindsComplete(t *testing.T) {
	kinds := ErrorKinds()
	assert.Len(t, kinds, 33)
	seen := map[string]bool{}
	for _, k := range kinds {
		marker := k.String()
		assert.NotEmpty(t, marker, k.Name())
		assert.NotContains(t, marker, "ErrorKind(", k.Name())
		assert.False(t, seen[marker], "duplicate marker %q", marker)
		seen[marker] = true
		assert.False(t, strings.HasPrefix(k.Name(), "ErrorKind("))
	}
	assert.Equal(t, "ErrorKind(0)", ErrorKind(0).String())
	assert.Equal(t, "UnclosedGroup", ErrUnclosedGroup.Name())
}

func TestErrorMessage(t *testing.T) {
	e := newError(ErrUnknownUnicodeProperty, span(0, 7), `\p{Foo}`)
	assert.Equal(t, "Unicode property not found", e.Message())
	e.Detail = `"Foo"`
	assert.Equal(t, `Unicode property not found: "Foo"`, e.Message())
	assert.ErrorIs(t, e, ErrUnknownUnicodeProperty)
}
