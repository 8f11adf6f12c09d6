package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"rxparse/internal/syntax"
)

func render(t *testing.T, pattern string, f Format) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, syntax.MustParse(pattern), f, Options{}))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestTreeAndPattern(t *testing.T) {
	assert.Equal(t, "Literal 'a' @0..1\n", render(t, "a", Tree))
	assert.Equal(t, "a(b|c)d\n", render(t, "a(b|c)d", Pattern))
	assert.True(t, strings.HasPrefix(render(t, "a", DOT), "digraph AST {"))
}

func TestYAML(t *testing.T) {
	out := render(t, `(?i:x)+?`, YAML)

	var got Node
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Repeat", got.Op)
	assert.Equal(t, [2]int{0, 8}, got.Span)
	require.NotNil(t, got.Greedy)
	assert.False(t, *got.Greedy)
	assert.Equal(t, -1, *got.Max)

	group := got.Sub[0]
	assert.Equal(t, &Group{Kind: "NonCapturing", Set: "i"}, group.Group)
	assert.Equal(t, Node{Op: "Literal", Span: [2]int{4, 5}, Rune: "x", Fold: true}, *group.Sub[0])
}

func TestDocClass(t *testing.T) {
	d := Doc(syntax.MustParse(`[^a-z\d]`))
	assert.Equal(t, `[^a-z\d]`, d.Class)
	d = Doc(syntax.MustParse(`(a)\1`))
	assert.Equal(t, "1", d.Sub[1].Ref)
}

func TestPP(t *testing.T) {
	out := render(t, "ab", PP)
	assert.Contains(t, out, "Sub:")
	assert.Contains(t, out, "Rune:")
	assert.NotContains(t, out, "\x1b[", "no color by default")
}
