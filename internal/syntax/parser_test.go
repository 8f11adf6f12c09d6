package syntax

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------------------------------------------------------------- helpers

func lit(r rune, start int) *Node {
	return literalNode(r, false, span(start, start+1))
}

func mustParse(t *testing.T, pattern string) *Node {
	t.Helper()
	n, err := Parse(pattern)
	require.NoError(t, err, "parse %q", pattern)
	return n
}

func parseErr(t *testing.T, opts Options, pattern string) *Error {
	t.Helper()
	n, err := opts.Parse(pattern)
	require.Error(t, err, "parse %q", pattern)
	assert.Nil(t, n, "no partial tree for %q", pattern)
	var perr *Error
	require.True(t, errors.As(err, &perr), "%q: %T", pattern, err)
	return perr
}

// ------------------------------------------------------------------- trees

func TestParseAlternationInGroup(t *testing.T) {
	want := &Node{Op: OpConcat, Span: span(0, 7), Sub: []*Node{
		lit('a', 0),
		{Op: OpGroup, Span: span(1, 6), Group: &Group{Kind: GroupCapturing, Ordinal: 1}, Sub: []*Node{
			{Op: OpAlternate, Span: span(2, 5), Sub: []*Node{lit('b', 2), lit('c', 4)}},
		}},
		lit('d', 6),
	}}
	got := mustParse(t, "a(b|c)d")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("a(b|c)d (-want +got):\n%s", diff)
	}
}

func TestParseEmpty(t *testing.T) {
	n := mustParse(t, "")
	assert.Equal(t, &Node{Op: OpEmpty}, n)

	e := parseErr(t, Options{DisallowEmpty: true}, "")
	assert.Equal(t, ErrEmptyPatternNotAllowed, e.Kind)
	assert.Contains(t, e.Error(), "empty pattern not allowed")

	// an alternation of empties is not the empty pattern
	_, err := Options{DisallowEmpty: true}.Parse("|")
	assert.NoError(t, err)
}

func TestParseEmptyBranches(t *testing.T) {
	n := mustParse(t, "a||")
	require.Equal(t, OpAlternate, n.Op)
	require.Len(t, n.Sub, 3)
	assert.Equal(t, OpEmpty, n.Sub[1].Op)
	assert.Equal(t, span(2, 2), n.Sub[1].Span)
	assert.Equal(t, span(3, 3), n.Sub[2].Span)
	assert.Equal(t, span(0, 3), n.Span)

	n = mustParse(t, "()")
	assert.Equal(t, OpEmpty, n.Sub[0].Op)
}

func TestParseRepeat(t *testing.T) {
	tests := []struct {
		in       string
		min, max int
		greedy   bool
	}{
		{"a*", 0, -1, true},
		{"a+?", 1, -1, false},
		{"a??", 0, 1, false},
		{"a{3}", 3, 3, true},
		{"a{3,}", 3, -1, true},
		{"a{2,5}?", 2, 5, false},
		{"(?U)a*", 0, -1, false},
		{"(?U)a*?", 0, -1, true},
		{"^*", 0, -1, true},
	}
	for _, tt := range tests {
		n := mustParse(t, tt.in)
		require.Equal(t, OpRepeat, n.Op, tt.in)
		assert.Equal(t, tt.min, n.Min, tt.in)
		assert.Equal(t, tt.max, n.Max, tt.in)
		assert.Equal(t, tt.greedy, n.Greedy, tt.in)
		assert.Equal(t, len(tt.in), n.Span.End, tt.in)
	}

	n := mustParse(t, "ab*")
	require.Equal(t, OpConcat, n.Op)
	assert.Equal(t, OpLiteral, n.Sub[0].Op)
	assert.Equal(t, span(1, 3), n.Sub[1].Span)
}

func TestParseFlags(t *testing.T) {
	n := mustParse(t, "(?i)a")
	assert.Equal(t, literalNode('a', true, span(4, 5)), n)

	n = mustParse(t, "a(?i:b)c")
	require.Equal(t, OpConcat, n.Op)
	assert.False(t, n.Sub[0].Fold)
	assert.Equal(t, &Group{Kind: GroupNonCapturing, Set: FoldCase}, n.Sub[1].Group)
	assert.True(t, n.Sub[1].Sub[0].Fold)
	assert.False(t, n.Sub[2].Fold, "scoped flags end with the group")

	n = mustParse(t, "(a(?i)b)c")
	assert.True(t, n.Sub[0].Sub[0].Sub[1].Fold)
	assert.False(t, n.Sub[1].Fold, "directive ends with the enclosing group")

	n = mustParse(t, "(?i)(?-i:a)")
	assert.Equal(t, FoldCase, n.Group.Clear)
	assert.False(t, n.Sub[0].Fold)

	assert.Equal(t, OpAnyCharNotNL, mustParse(t, ".").Op)
	assert.Equal(t, OpAnyChar, mustParse(t, "(?s).").Op)

	n = mustParse(t, `^\A$\z`)
	for _, sub := range n.Sub {
		assert.Contains(t, []AssertKind{AssertBeginText, AssertEndText}, sub.Assert)
	}
	n = mustParse(t, `(?m)^\A$`)
	assert.Equal(t, AssertBeginLine, n.Sub[0].Assert)
	assert.Equal(t, AssertBeginText, n.Sub[1].Assert)
	assert.Equal(t, AssertEndLine, n.Sub[2].Assert)

	n = mustParse(t, "(?x) a b # note\n c")
	require.Equal(t, OpConcat, n.Op)
	assert.Len(t, n.Sub, 3)

	n = mustParse(t, "(?i)[a-z]\\d")
	assert.True(t, n.Sub[0].Class.Fold)
	assert.True(t, n.Sub[1].Class.Fold)

	n, err := Options{Flags: FoldCase | DotNL}.Parse("a.")
	require.NoError(t, err)
	assert.True(t, n.Sub[0].Fold)
	assert.Equal(t, OpAnyChar, n.Sub[1].Op)
}

func TestParseCaptures(t *testing.T) {
	n := mustParse(t, `(a)(?:b)(?P<n>c)((d))(?<m>e)\k<n>\2`)
	assert.Equal(t, []string{"", "", "n", "", "", "m"}, CaptureNames(n))

	var ordinals []int
	Walk(n, func(n *Node) bool {
		if n.Op == OpGroup && n.Group.Kind.Capturing() {
			ordinals = append(ordinals, n.Group.Ordinal)
		}
		return true
	})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ordinals)
}

func TestParseLookAround(t *testing.T) {
	n := mustParse(t, "(?=a)(?!b)(?<=c)(?<!d)")
	var got []GroupKind
	for _, sub := range n.Sub {
		got = append(got, sub.Group.Kind)
		assert.Zero(t, sub.Group.Ordinal)
	}
	assert.Equal(t, []GroupKind{GroupLookAhead, GroupNegativeLookAhead, GroupLookBehind, GroupNegativeLookBehind}, got)
}

func TestParseClass(t *testing.T) {
	n := mustParse(t, `[^]a-c\d[:alpha:]-]`)
	require.Equal(t, OpCharClass, n.Op)
	assert.True(t, n.Class.Negated)
	assert.Equal(t, []ClassItem{
		{Kind: ClassLiteral, Lo: ']', Hi: ']', Span: span(2, 3)},
		{Kind: ClassRange, Lo: 'a', Hi: 'c', Span: span(3, 6)},
		{Kind: ClassPerl, Name: "d", Span: span(6, 8)},
		{Kind: ClassPOSIX, Name: "alpha", Span: span(8, 17)},
		{Kind: ClassLiteral, Lo: '-', Hi: '-', Span: span(17, 18)},
	}, n.Class.Items)
	assert.Equal(t, span(0, 19), n.Span)

	n = mustParse(t, `[\d-]`)
	assert.Len(t, n.Class.Items, 2)

	n = mustParse(t, `[a-]`)
	assert.Len(t, n.Class.Items, 2)

	n = mustParse(t, `[--/]`)
	assert.Equal(t, []ClassItem{{Kind: ClassRange, Lo: '-', Hi: '/', Span: span(1, 4)}}, n.Class.Items)

	n = mustParse(t, `[a-c-e]`)
	assert.Equal(t, []ClassItem{
		{Kind: ClassRange, Lo: 'a', Hi: 'c', Span: span(1, 4)},
		{Kind: ClassLiteral, Lo: '-', Hi: '-', Span: span(4, 5)},
		{Kind: ClassLiteral, Lo: 'e', Hi: 'e', Span: span(5, 6)},
	}, n.Class.Items)

	n = mustParse(t, `[--]`)
	assert.Len(t, n.Class.Items, 2)

	n = mustParse(t, `\pL`)
	assert.Equal(t, []ClassItem{{Kind: ClassUnicode, Name: "L", Span: span(0, 3)}}, n.Class.Items)
}

func TestParsePropertyResolver(t *testing.T) {
	for _, name := range []string{"L", "Lu", "Greek", "Han", "White_Space", "Any"} {
		assert.True(t, UnicodeTables.Known(name), name)
	}
	opts := Options{Properties: PropertyFunc(func(name string) bool { return name == "Custom" })}
	_, err := opts.Parse(`\p{Custom}`)
	assert.NoError(t, err)
	e := parseErr(t, opts, `[\p{Greek}]`)
	assert.Equal(t, ErrUnknownUnicodeProperty, e.Kind)
	assert.Equal(t, span(1, 10), e.Span)
}

// ------------------------------------------------------------------- errors

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in   string
		kind ErrorKind
		sp   Span
	}{
		{"(", ErrUnclosedGroup, span(0, 1)},
		{"a(b|c", ErrUnclosedGroup, span(1, 2)},
		{"((a)", ErrUnclosedGroup, span(0, 1)},
		{"(?<=a", ErrUnclosedGroup, span(0, 1)},
		{")", ErrUnmatchedCloseGroup, span(0, 1)},
		{"a)", ErrUnmatchedCloseGroup, span(1, 2)},
		{"(a))", ErrUnmatchedCloseGroup, span(3, 4)},
		{"a**", ErrQuantifierWithoutOperand, span(2, 3)},
		{"*", ErrQuantifierWithoutOperand, span(0, 1)},
		{"a|*", ErrQuantifierWithoutOperand, span(2, 3)},
		{"(*)", ErrQuantifierWithoutOperand, span(1, 2)},
		{"(?i)*", ErrQuantifierWithoutOperand, span(4, 5)},
		{"a{2}{3}", ErrQuantifierWithoutOperand, span(4, 7)},
		{"a*+", ErrQuantifierWithoutOperand, span(2, 3)},
		{"a{5,2}", ErrInvalidRepetitionRange, span(1, 6)},
		{"{", ErrRepetitionCountUnclosed, span(0, 1)},
		{"a{", ErrRepetitionCountUnclosed, span(1, 2)},
		{"{5}", ErrQuantifierWithoutOperand, span(0, 3)},
		{"{,5}", ErrRepetitionCountEmpty, span(0, 2)},
		{"(?=a)*", ErrQuantifiedLookAround, span(5, 6)},
		{"(?<!a){2}", ErrQuantifiedLookAround, span(6, 9)},
		{"[a", ErrUnclosedCharClass, span(0, 1)},
		{"[a-", ErrUnclosedCharClass, span(0, 1)},
		{`[\d-`, ErrUnclosedCharClass, span(0, 1)},
		{"x[^", ErrUnclosedCharClass, span(1, 3)},
		{"[z-a]", ErrInvalidCharClassRange, span(1, 4)},
		{`[--\d]`, ErrInvalidCharClass, span(1, 5)},
		{"[[:foo:]]", ErrInvalidCharClass, span(1, 8)},
		{`[a-\d]`, ErrInvalidCharClass, span(1, 5)},
		{`[\d-z]`, ErrInvalidCharClass, span(1, 5)},
		{`[\b]`, ErrInvalidClassEscape, span(1, 3)},
		{`\q`, ErrInvalidEscape, span(0, 2)},
		{`\p{Foo}`, ErrUnknownUnicodeProperty, span(0, 7)},
		{"(?z)", ErrFlagUnrecognized, span(2, 3)},
		{"(?ii)", ErrFlagDuplicate, span(3, 4)},
		{"(?i-)", ErrFlagDanglingNegation, span(3, 4)},
		{"(?--i)", ErrFlagRepeatedNegation, span(3, 4)},
		{"(?i-s-m:a)", ErrFlagRepeatedNegation, span(5, 6)},
		{"(?i", ErrFlagUnexpectedEOF, span(0, 3)},
		{"(?)", ErrEmptyFlags, span(0, 3)},
		{"(?<n>a)(?<n>b)", ErrGroupNameDuplicate, span(10, 11)},
		{`\2(a)`, ErrInvalidBackreference, span(0, 2)},
		{`(a)\k<x>`, ErrInvalidBackreference, span(3, 8)},
	}
	for _, tt := range tests {
		e := parseErr(t, Options{}, tt.in)
		assert.Equal(t, tt.kind, e.Kind, "%q: %s", tt.in, e.Message())
		assert.Equal(t, tt.sp, e.Span, tt.in)
		assert.Equal(t, tt.in, e.Pattern)
		assert.Contains(t, e.Error(), tt.kind.String(), tt.in)
	}
}

func TestDuplicateNamePointsAtFirst(t *testing.T) {
	e := parseErr(t, Options{}, "(?<n>a)(?<n>b)")
	require.NotNil(t, e.Aux)
	assert.Equal(t, span(3, 4), *e.Aux)
}

func TestUnclosedGroupMarker(t *testing.T) {
	_, err := Parse("(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed group")
	assert.ErrorIs(t, err, ErrUnclosedGroup)
	assert.NotErrorIs(t, err, ErrUnmatchedCloseGroup)
}

func TestNesting(t *testing.T) {
	for _, k := range []int{1, 2, 50, DefaultNestLimit} {
		e := parseErr(t, Options{}, strings.Repeat("(", k))
		assert.Equal(t, ErrUnclosedGroup, e.Kind, "k=%d", k)
		assert.Equal(t, span(k-1, k), e.Span, "k=%d", k)

		e = parseErr(t, Options{}, strings.Repeat(")", k))
		assert.Equal(t, ErrUnmatchedCloseGroup, e.Kind, "k=%d", k)
		assert.Equal(t, span(0, 1), e.Span, "k=%d", k)
	}

	e := parseErr(t, Options{}, strings.Repeat("(", 100000))
	assert.Equal(t, ErrRecursionLimitExceeded, e.Kind)
	assert.Equal(t, span(DefaultNestLimit, DefaultNestLimit+1), e.Span)

	deep := strings.Repeat("(", DefaultNestLimit) + "a" + strings.Repeat(")", DefaultNestLimit)
	n := mustParse(t, deep)
	depth := 0
	for ; n.Op == OpGroup; n = n.Sub[0] {
		depth++
	}
	assert.Equal(t, DefaultNestLimit, depth)

	e = parseErr(t, Options{NestLimit: 2}, "((()))")
	assert.Equal(t, ErrRecursionLimitExceeded, e.Kind)
	assert.Equal(t, span(2, 3), e.Span)
}

func TestFirstErrorWins(t *testing.T) {
	e := parseErr(t, Options{}, `a**\q(`)
	assert.Equal(t, ErrQuantifierWithoutOperand, e.Kind)
}

// ------------------------------------------------------------------- properties

func TestIdempotent(t *testing.T) {
	for _, p := range []string{"", "a(b|c)d", `(?i)[^a-z]+\d{2,3}?`, `(?P<x>a)\k<x>`, "(?m)^a$|b"} {
		a, err := Parse(p)
		require.NoError(t, err)
		b, err := Parse(p)
		require.NoError(t, err)
		assert.True(t, Equal(a, b), p)
	}
	assert.False(t, Equal(mustParse(t, "ab"), mustParse(t, "ac")))
	assert.False(t, Equal(mustParse(t, "a*"), mustParse(t, "a*?")))
}

func TestConcurrentParse(t *testing.T) {
	patterns := []string{"a(b|c)d", `[\w.-]+@[\w-]+\.\w+`, "((((a))))", `(?x) \d+ # digits`}
	want := make([]*Node, len(patterns))
	for i, p := range patterns {
		want[i] = mustParse(t, p)
	}
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, p := range patterns {
				n, err := Parse(p)
				if assert.NoError(t, err) {
					assert.True(t, Equal(want[i], n), p)
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseFlagsString(t *testing.T) {
	_, err := ParseFlags("ims-s")
	require.Error(t, err, "s twice is a duplicate")
	f, err := ParseFlags("im-s")
	require.NoError(t, err)
	assert.Equal(t, FoldCase|MultiLine, f)
	assert.Equal(t, "im", f.String())

	f, err = ParseFlags("")
	require.NoError(t, err)
	assert.Zero(t, f)

	_, err = ParseFlags("q")
	assert.Error(t, err)

	on, off, err := ParseFlagSpec("i-s")
	require.NoError(t, err)
	assert.Equal(t, FoldCase, on)
	assert.Equal(t, DotNL, off)
	assert.Equal(t, FoldCase|MultiLine, (DotNL | MultiLine).Apply(on, off))
}
