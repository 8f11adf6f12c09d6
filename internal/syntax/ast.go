package syntax

import "fmt"

// Span is a half-open byte range [Start, End) into the pattern.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string { return fmt.Sprintf("%d..%d", s.Start, s.End) }

func span(start, end int) Span { return Span{Start: start, End: end} }

// Op tags the variant of a Node.
type Op uint8

const (
	OpEmpty        Op = iota // matches the empty string
	OpLiteral                // single rune
	OpCharClass              // [...] or a class escape
	OpAnyChar                // . with s flag
	OpAnyCharNotNL           // . without s flag
	OpAssert                 // zero-width anchor or boundary
	OpBackref                // \1, \k<name>
	OpConcat
	OpAlternate
	OpGroup
	OpRepeat
)

var opNames = [...]string{
	OpEmpty:        "Empty",
	OpLiteral:      "Literal",
	OpCharClass:    "CharClass",
	OpAnyChar:      "AnyChar",
	OpAnyCharNotNL: "AnyCharNotNL",
	OpAssert:       "Assert",
	OpBackref:      "Backref",
	OpConcat:       "Concat",
	OpAlternate:    "Alternate",
	OpGroup:        "Group",
	OpRepeat:       "Repeat",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// AssertKind identifies a zero-width assertion.
type AssertKind uint8

const (
	AssertBeginLine AssertKind = iota + 1 // ^ with m flag
	AssertEndLine                         // $ with m flag
	AssertBeginText                       // ^ or \A
	AssertEndText                         // $ or \z
	AssertWordBoundary
	AssertNotWordBoundary
)

var assertNames = [...]string{
	AssertBeginLine:       "BeginLine",
	AssertEndLine:         "EndLine",
	AssertBeginText:       "BeginText",
	AssertEndText:         "EndText",
	AssertWordBoundary:    "WordBoundary",
	AssertNotWordBoundary: "NotWordBoundary",
}

func (a AssertKind) String() string {
	if int(a) < len(assertNames) && assertNames[a] != "" {
		return assertNames[a]
	}
	return fmt.Sprintf("Assert(%d)", a)
}

// GroupKind is the kind of a parenthesized sub-pattern.
type GroupKind uint8

const (
	GroupCapturing GroupKind = iota + 1
	GroupNonCapturing
	GroupNamedCapturing
	GroupLookAhead
	GroupNegativeLookAhead
	GroupLookBehind
	GroupNegativeLookBehind
)

var groupNames = [...]string{
	GroupCapturing:          "Capturing",
	GroupNonCapturing:       "NonCapturing",
	GroupNamedCapturing:     "NamedCapturing",
	GroupLookAhead:          "LookAhead",
	GroupNegativeLookAhead:  "NegativeLookAhead",
	GroupLookBehind:         "LookBehind",
	GroupNegativeLookBehind: "NegativeLookBehind",
}

func (k GroupKind) String() string {
	if int(k) < len(groupNames) && groupNames[k] != "" {
		return groupNames[k]
	}
	return fmt.Sprintf("Group(%d)", k)
}

// Capturing reports whether groups of this kind are assigned an ordinal.
func (k GroupKind) Capturing() bool {
	return k == GroupCapturing || k == GroupNamedCapturing
}

// LookAround reports whether the group is a zero-width look-around assertion.
func (k GroupKind) LookAround() bool {
	return k >= GroupLookAhead && k <= GroupNegativeLookBehind
}

// Group describes the parenthesized construct wrapped by an OpGroup node.
type Group struct {
	Kind    GroupKind
	Ordinal int    // capture index, 0 for non-capturing kinds
	Name    string // NamedCapturing only
	Set     Flags  // flags turned on by (?flags:...)
	Clear   Flags  // flags turned off by (?-flags:...)
}

// Node is an AST node. Only the fields relevant to Op are populated.
type Node struct {
	Op   Op
	Span Span

	Sub []*Node // Concat, Alternate: children; Group, Repeat: exactly one

	Rune rune // Literal
	Fold bool // Literal: case-insensitive

	Class  *Class     // CharClass
	Assert AssertKind // Assert
	Group  *Group     // Group

	Ref     int    // Backref by number
	RefName string // Backref by name

	Min, Max int  // Repeat; Max == -1 means unbounded
	Greedy   bool // Repeat
}

// Equal reports whether two trees are structurally identical, spans included.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Op != b.Op || a.Span != b.Span || len(a.Sub) != len(b.Sub) {
		return false
	}
	switch a.Op {
	case OpLiteral:
		if a.Rune != b.Rune || a.Fold != b.Fold {
			return false
		}
	case OpCharClass:
		if !a.Class.equal(b.Class) {
			return false
		}
	case OpAssert:
		if a.Assert != b.Assert {
			return false
		}
	case OpBackref:
		if a.Ref != b.Ref || a.RefName != b.RefName {
			return false
		}
	case OpGroup:
		if *a.Group != *b.Group {
			return false
		}
	case OpRepeat:
		if a.Min != b.Min || a.Max != b.Max || a.Greedy != b.Greedy {
			return false
		}
	}
	for i := range a.Sub {
		if !Equal(a.Sub[i], b.Sub[i]) {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants in depth-first order. Returning false from
// fn skips the children of the node just visited.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, sub := range n.Sub {
		Walk(sub, fn)
	}
}

// CaptureNames returns the capture group names indexed by ordinal. Index 0 is
// the whole match and unnamed groups have an empty name.
func CaptureNames(n *Node) []string {
	names := []string{""}
	Walk(n, func(n *Node) bool {
		if n.Op == OpGroup && n.Group.Kind.Capturing() {
			for len(names) <= n.Group.Ordinal {
				names = append(names, "")
			}
			names[n.Group.Ordinal] = n.Group.Name
		}
		return true
	})
	return names
}

func newNode(op Op, sp Span) *Node { return &Node{Op: op, Span: sp} }

func literalNode(r rune, fold bool, sp Span) *Node {
	return &Node{Op: OpLiteral, Rune: r, Fold: fold, Span: sp}
}
