package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Label is a one-line description of n without its children.
func Label(n *Node) string {
	switch n.Op {
	case OpLiteral:
		s := "Literal " + strconv.QuoteRune(n.Rune)
		if n.Fold {
			s += " fold"
		}
		return s
	case OpCharClass:
		return "CharClass " + formatClass(n.Class)
	case OpAssert:
		return "Assert " + n.Assert.String()
	case OpBackref:
		if n.RefName != "" {
			return "Backref " + n.RefName
		}
		return "Backref " + strconv.Itoa(n.Ref)
	case OpGroup:
		g := n.Group
		s := "Group " + g.Kind.String()
		if g.Kind.Capturing() {
			s += " #" + strconv.Itoa(g.Ordinal)
		}
		if g.Name != "" {
			s += " " + g.Name
		}
		if g.Set != 0 || g.Clear != 0 {
			s += " flags=" + g.Set.String()
			if g.Clear != 0 {
				s += "-" + g.Clear.String()
			}
		}
		return s
	case OpRepeat:
		max := "inf"
		if n.Max >= 0 {
			max = strconv.Itoa(n.Max)
		}
		s := fmt.Sprintf("Repeat{%d,%s}", n.Min, max)
		if !n.Greedy {
			s += " lazy"
		}
		return s
	}
	return n.Op.String()
}

// Dump renders the tree one node per line, children indented under their
// parent and each line suffixed by the node's span.
func Dump(n *Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dump(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(Label(n))
	b.WriteString(" @")
	b.WriteString(n.Span.String())
	b.WriteByte('\n')
	for _, sub := range n.Sub {
		dump(b, sub, depth+1)
	}
}
