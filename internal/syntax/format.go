package syntax

import (
	"strconv"
	"strings"
	"unicode"
)

// Format renders n back into pattern syntax. Parsing the result with default
// Options yields a tree equal to n apart from spans. Fold, dot and anchor
// modes that differ from the surrounding context are restored with inline
// flag directives, which add no nodes to the tree.
func Format(n *Node) string {
	f := &formatter{}
	f.node(n)
	return f.b.String()
}

type formatter struct {
	b   strings.Builder
	cur Flags

	// afterRef is set right after a numeric backreference, where a raw
	// digit would extend the reference.
	afterRef bool
}

func (f *formatter) write(s string) {
	f.b.WriteString(s)
	f.afterRef = false
}

// need switches the current mode so that want&mask holds.
func (f *formatter) need(want, mask Flags) {
	diff := (f.cur ^ want) & mask
	if diff == 0 {
		return
	}
	on, off := (want & diff).String(), (^want & diff).String()
	s := "(?" + on
	if off != "" {
		s += "-" + off
	}
	f.write(s + ")")
	f.cur = (f.cur | (want & diff)) &^ (^want & diff)
}

func boolFlag(on bool, fl Flags) Flags {
	if on {
		return fl
	}
	return 0
}

func (f *formatter) node(n *Node) {
	switch n.Op {
	case OpEmpty:
	case OpLiteral:
		f.need(boolFlag(n.Fold, FoldCase), FoldCase)
		if f.afterRef && n.Rune >= '0' && n.Rune <= '9' {
			f.write(`\x{` + strconv.FormatInt(int64(n.Rune), 16) + `}`)
			return
		}
		f.write(escapeLiteral(n.Rune, false))
	case OpAnyChar:
		f.need(DotNL, DotNL)
		f.write(".")
	case OpAnyCharNotNL:
		f.need(0, DotNL)
		f.write(".")
	case OpAssert:
		f.assert(n.Assert)
	case OpCharClass:
		f.need(boolFlag(n.Class.Fold, FoldCase), FoldCase)
		f.write(formatClass(n.Class))
	case OpBackref:
		if n.RefName != "" {
			f.write(`\k<` + n.RefName + `>`)
			return
		}
		f.write(`\` + strconv.Itoa(n.Ref))
		f.afterRef = true
	case OpConcat:
		for _, sub := range n.Sub {
			f.node(sub)
		}
	case OpAlternate:
		for i, sub := range n.Sub {
			if i > 0 {
				f.write("|")
			}
			f.node(sub)
		}
	case OpGroup:
		f.group(n)
	case OpRepeat:
		f.repeat(n)
	}
}

func (f *formatter) assert(a AssertKind) {
	switch a {
	case AssertBeginLine:
		f.need(MultiLine, MultiLine)
		f.write("^")
	case AssertEndLine:
		f.need(MultiLine, MultiLine)
		f.write("$")
	case AssertBeginText:
		f.write(`\A`)
	case AssertEndText:
		f.write(`\z`)
	case AssertWordBoundary:
		f.write(`\b`)
	case AssertNotWordBoundary:
		f.write(`\B`)
	}
}

var groupPrefixes = map[GroupKind]string{
	GroupCapturing:          "(",
	GroupNonCapturing:       "(?:",
	GroupLookAhead:          "(?=",
	GroupNegativeLookAhead:  "(?!",
	GroupLookBehind:         "(?<=",
	GroupNegativeLookBehind: "(?<!",
}

func (f *formatter) group(n *Node) {
	g := n.Group
	switch {
	case g.Kind == GroupNamedCapturing:
		f.write("(?P<" + g.Name + ">")
	case g.Kind == GroupNonCapturing && (g.Set != 0 || g.Clear != 0):
		s := "(?" + g.Set.String()
		if g.Clear != 0 {
			s += "-" + g.Clear.String()
		}
		f.write(s + ":")
	default:
		f.write(groupPrefixes[g.Kind])
	}
	saved := f.cur
	f.cur = (f.cur | g.Set) &^ g.Clear
	f.node(n.Sub[0])
	f.cur = saved
	f.write(")")
}

func (f *formatter) repeat(n *Node) {
	sub := n.Sub[0]
	switch sub.Op {
	case OpEmpty, OpConcat, OpAlternate, OpRepeat:
		f.write("(?:")
		f.node(sub)
		f.write(")")
	default:
		f.node(sub)
	}
	switch {
	case n.Min == 0 && n.Max == -1:
		f.write("*")
	case n.Min == 1 && n.Max == -1:
		f.write("+")
	case n.Min == 0 && n.Max == 1:
		f.write("?")
	case n.Max == -1:
		f.write("{" + strconv.Itoa(n.Min) + ",}")
	case n.Min == n.Max:
		f.write("{" + strconv.Itoa(n.Min) + "}")
	default:
		f.write("{" + strconv.Itoa(n.Min) + "," + strconv.Itoa(n.Max) + "}")
	}
	// the quantifier is lazy when its greediness disagrees with U
	if n.Greedy == (f.cur&Ungreedy != 0) {
		f.write("?")
	}
}

func formatClass(c *Class) string {
	if !c.Negated && len(c.Items) == 1 {
		switch it := c.Items[0]; it.Kind {
		case ClassPerl, ClassUnicode:
			return formatClassItem(it)
		}
	}
	var b strings.Builder
	b.WriteByte('[')
	if c.Negated {
		b.WriteByte('^')
	}
	for _, it := range c.Items {
		b.WriteString(formatClassItem(it))
	}
	b.WriteByte(']')
	return b.String()
}

func formatClassItem(it ClassItem) string {
	switch it.Kind {
	case ClassLiteral:
		return escapeLiteral(it.Lo, true)
	case ClassRange:
		return escapeLiteral(it.Lo, true) + "-" + escapeLiteral(it.Hi, true)
	case ClassPerl:
		if it.Negated {
			return `\` + strings.ToUpper(it.Name)
		}
		return `\` + it.Name
	case ClassUnicode:
		if it.Negated {
			return `\P{` + it.Name + `}`
		}
		return `\p{` + it.Name + `}`
	case ClassPOSIX:
		if it.Negated {
			return "[:^" + it.Name + ":]"
		}
		return "[:" + it.Name + ":]"
	}
	return ""
}

const (
	metaChars  = `\.+*?()|[]{}^$# `
	classMetas = `\[]-^`
)

var controlNames = map[rune]string{
	'\a': `\a`, '\f': `\f`, '\t': `\t`, '\n': `\n`, '\r': `\r`, '\v': `\v`,
}

func escapeLiteral(r rune, inClass bool) string {
	metas := metaChars
	if inClass {
		metas = classMetas
	}
	if strings.ContainsRune(metas, r) {
		return `\` + string(r)
	}
	if s, ok := controlNames[r]; ok {
		return s
	}
	if !unicode.IsPrint(r) {
		return `\x{` + strconv.FormatInt(int64(r), 16) + `}`
	}
	return string(r)
}
