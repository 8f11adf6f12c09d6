package syntax

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"rxparse/internal/flagspec"
)

// branchState is the part of the parser state that belongs to one group body.
// It is saved on the tracker when a group opens and restored when it closes.
type branchState struct {
	flags    Flags
	concat   []*Node
	branches []*Node
	start    int // offset where the current branch began
}

// parser is an explicit-stack parser: a single loop over scanner tokens, with
// open groups kept on a Tracker instead of the Go call stack. Deeply nested
// input therefore cannot exhaust goroutine stack space.
type parser struct {
	opts    Options
	pattern string
	scan    *Scanner
	stack   *Tracker

	branchState

	captures int
	names    map[string]Span // group name -> span of its first definition
	refs     []*Node

	canRepeat  bool // the last item of concat may take a quantifier
	lookAround bool // the last item of concat is a look-around group
	classOpen  Span
}

func newParser(pattern string, opts Options) *parser {
	p := &parser{
		opts:    opts,
		pattern: pattern,
		scan:    NewScanner(pattern),
		stack:   NewTracker(opts.NestLimit),
		names:   map[string]Span{},
	}
	p.flags = opts.Flags
	return p
}

func (p *parser) errorf(kind ErrorKind, sp Span) error {
	return newError(kind, sp, p.pattern)
}

func (p *parser) errorDetail(kind ErrorKind, sp Span, detail string) error {
	e := newError(kind, sp, p.pattern)
	e.Detail = detail
	return e
}

func (p *parser) invalid(tok Token) error {
	return p.errorDetail(tok.Err, tok.Span, tok.Detail)
}

func (p *parser) checkProperty(tok Token) error {
	res := p.opts.Properties
	if res == nil {
		res = UnicodeTables
	}
	if !res.Known(tok.Item.Name) {
		return p.errorDetail(ErrUnknownUnicodeProperty, tok.Span, fmt.Sprintf("%q", tok.Item.Name))
	}
	return nil
}

func (p *parser) parse() (*Node, error) {
	for {
		tok := p.scan.Next(p.flags&Verbose != 0)
		var err error
		switch tok.Kind {
		case TokEOF:
			return p.finish(tok)
		case TokInvalid:
			err = p.invalid(tok)
		case TokLiteral:
			p.push(literalNode(tok.Rune, p.flags&FoldCase != 0, tok.Span))
		case TokDot:
			op := OpAnyCharNotNL
			if p.flags&DotNL != 0 {
				op = OpAnyChar
			}
			p.push(newNode(op, tok.Span))
		case TokAssert:
			p.push(p.assert(tok))
		case TokClassEscape:
			err = p.classEscape(tok)
		case TokOpenClass:
			var n *Node
			if n, err = p.parseClass(tok); err == nil {
				p.push(n)
			}
		case TokBackref:
			n := &Node{Op: OpBackref, Span: tok.Span, Ref: tok.Ref, RefName: tok.Name}
			p.refs = append(p.refs, n)
			p.push(n)
		case TokQuantifier:
			err = p.repeat(tok)
		case TokAlternate:
			p.branches = append(p.branches, p.collapse(tok.Span.Start))
			p.concat = nil
			p.start = tok.Span.End
			p.canRepeat, p.lookAround = false, false
		case TokOpenGroup:
			err = p.openGroup(tok)
		case TokSetFlags:
			var on, off Flags
			if on, off, err = p.parseFlags(tok); err == nil {
				p.flags = p.flags.Apply(on, off)
				p.canRepeat, p.lookAround = false, false
			}
		case TokCloseGroup:
			err = p.closeGroup(tok)
		default:
			err = p.errorDetail(ErrInvalidEscape, tok.Span, "unexpected "+tok.Kind.String())
		}
		if err != nil {
			return nil, err
		}
	}
}

// push appends an operand to the current branch.
func (p *parser) push(n *Node) {
	p.concat = append(p.concat, n)
	p.canRepeat, p.lookAround = true, false
}

func (p *parser) assert(tok Token) *Node {
	n := newNode(OpAssert, tok.Span)
	n.Assert = tok.Assert
	if p.flags&MultiLine != 0 {
		switch tok.Rune {
		case '^':
			n.Assert = AssertBeginLine
		case '$':
			n.Assert = AssertEndLine
		}
	}
	return n
}

func (p *parser) classEscape(tok Token) error {
	if tok.Item.Kind == ClassUnicode {
		if err := p.checkProperty(tok); err != nil {
			return err
		}
	}
	cls := &Class{Fold: p.flags&FoldCase != 0, Items: []ClassItem{tok.Item}}
	p.push(&Node{Op: OpCharClass, Span: tok.Span, Class: cls})
	return nil
}

func (p *parser) repeat(tok Token) error {
	if p.lookAround {
		return p.errorf(ErrQuantifiedLookAround, tok.Span)
	}
	if !p.canRepeat || len(p.concat) == 0 {
		return p.errorf(ErrQuantifierWithoutOperand, tok.Span)
	}
	if tok.Max >= 0 && tok.Min > tok.Max {
		return p.errorDetail(ErrInvalidRepetitionRange, tok.Span,
			fmt.Sprintf("%d > %d", tok.Min, tok.Max))
	}
	last := p.concat[len(p.concat)-1]
	greedy := !tok.Lazy
	if p.flags&Ungreedy != 0 {
		greedy = !greedy
	}
	p.concat[len(p.concat)-1] = &Node{
		Op:     OpRepeat,
		Span:   span(last.Span.Start, tok.Span.End),
		Sub:    []*Node{last},
		Min:    tok.Min,
		Max:    tok.Max,
		Greedy: greedy,
	}
	p.canRepeat = false
	return nil
}

var flagErrorKinds = map[flagspec.Code]ErrorKind{
	flagspec.Unrecognized:     ErrFlagUnrecognized,
	flagspec.Duplicate:        ErrFlagDuplicate,
	flagspec.DanglingNegation: ErrFlagDanglingNegation,
	flagspec.RepeatedNegation: ErrFlagRepeatedNegation,
	flagspec.Empty:            ErrEmptyFlags,
}

// parseFlags validates the flag letters of (?flags) or (?flags:.
func (p *parser) parseFlags(tok Token) (on, off Flags, err error) {
	spec, ferr := flagspec.Parse(tok.Flags)
	if ferr == nil {
		return lettersToFlags(spec.On), lettersToFlags(spec.Off), nil
	}
	kind, at := ErrFlagUnrecognized, tok.FlagsSpan.Start
	var fe *flagspec.Error
	if errors.As(ferr, &fe) {
		kind, at = flagErrorKinds[fe.Code], at+fe.Offset
	}
	if kind == ErrEmptyFlags {
		return 0, 0, p.errorf(kind, tok.Span)
	}
	_, w := utf8.DecodeRuneInString(p.pattern[at:])
	return 0, 0, p.errorf(kind, span(at, at+w))
}

func (p *parser) openGroup(tok Token) error {
	frame := GroupFrame{Kind: tok.Group, Start: tok.Span.Start, Name: tok.Name}
	var on, off Flags
	if tok.Flags != "" {
		var err error
		if on, off, err = p.parseFlags(tok); err != nil {
			return err
		}
	}
	if tok.Group == GroupNamedCapturing {
		if first, dup := p.names[tok.Name]; dup {
			e := newError(ErrGroupNameDuplicate, tok.NameSpan, p.pattern)
			e.Aux = &first
			e.Detail = fmt.Sprintf("%q first defined at offset %d", tok.Name, first.Start)
			return e
		}
		p.names[tok.Name] = tok.NameSpan
	}
	if tok.Group.Capturing() {
		p.captures++
		frame.Ordinal = p.captures
	}
	frame.set, frame.clear = on, off
	frame.saved = p.branchState
	if err := p.stack.Push(frame); err != nil {
		return p.errorDetail(ErrRecursionLimitExceeded, span(tok.Span.Start, tok.Span.Start+1),
			fmt.Sprintf("limit is %d", p.stack.Limit()))
	}
	p.branchState = branchState{
		flags: p.flags.Apply(on, off),
		start: tok.Span.End,
	}
	p.canRepeat, p.lookAround = false, false
	return nil
}

func (p *parser) closeGroup(tok Token) error {
	frame, err := p.stack.Pop()
	if err != nil {
		return p.errorf(ErrUnmatchedCloseGroup, tok.Span)
	}
	body := p.alternation(tok.Span.Start)
	p.branchState = frame.saved
	p.push(&Node{
		Op:   OpGroup,
		Span: span(frame.Start, tok.Span.End),
		Sub:  []*Node{body},
		Group: &Group{
			Kind:    frame.Kind,
			Ordinal: frame.Ordinal,
			Name:    frame.Name,
			Set:     frame.set,
			Clear:   frame.clear,
		},
	})
	p.lookAround = frame.Kind.LookAround()
	return nil
}

// collapse turns the current branch into a single node ending at end.
func (p *parser) collapse(end int) *Node {
	switch len(p.concat) {
	case 0:
		return newNode(OpEmpty, span(p.start, end))
	case 1:
		return p.concat[0]
	}
	n := newNode(OpConcat, span(p.concat[0].Span.Start, p.concat[len(p.concat)-1].Span.End))
	n.Sub = p.concat
	return n
}

// alternation closes the current group body.
func (p *parser) alternation(end int) *Node {
	last := p.collapse(end)
	if len(p.branches) == 0 {
		return last
	}
	subs := append(p.branches, last)
	n := newNode(OpAlternate, span(subs[0].Span.Start, last.Span.End))
	n.Sub = subs
	return n
}

func (p *parser) finish(eof Token) (*Node, error) {
	if top, open := p.stack.Peek(); open {
		return nil, p.errorf(ErrUnclosedGroup, span(top.Start, top.Start+1))
	}
	root := p.alternation(eof.Span.Start)
	for _, ref := range p.refs {
		switch {
		case ref.RefName != "":
			if _, ok := p.names[ref.RefName]; !ok {
				return nil, p.errorDetail(ErrInvalidBackreference, ref.Span,
					fmt.Sprintf("no group named %q", ref.RefName))
			}
		case ref.Ref > p.captures:
			return nil, p.errorDetail(ErrInvalidBackreference, ref.Span,
				fmt.Sprintf("group %d does not exist", ref.Ref))
		}
	}
	if root.Op == OpEmpty && p.opts.DisallowEmpty {
		return nil, p.errorf(ErrEmptyPatternNotAllowed, span(0, len(p.pattern)))
	}
	return root, nil
}
