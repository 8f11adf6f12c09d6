package syntax

import "fmt"

// ClassItemKind tags one member of a character class.
type ClassItemKind uint8

const (
	ClassLiteral ClassItemKind = iota + 1 // Lo == Hi
	ClassRange                            // Lo-Hi
	ClassPerl                             // \d \s \w, Name is "d", "s" or "w"
	ClassUnicode                          // \p{Name}
	ClassPOSIX                            // [:name:]
)

func (k ClassItemKind) String() string {
	switch k {
	case ClassLiteral:
		return "Literal"
	case ClassRange:
		return "Range"
	case ClassPerl:
		return "Perl"
	case ClassUnicode:
		return "Unicode"
	case ClassPOSIX:
		return "POSIX"
	}
	return fmt.Sprintf("ClassItemKind(%d)", k)
}

type ClassItem struct {
	Kind    ClassItemKind
	Lo, Hi  rune
	Name    string
	Negated bool
	Span    Span
}

// Class is the set description carried by an OpCharClass node. Set algebra is
// left to the compiler.
type Class struct {
	Negated bool
	Fold    bool
	Items   []ClassItem
}

// String renders the class in pattern syntax, without its fold mode.
func (c *Class) String() string { return formatClass(c) }

func (c *Class) equal(o *Class) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Negated != o.Negated || c.Fold != o.Fold || len(c.Items) != len(o.Items) {
		return false
	}
	for i := range c.Items {
		if c.Items[i] != o.Items[i] {
			return false
		}
	}
	return true
}

var posixClasses = map[string]bool{
	"alnum": true, "alpha": true, "ascii": true, "blank": true,
	"cntrl": true, "digit": true, "graph": true, "lower": true,
	"print": true, "punct": true, "space": true, "upper": true,
	"word": true, "xdigit": true,
}

// parseClass consumes the items of a bracket expression. The opening token has
// already been read.
func (p *parser) parseClass(open Token) (*Node, error) {
	cls := &Class{Negated: open.Negated, Fold: p.flags&FoldCase != 0}
	p.classOpen = open.Span
	first := true
	for {
		tok := p.scan.NextInClass(first)
		first = false
		switch tok.Kind {
		case TokCloseClass:
			return &Node{Op: OpCharClass, Class: cls, Span: span(open.Span.Start, tok.Span.End)}, nil
		case TokEOF:
			return nil, p.errorf(ErrUnclosedCharClass, open.Span)
		case TokInvalid:
			return nil, p.invalid(tok)
		case TokPosixClass:
			if !posixClasses[tok.Item.Name] {
				return nil, p.errorDetail(ErrInvalidCharClass, tok.Span, fmt.Sprintf("unknown POSIX class %q", tok.Item.Name))
			}
			cls.Items = append(cls.Items, tok.Item)
		case TokClassEscape:
			if tok.Item.Kind == ClassUnicode {
				if err := p.checkProperty(tok); err != nil {
					return nil, err
				}
			}
			if p.scan.PeekClassDash() {
				dash := p.scan.NextInClass(false)
				switch next := p.scan.NextInClass(false); next.Kind {
				case TokCloseClass:
				case TokEOF:
					return nil, p.errorf(ErrUnclosedCharClass, open.Span)
				default:
					return nil, p.errorDetail(ErrInvalidCharClass, span(tok.Span.Start, next.Span.End), "range boundary must be a literal")
				}
				p.scan.Backup(dash)
			}
			cls.Items = append(cls.Items, tok.Item)
		case TokLiteral, TokClassDash:
			// a dash in item position is a literal and may start a range: [--/]
			if tok.Kind == TokClassDash {
				tok.Rune = '-'
			}
			if p.scan.PeekClassDash() {
				item, err := p.parseClassRange(tok)
				if err != nil {
					return nil, err
				}
				cls.Items = append(cls.Items, item)
				continue
			}
			cls.Items = append(cls.Items, ClassItem{Kind: ClassLiteral, Lo: tok.Rune, Hi: tok.Rune, Span: tok.Span})
		default:
			return nil, p.errorf(ErrInvalidCharClass, tok.Span)
		}
	}
}

// parseClassRange reads "-hi" after lo. A dash followed by the closing
// bracket is a literal and is left for the caller.
func (p *parser) parseClassRange(lo Token) (ClassItem, error) {
	dash := p.scan.NextInClass(false)
	hi := p.scan.NextInClass(false)
	switch hi.Kind {
	case TokCloseClass:
		p.scan.Backup(dash)
		return ClassItem{Kind: ClassLiteral, Lo: lo.Rune, Hi: lo.Rune, Span: lo.Span}, nil
	case TokLiteral:
	case TokClassDash:
		hi.Rune = '-'
	case TokEOF:
		return ClassItem{}, p.errorf(ErrUnclosedCharClass, p.classOpen)
	case TokInvalid:
		return ClassItem{}, p.invalid(hi)
	default:
		return ClassItem{}, p.errorDetail(ErrInvalidCharClass, span(lo.Span.Start, hi.Span.End), "range boundary must be a literal")
	}
	sp := span(lo.Span.Start, hi.Span.End)
	if lo.Rune > hi.Rune {
		return ClassItem{}, p.errorDetail(ErrInvalidCharClassRange, sp, "the start must be <= the end")
	}
	return ClassItem{Kind: ClassRange, Lo: lo.Rune, Hi: hi.Rune, Span: sp}, nil
}
