// Package render prints parse trees in the output formats of the rxparse
// command.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/k0kubun/pp/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"rxparse/internal/syntax"
)

type Format string

const (
	Tree    Format = "tree"    // indented outline with spans
	Pattern Format = "pattern" // canonical pattern text
	YAML    Format = "yaml"
	PP      Format = "pp" // Go value dump
	DOT     Format = "dot"
)

var formats = []Format{Tree, Pattern, YAML, PP, DOT}

func Formats() []Format { return formats }

func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown output format %q (want one of %v)", s, formats)
}

// Options tune formats that support them.
type Options struct {
	Color bool // pp only
}

func Render(w io.Writer, n *syntax.Node, f Format, opts Options) error {
	switch f {
	case Tree:
		_, err := io.WriteString(w, syntax.Dump(n))
		return err
	case Pattern:
		_, err := fmt.Fprintln(w, syntax.Format(n))
		return err
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Doc(n)); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return enc.Close()
	case PP:
		printer := pp.New()
		printer.SetColoringEnabled(opts.Color)
		_, err := printer.Fprintln(w, n)
		return err
	case DOT:
		return syntax.WriteDOT(w, n)
	}
	return errors.Errorf("unknown output format %q", f)
}

// Node is the serializable form of a syntax.Node.
type Node struct {
	Op     string  `yaml:"op"`
	Span   [2]int  `yaml:"span,flow"`
	Rune   string  `yaml:"rune,omitempty"`
	Fold   bool    `yaml:"fold,omitempty"`
	Class  string  `yaml:"class,omitempty"`
	Assert string  `yaml:"assert,omitempty"`
	Group  *Group  `yaml:"group,omitempty"`
	Ref    string  `yaml:"ref,omitempty"`
	Min    *int    `yaml:"min,omitempty"`
	Max    *int    `yaml:"max,omitempty"` // -1 is unbounded
	Greedy *bool   `yaml:"greedy,omitempty"`
	Sub    []*Node `yaml:"sub,omitempty"`
}

type Group struct {
	Kind    string `yaml:"kind"`
	Ordinal int    `yaml:"ordinal,omitempty"`
	Name    string `yaml:"name,omitempty"`
	Set     string `yaml:"set,omitempty"`
	Clear   string `yaml:"clear,omitempty"`
}

// Doc converts a tree for encoding.
func Doc(n *syntax.Node) *Node {
	d := &Node{Op: n.Op.String(), Span: [2]int{n.Span.Start, n.Span.End}}
	switch n.Op {
	case syntax.OpLiteral:
		d.Rune = string(n.Rune)
		d.Fold = n.Fold
	case syntax.OpCharClass:
		d.Class = n.Class.String()
		d.Fold = n.Class.Fold
	case syntax.OpAssert:
		d.Assert = n.Assert.String()
	case syntax.OpBackref:
		d.Ref = n.RefName
		if d.Ref == "" {
			d.Ref = strconv.Itoa(n.Ref)
		}
	case syntax.OpGroup:
		g := n.Group
		d.Group = &Group{
			Kind:    g.Kind.String(),
			Ordinal: g.Ordinal,
			Name:    g.Name,
			Set:     g.Set.String(),
			Clear:   g.Clear.String(),
		}
	case syntax.OpRepeat:
		min, max, greedy := n.Min, n.Max, n.Greedy
		d.Min, d.Max, d.Greedy = &min, &max, &greedy
	}
	for _, sub := range n.Sub {
		d.Sub = append(d.Sub, Doc(sub))
	}
	return d
}
