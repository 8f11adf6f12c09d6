// Package manifest loads lists of patterns with expected parse outcomes and
// checks them concurrently.
package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"rxparse/internal/syntax"
)

// Format is the encoding of a manifest file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// DetectFormat picks the format from the file extension. Unknown extensions
// are read as TOML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Manifest is a named collection of patterns.
//
// TOML:
//
//	flags = "i"
//	[[pattern]]
//	name = "word"
//	pattern = '\w+'
//
// YAML uses the key "patterns" for the list.
type Manifest struct {
	Flags    string  `toml:"flags" yaml:"flags"` // applied to every entry
	Patterns []Entry `toml:"pattern" yaml:"patterns"`
}

type Entry struct {
	Name    string `toml:"name" yaml:"name"`
	Pattern string `toml:"pattern" yaml:"pattern"`
	Flags   string `toml:"flags" yaml:"flags"`

	// Expect is "" or "ok" for patterns that must parse, "error" for any
	// failure, or an error kind name ("UnclosedGroup") or marker substring
	// ("unclosed group") the failure must match.
	Expect string `toml:"expect" yaml:"expect"`
}

func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	m, err := Decode(data, DetectFormat(path))
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	return m, nil
}

func Decode(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "YAML parse error")
		}
	default:
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "TOML parse error")
		}
	}
	for i := range m.Patterns {
		if m.Patterns[i].Name == "" {
			m.Patterns[i].Name = m.Patterns[i].Pattern
		}
	}
	return &m, nil
}

// ParseFunc parses one pattern. Both syntax.Options.Parse (via Direct) and
// patcache.Cache.Parse fit.
type ParseFunc func(pattern string, opts syntax.Options) (*syntax.Node, error)

func Direct(pattern string, opts syntax.Options) (*syntax.Node, error) {
	return opts.Parse(pattern)
}

type Result struct {
	Entry Entry
	Node  *syntax.Node // nil when parsing failed
	Err   error        // parse or flag error
	Pass  bool
}

// Run checks every entry with at most workers parses in flight. Results are
// in manifest order. The only error returned is ctx's.
func Run(ctx context.Context, m *Manifest, base syntax.Options, parse ParseFunc, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(m.Patterns))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range m.Patterns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = check(e, m.Flags, base, parse)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func check(e Entry, shared string, base syntax.Options, parse ParseFunc) Result {
	res := Result{Entry: e}
	opts := base
	for _, fs := range []string{shared, e.Flags} {
		on, off, err := syntax.ParseFlagSpec(fs)
		if err != nil {
			res.Err = errors.Wrapf(err, "flags %q", fs)
			return res
		}
		opts.Flags = opts.Flags.Apply(on, off)
	}
	res.Node, res.Err = parse(e.Pattern, opts)
	res.Pass = Matches(e.Expect, res.Err)
	return res
}

// Matches reports whether a parse outcome satisfies expect.
func Matches(expect string, err error) bool {
	switch expect {
	case "", "ok":
		return err == nil
	case "error":
		return err != nil
	}
	if err == nil {
		return false
	}
	var perr *syntax.Error
	if errors.As(err, &perr) && perr.Kind.Name() == expect {
		return true
	}
	return strings.Contains(err.Error(), expect)
}

type Summary struct {
	Total, Passed, Failed int
}

func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Pass {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}
