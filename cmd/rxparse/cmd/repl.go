package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rxparse/internal/render"
	"rxparse/internal/syntax"
)

const replHelp = `Enter a pattern to see its tree. Commands:
  :format NAME   switch output format (tree, pattern, yaml, pp, dot)
  :flags LETTERS set the initial flags, e.g. ":flags im"; ":flags" clears
  :help          show this text
An empty line exits.`

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse patterns interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := &session{app: a, format: render.Tree, opts: a.cfg.SyntaxOptions()}
			return s.run(cmd)
		},
	}
}

type session struct {
	*app
	format render.Format
	opts   syntax.Options
}

func (s *session) run(cmd *cobra.Command) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	for {
		fmt.Fprint(out, "pattern> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		line := in.Text()
		if line == "" {
			return nil
		}
		if strings.HasPrefix(line, ":") {
			s.command(out, line)
			continue
		}
		node, err := s.cache.Parse(line, s.opts)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if err := render.Render(out, node, s.format, render.Options{}); err != nil {
			return err
		}
	}
}

func (s *session) command(out io.Writer, line string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "format":
		f, err := render.ParseFormat(arg)
		if err != nil {
			fmt.Fprintln(out, err)
			return
		}
		s.format = f
	case "flags":
		f, err := syntax.ParseFlags(arg)
		if err != nil {
			fmt.Fprintf(out, "invalid flags %q: %v\n", arg, err)
			return
		}
		s.opts.Flags = f
	case "help":
		fmt.Fprintln(out, replHelp)
	default:
		fmt.Fprintf(out, "unknown command %q, try :help\n", name)
	}
}
