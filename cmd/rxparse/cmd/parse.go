package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"rxparse/internal/render"
)

func newParseCmd(a *app) *cobra.Command {
	var output string
	var color bool
	cmd := &cobra.Command{
		Use:   "parse PATTERN...",
		Short: "Print the syntax tree of each pattern",
		Example: `  rxparse parse 'a(b|c)*d'
  rxparse parse -o dot '(?i)[a-z]+' | dot -Tpng -o ast.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(output)
			if err != nil {
				return err
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			failed := 0
			for _, p := range args {
				node, err := a.parse(p)
				if err != nil {
					fmt.Fprintln(errOut, err)
					failed++
					continue
				}
				if err := render.Render(out, node, format, render.Options{Color: color}); err != nil {
					return errors.Wrapf(err, "rendering %q", p)
				}
			}
			if failed > 0 {
				return errors.Errorf("%d of %d patterns failed to parse", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(render.Tree),
		fmt.Sprintf("Output format, one of %v.", render.Formats()))
	cmd.Flags().BoolVar(&color, "color", false, "Colorize pp output.")
	return cmd
}
