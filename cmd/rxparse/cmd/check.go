package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rxparse/internal/manifest"
)

func newCheckCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "check MANIFEST...",
		Short: "Check patterns against the outcomes their manifest expects",
		Long: `check loads TOML or YAML manifests of patterns, parses every entry
concurrently and compares the outcome with the entry's "expect" field: empty
or "ok" for patterns that must parse, "error" for any failure, or an error
kind name or marker text the failure must match.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var total manifest.Summary
			for _, path := range args {
				m, err := manifest.Load(path)
				if err != nil {
					return err
				}
				a.log.Info("checking manifest", zap.String("path", path), zap.Int("patterns", len(m.Patterns)))
				results, err := manifest.Run(cmd.Context(), m, a.cfg.SyntaxOptions(), a.cache.Parse, a.cfg.Workers)
				if err != nil {
					return errors.Wrapf(err, "checking %s", path)
				}
				for _, r := range results {
					switch {
					case !r.Pass:
						fmt.Fprintf(out, "FAIL %s: %s\n", r.Entry.Name, describe(r))
					case verbose:
						fmt.Fprintf(out, "ok   %s\n", r.Entry.Name)
					}
				}
				s := manifest.Summarize(results)
				total.Total += s.Total
				total.Passed += s.Passed
				total.Failed += s.Failed
			}
			st := a.cache.Stats()
			fmt.Fprintf(out, "%s of %s patterns passed (%s parsed, %s cache hits)\n",
				humanize.Comma(int64(total.Passed)), humanize.Comma(int64(total.Total)),
				humanize.Comma(st.Parses), humanize.Comma(int64(st.Hits)))
			if total.Failed > 0 {
				return errors.Errorf("%d patterns did not match expectations", total.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List passing entries too.")
	return cmd
}

func describe(r manifest.Result) string {
	want := r.Entry.Expect
	if want == "" {
		want = "ok"
	}
	if r.Err == nil {
		return fmt.Sprintf("expected %q, parsed fine", want)
	}
	return fmt.Sprintf("expected %q, got %v", want, r.Err)
}
