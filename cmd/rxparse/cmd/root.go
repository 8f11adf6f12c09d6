// Package cmd holds the rxparse command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"rxparse/internal/config"
	"rxparse/internal/logging"
	"rxparse/internal/patcache"
	"rxparse/internal/syntax"
)

// Execute runs the command line and reports any failure on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// app is the state shared by subcommands, built once flags are parsed.
type app struct {
	conf  *viper.Viper
	cfg   *config.Config
	log   *zap.Logger
	cache *patcache.Cache
}

func NewRootCmd() *cobra.Command {
	a := &app{conf: config.New()}
	root := &cobra.Command{
		Use:   "rxparse",
		Short: "Parse and validate regular expressions",
		Long: `rxparse parses regular expressions into syntax trees and reports
malformed patterns with the offending span marked.

Settings come from, in increasing precedence: built-in defaults, the file
given by --config (YAML, TOML or JSON), RXPARSE_* environment variables and
command-line flags.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	pf := root.PersistentFlags()
	pf.String(config.KeyConfig, "", "Configuration file. Overridden by environment variables and flags.")
	pf.Int(config.KeyNestLimit, syntax.DefaultNestLimit, "Maximum depth of nested groups.")
	pf.String(config.KeyFlags, "", `Flags in effect at the start of every pattern, e.g. "i" or "ms".`)
	pf.Bool(config.KeyDisallowEmpty, false, "Reject the empty pattern.")
	pf.Int64(config.KeyCacheSize, 10000, "Number of parse results kept in memory.")
	pf.Int(config.KeyWorkers, 4, "Number of patterns checked concurrently.")
	pf.String(config.KeyLogLevel, "info", "Log level: debug, info, warn or error.")
	pf.String(config.KeyLogFormat, "console", "Log encoding: console or json.")
	cobra.CheckErr(config.BindFlags(a.conf, pf))

	root.AddCommand(
		newParseCmd(a),
		newCheckCmd(a),
		newReplCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.conf)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	cache, err := patcache.New(patcache.Config{MaxEntries: cfg.CacheSize, Logger: log})
	if err != nil {
		return err
	}
	a.cfg, a.log, a.cache = cfg, log, cache
	log.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.Int("nest_limit", cfg.NestLimit),
		zap.String("flags", cfg.Flags),
		zap.Int("workers", cfg.Workers))
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

func (a *app) parse(pattern string) (*syntax.Node, error) {
	return a.cache.Parse(pattern, a.cfg.SyntaxOptions())
}
