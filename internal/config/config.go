// Package config resolves rxparse settings from defaults, an optional config
// file, RXPARSE_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rxparse/internal/syntax"
)

// EnvPrefix is prepended to upper-cased keys when reading the environment.
const EnvPrefix = "RXPARSE"

const (
	KeyConfig        = "config"
	KeyNestLimit     = "nest_limit"
	KeyFlags         = "flags"
	KeyDisallowEmpty = "disallow_empty"
	KeyCacheSize     = "cache_size"
	KeyWorkers       = "workers"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
)

type Config struct {
	NestLimit     int    `mapstructure:"nest_limit"`
	Flags         string `mapstructure:"flags"`
	DisallowEmpty bool   `mapstructure:"disallow_empty"`
	CacheSize     int64  `mapstructure:"cache_size"`
	Workers       int    `mapstructure:"workers"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
}

// New returns a viper instance with defaults and environment lookup set up.
// Flags are bound separately with BindFlags.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyNestLimit, syntax.DefaultNestLimit)
	v.SetDefault(KeyFlags, "")
	v.SetDefault(KeyDisallowEmpty, false)
	v.SetDefault(KeyCacheSize, 10000)
	v.SetDefault(KeyWorkers, 4)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags makes every flag in fs visible to v under its own name.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	return errors.Wrap(v.BindPFlags(fs), "binding flags")
}

// Load reads the config file named by the "config" key, if any, and decodes
// the result. The file type follows the extension (.yaml, .yml, .toml, .json).
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", file)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.NestLimit < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyNestLimit, c.NestLimit)
	}
	if c.Workers < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyWorkers, c.Workers)
	}
	if c.CacheSize < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyCacheSize, c.CacheSize)
	}
	if _, err := syntax.ParseFlags(c.Flags); err != nil {
		return errors.Wrapf(err, "invalid %s %q", KeyFlags, c.Flags)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.Errorf("%s must be console or json, got %q", KeyLogFormat, c.LogFormat)
	}
	return nil
}

// SyntaxOptions converts the parser settings. The config must have passed
// Validate.
func (c *Config) SyntaxOptions() syntax.Options {
	flags, _ := syntax.ParseFlags(c.Flags)
	return syntax.Options{
		Flags:         flags,
		NestLimit:     c.NestLimit,
		DisallowEmpty: c.DisallowEmpty,
	}
}
