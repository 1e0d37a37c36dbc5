package config

import (
	"os"
	"strings"

	"codeberg.org/ccs/datalogd/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "DATALOGD"
	envConfig = "DATALOGD_CONFIG"

	// DefaultTickSeconds is the wall-clock quantum of one scheduler tick.
	DefaultTickSeconds = 60

	defaultDataDir     = "/var/lib/datalogd/data"
	defaultLogLevel    = "info"
	defaultPowerPeriod = 1800
)

// Source configures one sensor source's schedule.
type Source struct {
	Name          string         `mapstructure:"name"`
	Driver        string         `mapstructure:"driver"`
	Period        int            `mapstructure:"period"`
	RolloverCount int            `mapstructure:"rollover_count"`
	Settings      map[string]any `mapstructure:"settings"`
}

// Config is the full daemon configuration.
type Config struct {
	DataDir            string   `mapstructure:"data_dir"`
	LogDir             string   `mapstructure:"log_dir"`
	StateDB            string   `mapstructure:"state_db"`
	TickSeconds        int      `mapstructure:"tick_seconds"`
	CollectOnStart     bool     `mapstructure:"collect_on_start"`
	LogLevel           string   `mapstructure:"log_level"`
	PowerManager       string   `mapstructure:"power_manager"`
	PowerPeriodSeconds int      `mapstructure:"power_period_seconds"`
	Sources            []Source `mapstructure:"source"`
}

// Load reads configuration from the TOML file named by --config (or
// the DATALOGD_CONFIG environment variable), applies DATALOGD_*
// environment overrides and command-line flags, and validates the
// result. Validation failures here are fatal startup errors.
func Load() (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("datalogd", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	configPath := fs.StringP("config", "c", "", "Path to config file")
	fs.String("data-dir", "", "Directory receiving output CSV files")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.Int("tick-seconds", 0, "Seconds per scheduler tick")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("log_dir", "")
	v.SetDefault("state_db", "")
	v.SetDefault("tick_seconds", DefaultTickSeconds)
	v.SetDefault("collect_on_start", true)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("power_manager", "")
	v.SetDefault("power_period_seconds", defaultPowerPeriod)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := *configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		return nil, errFactory.WithMessage(ErrMissingConfigFile,
			"no config file given (--config or "+envConfig+")")
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errFactory.Wrap(ErrReadConfigFile, err)
	}

	// Command-line flags override the file.
	if err := v.BindPFlag("data_dir", fs.Lookup("data-dir")); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	if err := v.BindPFlag("log_level", fs.Lookup("log-level")); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	if err := v.BindPFlag("tick_seconds", fs.Lookup("tick-seconds")); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	// A source without a driver runs the driver of the same name.
	for i := range cfg.Sources {
		if cfg.Sources[i].Driver == "" {
			cfg.Sources[i].Driver = cfg.Sources[i].Name
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the fields the scheduler consumes. A source lacking
// a positive period is a fatal configuration error.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errFactory.Wrap(errors.ErrInvalidLogLevel, err)
	}
	if c.DataDir == "" {
		return errFactory.New(ErrMissingDataDir)
	}
	if c.TickSeconds < 1 {
		return errFactory.WithData(ErrInvalidTick, c.TickSeconds)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		src := &c.Sources[i]
		if src.Name == "" {
			return errFactory.New(ErrMissingSourceName)
		}
		if src.Period < 1 {
			return errFactory.WithData(ErrMissingPeriod, src.Name)
		}
		if src.RolloverCount < 0 {
			return errFactory.WithData(ErrInvalidRollover, src.Name)
		}
		if seen[src.Name] {
			return errFactory.WithData(ErrDuplicateSource, src.Name)
		}
		seen[src.Name] = true
	}

	return nil
}
