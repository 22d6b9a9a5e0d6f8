// Package config loads launchdash settings from defaults, an optional YAML
// file and LAUNCHDASH_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/spektr-org/launchdash/dataset"
)

// EnvPrefix is prepended to every environment override, e.g. LAUNCHDASH_SERVER_ADDR.
const EnvPrefix = "LAUNCHDASH"

// ErrInvalidConfig wraps every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid config")

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatasetConfig struct {
	Path    string          `mapstructure:"path"`
	Columns dataset.Columns `mapstructure:"columns"`
}

// PayloadConfig bounds the payload range slider, in kg.
type PayloadConfig struct {
	Min  float64 `mapstructure:"min"`
	Max  float64 `mapstructure:"max"`
	Step float64 `mapstructure:"step"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Payload PayloadConfig `mapstructure:"payload"`
	Log     LogConfig     `mapstructure:"log"`

	// File is the config file that was read, empty when none was.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	cols := dataset.DefaultColumns()

	v.SetDefault("server.addr", "127.0.0.1:8052")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("dataset.path", "spacex_launch_dash.csv")
	v.SetDefault("dataset.columns.site", cols.Site)
	v.SetDefault("dataset.columns.payload", cols.Payload)
	v.SetDefault("dataset.columns.class", cols.Class)
	v.SetDefault("dataset.columns.booster", cols.Booster)
	v.SetDefault("payload.min", 0)
	v.SetDefault("payload.max", 10000)
	v.SetDefault("payload.step", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load builds a Config. When path is empty, launchdash.yaml is looked up in
// the working directory and silently skipped if absent; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("launchdash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}
	if c.Dataset.Path == "" {
		problems = append(problems, "dataset.path is empty")
	}
	cols := c.Dataset.Columns
	if cols.Site == "" || cols.Payload == "" || cols.Class == "" || cols.Booster == "" {
		problems = append(problems, "dataset.columns must name site, payload, class and booster")
	}
	if c.Payload.Min >= c.Payload.Max {
		problems = append(problems, fmt.Sprintf("payload.min (%v) must be below payload.max (%v)", c.Payload.Min, c.Payload.Max))
	}
	if c.Payload.Step <= 0 {
		problems = append(problems, "payload.step must be positive")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
