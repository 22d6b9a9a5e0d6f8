package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/launchdash/config"
	"github.com/spektr-org/launchdash/dashboard"
	"github.com/spektr-org/launchdash/dataset"
	"github.com/spektr-org/launchdash/logging"
)

// RootOptions holds global flags and the config they resolve to.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	DataPath   string

	cfg *config.Config
}

// NewRootCommand creates the launchdash command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "launchdash",
		Short: "SpaceX launch outcome dashboard",
		Long: `launchdash loads a table of SpaceX launches and shows launch outcomes
by site and payload mass: a pie chart of successes and failures and a
scatter plot of payload mass against outcome, colored by booster version.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./launchdash.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")
	cmd.PersistentFlags().StringVarP(&opts.DataPath, "data", "d", "", "dataset file, CSV or SQLite (overrides dataset.path)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewChartCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// resolve loads config, applies flag overrides and installs the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}
	if o.DataPath != "" {
		cfg.Dataset.Path = o.DataPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	o.cfg = cfg
	return nil
}

// loadDashboard reads the configured dataset and wires the dashboard.
func (o *RootOptions) loadDashboard(ctx context.Context) (*dashboard.Dashboard, error) {
	ds, err := dataset.Load(ctx, o.cfg.Dataset.Path, o.cfg.Dataset.Columns)
	if err != nil {
		return nil, err
	}
	slider, err := dashboard.NewSlider(o.cfg.Payload.Min, o.cfg.Payload.Max, o.cfg.Payload.Step)
	if err != nil {
		return nil, fmt.Errorf("payload slider: %w", err)
	}
	return dashboard.New(ds, slider, dashboard.WithLogger(logging.New("dashboard"))), nil
}
