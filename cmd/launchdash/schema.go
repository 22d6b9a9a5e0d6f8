package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/launchdash/export"
	"github.com/spektr-org/launchdash/logging"
	"github.com/spektr-org/launchdash/schema"
)

type schemaOptions struct {
	format  string
	recover []string
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &schemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema [csv]",
		Short: "Auto-detect and print the dataset schema",
		Long: `Inspects a CSV dataset, classifies each column as a dimension, a
measure or skipped, and prints the result. Warns when the configured
launch columns are not classified the way the dashboard reads them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.cfg.Dataset.Path
			if len(args) == 1 {
				path = args[0]
			}
			return runSchema(cmd, rootOpts, opts, path)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "yaml", "output format (json|pretty|yaml)")
	cmd.Flags().StringSliceVar(&opts.recover, "recover", nil, "force-include auto-skipped columns")
	return cmd
}

func runSchema(cmd *cobra.Command, rootOpts *RootOptions, opts *schemaOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}

	discoverOpts := schema.DefaultDiscoverOptions()
	discoverOpts.RecoverColumns = opts.recover
	cfg, err := schema.DiscoverFromCSV(data, discoverOpts)
	if err != nil {
		return fmt.Errorf("discovering schema: %w", err)
	}

	log := logging.New("schema")
	log.Info("schema discovered", "path", path,
		"dimensions", len(cfg.Dimensions), "measures", len(cfg.Measures), "skipped", len(cfg.SkippedColumns))
	for _, problem := range rootOpts.cfg.Dataset.Columns.CheckSchema(cfg) {
		log.Warn("launch column mismatch", "problem", problem)
	}

	switch opts.format {
	case "yaml":
		out, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	case string(export.JSON), string(export.Pretty):
		return export.WriteJSON(cmd.OutOrStdout(), cfg, export.Format(opts.format))
	}
	return fmt.Errorf("invalid format %q: must be one of json, pretty, yaml", opts.format)
}
