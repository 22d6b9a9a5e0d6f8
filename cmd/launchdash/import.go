package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/launchdash/dataset"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <csv> <sqlite>",
		Short: "Copy a CSV dataset into a SQLite dataset file",
		Long: `Parses the CSV with the configured column names and stores the launches
in a SQLite file, replacing any launches already there. The SQLite file
can then be passed to --data like the CSV.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imp, err := dataset.Import(cmd.Context(), args[0], args[1], rootOpts.cfg.Dataset.Columns)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d launches into %s (import %s)\n", imp.RowCount, args[1], imp.ID)
			return nil
		},
	}
	return cmd
}
