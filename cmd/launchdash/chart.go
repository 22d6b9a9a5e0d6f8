package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/launchdash/dashboard"
	"github.com/spektr-org/launchdash/export"
)

type chartOptions struct {
	site   string
	low    float64
	high   float64
	format string
	out    string
}

var chartNames = map[string]string{
	"pie":     dashboard.PieChart,
	"scatter": dashboard.ScatterChart,
}

// NewChartCommand creates the chart command.
func NewChartCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &chartOptions{}

	cmd := &cobra.Command{
		Use:   "chart <pie|scatter>",
		Short: "Evaluate one dashboard chart and write it out",
		Long: `Evaluates the pie or scatter chart for the given control values and
writes it as JSON, pretty JSON, CSV or SVG. The payload range defaults
to the whole slider.`,
		Example: `  launchdash chart pie --site "CCAFS LC-40" --format csv
  launchdash chart scatter --low 2000 --high 8000 --format svg --out scatter.svg`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"pie", "scatter"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.site, "site", dashboard.AllSites, "launch site, or ALL")
	cmd.Flags().Float64Var(&opts.low, "low", 0, "lower payload bound in kg (default slider min)")
	cmd.Flags().Float64Var(&opts.high, "high", 0, "upper payload bound in kg (default slider max)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(export.JSON), "output format (json|pretty|csv|svg)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func runChart(cmd *cobra.Command, rootOpts *RootOptions, opts *chartOptions, name string) error {
	output, ok := chartNames[name]
	if !ok {
		return fmt.Errorf("unknown chart %q: must be pie or scatter", name)
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	dash, err := rootOpts.loadDashboard(cmd.Context())
	if err != nil {
		return err
	}

	state := dash.DefaultState()
	state.Site = opts.site
	if cmd.Flags().Changed("low") {
		state.Payload.Low = opts.low
	}
	if cmd.Flags().Changed("high") {
		state.Payload.High = opts.high
	}

	result, err := dash.Result(output, state)
	if err != nil {
		return err
	}

	if opts.out == "" {
		return export.Write(cmd.OutOrStdout(), result, format)
	}
	return writeFile(opts.out, func(w io.Writer) error {
		return export.Write(w, result, format)
	})
}

// writeFile creates path, fills it with write and closes it. The first
// error wins, close included.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()
	return write(f)
}
