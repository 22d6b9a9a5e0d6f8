package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/launchdash/logging"
	"github.com/spektr-org/launchdash/server"
)

type serveOptions struct {
	addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Loads the dataset once and serves the dashboard page and its API.
Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, rootOpts *RootOptions, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dash, err := rootOpts.loadDashboard(ctx)
	if err != nil {
		return err
	}

	addr := rootOpts.cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	srv, err := server.New(dash,
		server.WithAddr(addr),
		server.WithShutdownTimeout(rootOpts.cfg.Server.ShutdownTimeout),
		server.WithLogger(logging.New("server")),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
