package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scalelist/pkg/api"
	"github.com/matzehuels/scalelist/pkg/observability"
)

type serveOpts struct {
	addr      string
	noMetrics bool
	noStore   bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the scalelist HTTP API.

The listen address, CORS origins and request timeout come from the server
section of the config file. Node snapshots are kept in the configured store
and evaluation results in the configured cache. Prometheus metrics are
served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "disable the /v1/nodes routes")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg := c.settings()
	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	apiOpts := api.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         c.Logger,
	}
	if !opts.noMetrics {
		metrics := observability.NewMetrics()
		observability.SetEvaluateHooks(metrics)
		observability.SetCacheHooks(metrics)
		observability.SetHTTPHooks(metrics)
		defer observability.Reset()
		apiOpts.Metrics = metrics
	}

	var srv *api.Server
	if opts.noStore {
		srv = api.New(runner, nil, apiOpts)
	} else {
		st, err := c.openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		srv = api.New(runner, st, apiOpts)
	}

	c.Logger.Info("starting server", "addr", addr, "cache", cfg.Cache.Backend, "store", storeDriver(cfg.Store.Driver))
	return srv.ListenAndServe(ctx, addr)
}
