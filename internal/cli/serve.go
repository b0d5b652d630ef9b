package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nocgen/internal/server"
	"github.com/matzehuels/nocgen/pkg/cache"
	"github.com/matzehuels/nocgen/pkg/observability"
)

// serveKeyPrefix separates server entries from CLI entries in a shared cache.
const serveKeyPrefix = "serve:"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	metrics  bool
	timeout  time.Duration
	parallel bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: server.DefaultAddr, metrics: true, timeout: 30 * time.Second}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve network generation over HTTP",
		Long: `Run the HTTP API. Configs are posted as JSON and answered with the
network-on-chip XML, a summary, a diagram or a simulator config.

Set --cache-url to a redis:// or mongodb:// URL to share results between
instances.

Examples:
  nocgen serve
  nocgen serve --addr 127.0.0.1:9000 --cache-url redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "expose Prometheus metrics on /metrics")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "discover edges concurrently")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, cache.NewScopedKeyer(nil, serveKeyPrefix))
	if err != nil {
		return err
	}
	defer runner.Close()
	runner.Parallel = opts.parallel

	srvOpts := server.Options{Addr: opts.addr, RequestTimeout: opts.timeout}
	if opts.metrics {
		srvOpts.Metrics = enableMetrics(prometheus.DefaultRegisterer, promhttp.Handler())
		defer observability.Reset()
	}

	srv := server.New(runner, c.Logger, srvOpts)
	printInfo("Listening on %s", StyleLink.Render("http://"+displayAddr(srv.Addr())))
	err = srv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// enableMetrics routes every hook to Prometheus collectors on reg and
// returns the handler serving them.
func enableMetrics(reg prometheus.Registerer, h http.Handler) http.Handler {
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return h
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
