package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rsolver/internal/server"
	"github.com/matzehuels/rsolver/pkg/cache"
	"github.com/matzehuels/rsolver/pkg/metrics"
	"github.com/matzehuels/rsolver/pkg/observability"
	"github.com/matzehuels/rsolver/pkg/pipeline"
)

// envRedisAddr names the environment variable read when --redis is unset.
const envRedisAddr = "RSOLVER_REDIS_ADDR"

// apiKeyScope separates API cache entries from CLI entries in a shared backend.
const apiKeyScope = "api:"

type serveFlags struct {
	addr    string
	redis   string
	timeout time.Duration
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve POST /v1/solve and POST /v1/render, plus /healthz and Prometheus
metrics on /metrics.

Results are cached in Redis when --redis (or ` + envRedisAddr + `) is set and
reachable, otherwise in the local cache directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.redis == "" {
				flags.redis = os.Getenv(envRedisAddr)
			}
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.redis, "redis", "", "Redis address for the shared result cache")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", server.DefaultTimeout, "per-request solve deadline")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	reg := metrics.NewRegistry()
	observability.SetSolveHooks(reg)
	observability.SetCacheHooks(reg)
	observability.SetHTTPHooks(reg)

	store, err := c.serveCache(ctx, flags)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, apiKeyScope), c.Logger)
	defer runner.Close()

	srv := server.New(runner, server.Config{
		Addr:    flags.addr,
		Timeout: flags.timeout,
		Metrics: reg.Handler(),
		Logger:  c.Logger,
	})
	c.Logger.Info("Listening", "addr", flags.addr)
	return srv.Run(ctx)
}

// serveCache prefers Redis and falls back to the local cache when the
// server does not answer a ping.
func (c *CLI) serveCache(ctx context.Context, flags serveFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redis != "" {
		rc := cache.NewRedisCache(flags.redis)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := rc.Ping(pingCtx)
		if err == nil {
			c.Logger.Info("Using Redis cache", "addr", flags.redis)
			return rc, nil
		}
		c.Logger.Warn("Redis unavailable, using local cache", "addr", flags.redis, "err", err)
		rc.Close()
	}
	return newCache(false)
}
