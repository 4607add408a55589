package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodgraph/internal/config"
	"github.com/matzehuels/prodgraph/internal/metrics"
	"github.com/matzehuels/prodgraph/internal/server"
	"github.com/matzehuels/prodgraph/pkg/cache"
	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/pipeline"
	"github.com/matzehuels/prodgraph/pkg/session"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		envFile   string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API used by the browser front-end.

Settings come from the config file, then from the environment (optionally
seeded from a .env file), then from flags:

  PRODGRAPH_ADDR          listen address
  PRODGRAPH_CACHE         cache backend
  REDIS_URL, MONGO_URI    cache connections
  PRODGRAPH_RATE_LIMIT    requests per second per client
  PRODGRAPH_CORS_ORIGINS  comma-separated allowed origins`,
		Example: `  prodgraph serve
  prodgraph serve --addr :9090 --cache redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd.Context(), addr, envFile, noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, envFile string, noMetrics bool) error {
	logger := loggerFromContext(ctx)

	// The environment must be complete before the config reads it.
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	cat, err := c.catalog()
	if err != nil {
		return err
	}
	ttl, err := cfg.SessionTTL()
	if err != nil {
		return err
	}

	var opts server.Options
	if !noMetrics {
		m := metrics.New()
		m.Register()
		opts.Metrics = m.Handler()
	}

	cc, err := c.newCache(ctx, false)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	// Servers sharing a Redis or Mongo backend may run different catalogs.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "catalog:"+cat.Fingerprint()+":")
	runner := pipeline.NewRunner(cc, keyer, logger)
	defer runner.Close()

	opts.Addr = cfg.Server.Addr
	opts.Catalog = cat
	opts.Runner = runner
	opts.Sessions = session.NewMemoryStore(cfg.Server.MaxSessions, ttl)
	opts.Logger = logger
	opts.Language = cfg.Language
	opts.Mode = chain.Mode(cfg.Mode)
	opts.Window = cfg.Window
	opts.Direction = layout.Direction(cfg.Direction)
	opts.RateLimit = cfg.Server.RateLimit
	opts.Burst = cfg.Server.Burst
	opts.TrustProxy = cfg.Server.TrustProxy
	opts.CORSOrigins = cfg.Server.CORSOrigins

	logger.Info("serving",
		"addr", opts.Addr,
		"cache", cfg.Cache.Backend,
		"catalog", cat.Version(),
		"rate_limit", opts.RateLimit,
		"pid", os.Getpid())

	return server.New(opts).ListenAndServe(ctx)
}
