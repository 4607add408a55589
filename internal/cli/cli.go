package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/prodgraph/internal/config"
	"github.com/matzehuels/prodgraph/pkg/buildinfo"
	"github.com/matzehuels/prodgraph/pkg/cache"
	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output (tables, trees, JSON). Defaults to stdout.
	Out io.Writer

	configPath  string
	cacheFlag   string
	catalogFlag string
	logFormat   string

	cfg *config.Config
	cat *catalog.Catalog
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "prodgraph plans production chains for factory games",
		Long: `prodgraph expands a target item into its full production chain, computes
machine counts, flow rates and belt or pipe tiers, and renders the result as a
diagram.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseLogFormat(c.logFormat)
			if err != nil {
				return err
			}
			c.Logger.SetFormatter(f)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/prodgraph/config.toml)")
	root.PersistentFlags().StringVar(&c.cacheFlag, "cache", "", "cache backend: "+strings.Join(cache.Backends, ", "))
	root.PersistentFlags().StringVar(&c.catalogFlag, "catalog", "", "catalog file (.json or .toml; default: embedded)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", logFormatText, "log format: text, json, logfmt")

	// Register all subcommands
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.itemsCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the config file once, then applies the environment and the
// persistent flags.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if c.cacheFlag != "" {
		cfg.Cache.Backend = c.cacheFlag
	}
	if c.catalogFlag != "" {
		cfg.Catalog = c.catalogFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "cache", cfg.Cache.Backend, "language", cfg.Language)
	c.cfg = cfg
	return cfg, nil
}

// catalog returns the configured catalog.
func (c *CLI) catalog() (*catalog.Catalog, error) {
	if c.cat != nil {
		return c.cat, nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.LoadOrDefault(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	c.Logger.Debug("loaded catalog", "version", cat.Version(), "items", cat.Len())
	c.cat = cat
	return cat, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	cc, err := cfg.CacheConfig()
	if err != nil {
		c.Logger.Warn("caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cc)
}

// =============================================================================
// Options Helpers
// =============================================================================

// chainFlags are the flags shared by resolve, layout and render.
type chainFlags struct {
	amount    float64
	rate      bool
	window    float64
	language  string
	direction string
	ordering  string
	miners    []string
	noCache   bool
	refresh   bool
}

func (f *chainFlags) register(cmd *cobra.Command, withLayout bool) {
	cmd.Flags().Float64VarP(&f.amount, "amount", "n", 1, "target quantity (batch) or items per minute (--rate)")
	cmd.Flags().BoolVar(&f.rate, "rate", false, "interpret --amount as a rate per minute")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-resolve even if the chain is cached")
	if !withLayout {
		return
	}
	cmd.Flags().Float64Var(&f.window, "window", 0, "batch production window in minutes (default from config)")
	cmd.Flags().StringVarP(&f.language, "lang", "l", "", "label language: en, de (default from config)")
	cmd.Flags().StringVar(&f.direction, "direction", "", "flow direction: LR, TB (default from config)")
	cmd.Flags().StringVar(&f.ordering, "ordering", pipeline.DefaultOrdering, "tier ordering: barycentric, identity")
	cmd.Flags().StringArrayVar(&f.miners, "miner", nil, "miner override key=Mk.2:pure (key is an item id or a settings key; repeatable)")
}

// options builds pipeline options from config defaults and the flags.
func (c *CLI) options(item string, f *chainFlags) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	cat, err := c.catalog()
	if err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Item:      item,
		Amount:    f.amount,
		Mode:      chain.Mode(cfg.Mode),
		Refresh:   f.refresh,
		Language:  cfg.Language,
		Direction: layout.Direction(cfg.Direction),
		Window:    cfg.Window,
		Ordering:  f.ordering,
		Catalog:   cat,
		Logger:    c.Logger,
	}
	if f.rate {
		opts.Mode = chain.ModeRate
	}
	if f.window > 0 {
		opts.Window = f.window
	}
	if f.language != "" {
		opts.Language = f.language
	}
	if f.direction != "" {
		opts.Direction = layout.Direction(strings.ToUpper(f.direction))
	}

	miners, err := cfg.MinerOverrides()
	if err != nil {
		return pipeline.Options{}, err
	}
	flagMiners, err := parseMinerFlags(f.miners)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts.Miners = mergeMiners(miners, flagMiners)
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}
