// Package cli implements the specdiff command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/specdiff/pkg/batch"
	"github.com/matzehuels/specdiff/pkg/buildinfo"
	"github.com/matzehuels/specdiff/pkg/cache"
	"github.com/matzehuels/specdiff/pkg/config"
	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/facts"
	"github.com/matzehuels/specdiff/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "specdiff"

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

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "specdiff",
		Short:        "specdiff compares package-configuration manifests",
		Long:         `specdiff scores how similar the resolved package manifests of a corpus are, pair by pair, and diffs the facts derived from them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/specdiff/config.toml)")

	observability.SetBatchHooks(observability.NewLogHooks(c.Logger))
	observability.SetCacheHooks(observability.NewLogHooks(c.Logger))

	// Register all subcommands
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.summaryCommand())
	root.AddCommand(c.factsCommand())
	root.AddCommand(c.domainsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newDeriver builds the configured fact deriver, wrapped in the fact cache.
// The returned cache must be closed by the caller.
func (c *CLI) newDeriver(ctx context.Context, noCache bool) (facts.Deriver, cache.Cache, error) {
	var inner facts.Deriver = facts.ManifestDeriver{}
	if cmdline := c.Config.Facts.Command; cmdline != "" {
		d, err := facts.NewCommandDeriver(cmdline)
		if err != nil {
			return nil, nil, err
		}
		inner = d
	}

	fc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}

	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, c.Config.Cache.Prefix)
	}
	d := facts.NewCachedDeriver(inner, fc, keyer)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		d.TTL = ttl
	}
	return d, fc, nil
}

// newRunner creates a batch runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, opts batch.Options, noCache bool) (*batch.Runner, cache.Cache, error) {
	d, fc, err := c.newDeriver(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	opts.Deriver = d
	opts.Logger = c.Logger
	r, err := batch.NewRunner(opts)
	if err != nil {
		_ = fc.Close()
		return nil, nil, err
	}
	return r, fc, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cc := c.Config.Cache
	if noCache || cc.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	if cc.Backend == config.BackendRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "redis cache")
		}
		return rc, nil
	}
	if cc.Backend == config.BackendMongo {
		mc, err := c.newMongoCache(ctx)
		if err != nil {
			return nil, err
		}
		return mc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) newMongoCache(ctx context.Context) (*cache.MongoCache, error) {
	cc := c.Config.Cache
	mc, err := cache.NewMongoCache(ctx, cache.MongoOptions{
		URI:        cc.MongoURI,
		Database:   cc.MongoDatabase,
		Collection: cc.MongoCollection,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCache, err, "mongo cache")
	}
	return mc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/specdiff/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
