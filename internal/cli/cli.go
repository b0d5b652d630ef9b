// Package cli implements the nocgen command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nocgen/pkg/buildinfo"
	"github.com/matzehuels/nocgen/pkg/cache"
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/pipeline"
	"github.com/matzehuels/nocgen/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "nocgen"

	// defaultConfigFile is read when -c is not given.
	defaultConfigFile = "nocgen.toml"

	// cacheURLEnv selects the cache backend when --cache-url is not given.
	cacheURLEnv = "NOCGEN_CACHE_URL"
)

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

	cacheURL string
	noCache  bool
	refresh  bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "nocgen generates network-on-chip descriptors for NoC simulators",
		Long: `nocgen builds mesh, torus and ring networks-on-chip from per-layer extents
and writes the network.xml descriptor consumed by cycle-accurate NoC simulators.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.cacheURL, "cache-url", "", "cache backend: file (default), none, redis://..., mongodb://... (env "+cacheURLEnv+")")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")
	root.PersistentFlags().BoolVar(&c.refresh, "refresh", false, "ignore cached results and regenerate")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.simconfigCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A nil keyer selects the
// default keys. The caller closes it.
func (c *CLI) newRunner(ctx context.Context, keyer cache.Keyer) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.Refresh = c.refresh
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	url := c.cacheURL
	if url == "" {
		url = os.Getenv(cacheURLEnv)
	}
	dir, err := cacheDir()
	if err != nil && (url == "" || url == "file") {
		c.Logger.Warn("cache directory unavailable, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, url, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/nocgen/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// loadConfig reads a config file and applies a topology override.
// The result is not validated; the pipeline does that.
func loadConfig(path, topology string) (config.File, error) {
	if path == "" {
		path = defaultConfigFile
	}
	f, err := config.Load(path)
	if err != nil {
		return config.File{}, err
	}
	if topology != "" {
		kind, err := config.ParseKind(topology)
		if err != nil {
			return config.File{}, err
		}
		f.Network.Topology = kind
	}
	return f, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// outputPath returns the path for one format. A single format writes to
// base as given; several formats replace the extension of base.
func outputPath(base, format string, multi bool) string {
	if base == "" {
		return "topology." + format
	}
	if !multi {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
}
