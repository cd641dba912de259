package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/buildinfo"
	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/layout"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowchart"

	// defaultConfigFile is read from the working directory when --config is
	// not given.
	defaultConfigFile = appName + ".toml"
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
	Config Config

	configPath   string
	layoutEngine string
}

// New creates a new CLI instance with a default logger and default config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
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
		Short: "Flowchart lays out and edits node-and-port flow charts",
		Long: `Flowchart is a CLI for node-and-port flow charts. It lays out documents,
replays gesture scripts against the interactive engine, renders frames as SVG
and serves live diagrams over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", defaultConfigFile, "config file")
	root.PersistentFlags().StringVar(&c.layoutEngine, "layout", "", "layout engine: layered, graphviz (overrides config)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies flag overrides. A missing
// default file is not an error; a missing explicit --config is.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	explicit := cmd.Flags().Changed("config")
	cfg, err := LoadConfig(c.configPath, explicit)
	if err != nil {
		return err
	}
	if c.layoutEngine != "" {
		cfg.Layout.Engine = c.layoutEngine
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg

	if verbose := cmd.Flags().Lookup("verbose"); verbose == nil || !verbose.Changed {
		if level, ok := cfg.Log.level(); ok {
			c.SetLogLevel(level)
		}
	}
	registerHooks(c.Logger)
	return nil
}

// =============================================================================
// Engine Factory
// =============================================================================

// newLayouter builds the configured layout engine, wrapped in the on-disk
// layout cache unless caching is disabled.
func (c *CLI) newLayouter(noCache bool) (layout.Layouter, error) {
	var inner layout.Layouter
	switch c.Config.Layout.Engine {
	case EngineLayered:
		l := layout.NewLayered()
		if c.Config.Layout.ColumnGap > 0 {
			l.ColumnGap = c.Config.Layout.ColumnGap
		}
		if c.Config.Layout.RowGap > 0 {
			l.RowGap = c.Config.Layout.RowGap
		}
		inner = l
	case EngineGraphviz:
		g := layout.NewGraphviz()
		if c.Config.Layout.ColumnGap > 0 {
			g.RankSep = c.Config.Layout.ColumnGap / pointsPerInch
		}
		if c.Config.Layout.RowGap > 0 {
			g.NodeSep = c.Config.Layout.RowGap / pointsPerInch
		}
		inner = g
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown layout engine %q", c.Config.Layout.Engine)
	}

	if noCache || !c.Config.Layout.Cache {
		return inner, nil
	}
	cc, err := newCache(false)
	if err != nil {
		c.Logger.Warn("layout cache unavailable", "err", err)
		return inner, nil
	}
	return layout.NewCached(inner, cc, c.Config.Layout.cacheTTL(), c.Logger), nil
}

// pointsPerInch converts configured gaps to Graphviz separations.
const pointsPerInch = 72.0

// engineOptions returns the options every CLI-built engine shares.
func (c *CLI) engineOptions(l layout.Layouter) []flow.Option {
	return []flow.Option{
		flow.WithLayouter(l),
		flow.WithLogger(c.Logger),
	}
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flowchart/).
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
