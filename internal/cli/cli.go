// Package cli implements the layerscape command-line interface.
//
// # Commands
//
//   - layout: build a scene document from a model, URL or file
//   - inspect: browse an architecture's layers in an interactive inspector
//   - serve: run the HTTP API
//   - fetch, ping: talk to a model description service directly
//   - models: list configured models
//   - cache, config: manage the scene cache and configuration file
//
// All commands accept --config to choose a configuration file and
// --verbose (-v) for debug logging.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerscape/pkg/buildinfo"
	"github.com/matzehuels/layerscape/pkg/cache"
	"github.com/matzehuels/layerscape/pkg/config"
	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/pipeline"
	"github.com/matzehuels/layerscape/pkg/source"
	"github.com/matzehuels/layerscape/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "layerscape"

// annotationNoConfig marks commands that run without loading the
// configuration file.
const annotationNoConfig = "layerscape/no-config"

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

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the configuration loaded for the running command.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Layerscape lays out neural networks as 3D scenes",
		Long:         `Layerscape turns a neural network's layer list into a 3D scene of feature-map blocks and neuron clouds, and lets you inspect it layer by layer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoConfig] != "" {
				return nil
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.pingCommand())
	root.AddCommand(c.modelsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("configuration loaded", "path", c.configPath, "models", len(cfg.Models))
	return nil
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
	fetcher := source.NewFetcher(source.WithLogger(c.Logger))
	return pipeline.NewRunner(cc, nil, c.Logger, pipeline.WithConfig(c.cfg), pipeline.WithFetcher(fetcher)), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, c.cfg.Cache.RedisAddr, appName+":")
	default:
		return cache.NewFileCache(c.cfg.Cache.Dir)
	}
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.cfg.Store.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, c.cfg.Store.MongoURI, c.cfg.Store.Database)
	case "memory", "":
		return store.NewMemoryStore(), nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q", c.cfg.Store.Backend)
	}
}
