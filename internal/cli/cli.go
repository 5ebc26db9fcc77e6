// Package cli implements the topostim command-line interface.
//
// This package provides commands for compiling block graph manifests to
// stim circuits, sweeping (scale, noise) grids, rendering block graph
// diagrams, serving the compilation API over HTTP, and managing the local
// compilation cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - compile: Compile a TOML manifest to a stim circuit at a given scale
//   - sweep: Compile across a (scale, noise) grid with live progress
//   - graph: Render a manifest as a DOT, SVG, or PNG diagram
//   - serve: Run the compilation HTTP server
//   - cache: Manage the local compilation cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/topostim/topostim/pkg/blockgraph"
	"github.com/topostim/topostim/pkg/buildinfo"
	"github.com/topostim/topostim/pkg/cache"
	"github.com/topostim/topostim/pkg/compile"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "topostim"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "topostim",
		Short:        "Topostim compiles topological block graphs to stim circuits",
		Long:         `Topostim is a CLI tool for compiling abstract 3D block graphs of surface-code cubes and pipes into scale-parameterized stim circuits with detector and observable annotations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.compileCommand())
	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a compile runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*compile.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return compile.NewRunner(cache, nil, c.Logger), nil
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

// cacheDir returns the cache directory using XDG standard (~/.cache/topostim/).
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
// Manifest Loading
// =============================================================================

// loadManifest reads a TOML manifest from path and builds its block graph.
// The path is split so the filename can be validated separately.
func loadManifest(path string) (*blockgraph.BlockGraph, error) {
	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return blockgraph.LoadManifest(dir, file)
}
