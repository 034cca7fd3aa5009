// Package cli implements the chainview command-line interface.
//
// This package provides commands for normalizing annotation payloads into
// display models, rendering sequence maps and alignments, browsing annotated
// chains interactively, and managing run history. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - annotate: Normalize a raw annotation payload and render outputs
//   - align: Display a pairwise alignment as text or SVG
//   - view: Browse annotated chains in an interactive terminal viewer
//   - history: List, show, and clear saved runs
//   - serve: Run the HTTP API server
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tmonheim/chainview/pkg/buildinfo"
	"github.com/tmonheim/chainview/pkg/cache"
	"github.com/tmonheim/chainview/pkg/history"
	"github.com/tmonheim/chainview/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "chainview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
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
		Use:          appName,
		Short:        "Chainview renders annotated antibody sequences",
		Long:         `Chainview normalizes antibody annotation payloads into flat display models and renders them as sequence maps, pairwise alignments, and an interactive terminal viewer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.annotateCommand())
	root.AddCommand(c.alignCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
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

// newHistoryStore opens the file-backed run store. An empty dir uses the
// default history location.
func newHistoryStore(dir string) (history.Store, error) {
	return history.NewFileStore(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/chainview/).
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

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s, fallback string) []string {
	if s == "" {
		return []string{fallback}
	}
	return strings.Split(s, ",")
}

// readInput reads the payload from a file path, or from stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
