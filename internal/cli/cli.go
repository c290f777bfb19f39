// Package cli implements the mfdcache command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mfdcache/pkg/buildinfo"
	"github.com/matzehuels/mfdcache/pkg/cache"
	"github.com/matzehuels/mfdcache/pkg/display"
	"github.com/matzehuels/mfdcache/pkg/errors"
	"github.com/matzehuels/mfdcache/pkg/provider"
	"github.com/matzehuels/mfdcache/pkg/settings"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "mfdcache"

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

	settingsPath string
	displaysPath string
	noCache      bool
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
		Short:        "mfdcache composes and caches cockpit display images",
		Long:         `mfdcache renders simulated cockpit-panel (MFD) images by cropping and layering source bitmaps according to a JSON configuration tree, and caches the results on disk keyed by a fingerprint of the configuration.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.settingsPath, "settings", "", "settings file (TOML)")
	flags.StringVar(&c.displaysPath, "displays", "", "display geometry file (default: <config dir>/displays.json)")
	flags.BoolVar(&c.noCache, "no-cache", false, "render without reading or writing the artifact cache")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.rebuildCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Provider Factory
// =============================================================================

// loadSettings reads the --settings file, or returns defaults.
func (c *CLI) loadSettings() (settings.Settings, error) {
	return settings.Load(c.settingsPath)
}

// newProvider wires settings, display geometry and the artifact store for
// configurations found at path.
func (c *CLI) newProvider(s settings.Settings, path string) (*provider.Provider, error) {
	displays, err := c.loadDisplays(s, path)
	if err != nil {
		return nil, err
	}
	store, err := c.newStore(s)
	if err != nil {
		return nil, err
	}
	return provider.New(s, store, displays, nil, c.Logger), nil
}

func (c *CLI) newStore(s settings.Settings) (*cache.Store, error) {
	if c.noCache {
		return cache.NewNullStore(c.Logger), nil
	}
	dir, err := s.CacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullStore(c.Logger), nil
	}
	return cache.NewStore(dir, c.Logger), nil
}

// loadDisplays reads the --displays file when given. Otherwise the display
// file next to the configurations is used if it exists.
func (c *CLI) loadDisplays(s settings.Settings, path string) (display.Provider, error) {
	if c.displaysPath != "" {
		return display.Load(c.displaysPath)
	}
	candidate := filepath.Join(configDir(path), s.DisplayFile)
	l, err := display.Load(candidate)
	if errors.Is(err, errors.ErrCodeConfigNotFound) {
		c.Logger.Debug("no display file", "path", candidate)
		return display.None{}, nil
	}
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded displays", "path", candidate, "count", len(l))
	return l, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns path itself for directories and the parent directory
// for files.
func configDir(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderOptions builds provider options from shared flag values.
func renderOptions(sel, primary, fallback string, force bool) provider.Options {
	return provider.Options{
		Primary:   strings.TrimSpace(primary),
		Fallback:  strings.TrimSpace(fallback),
		Selection: provider.ParseSelection(sel),
		Force:     force,
	}
}

// =============================================================================
// Error Hints
// =============================================================================

// Hint suggests a next step for errors the user can usually fix from the
// command line. It returns "" when there is nothing useful to add.
func Hint(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeSourceImageNotFound:
		return "check filePath/fileName in the configuration, or pass --primary/--fallback for variant files"
	case errors.ErrCodeConfigNotFound:
		return "pass a configuration file or a directory containing " + settings.DefaultFilePattern + " files"
	case errors.ErrCodeInvalidSettings:
		return "fix the file given with --settings"
	case errors.ErrCodeCacheWrite:
		return "use --no-cache, or set cache_root in the settings file"
	}
	return ""
}
