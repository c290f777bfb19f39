package cli

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/settings"
)

const defaultDebounce = 300 * time.Millisecond

// watchOpts holds the command-line flags for the watch command.
type watchOpts struct {
	selection string
	primary   string
	fallback  string
	debounce  time.Duration
}

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-render modules whenever their configuration files change",
		Long: `Watch monitors dir and its subdirectories. When a configuration file is
written, its modules are rendered again; unchanged nodes are served from the
cache. A change to the display file re-renders every configuration file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "switches to activate")
	cmd.Flags().StringVar(&opts.primary, "primary", "", "primary hardware-variant token")
	cmd.Flags().StringVar(&opts.fallback, "fallback", "", "fallback hardware-variant token")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", defaultDebounce, "quiet period before re-rendering a file")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, dir string, opts watchOpts) error {
	s, err := c.loadSettings()
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addRecursive(w, dir); err != nil {
		return err
	}

	printInfo("Watching %s", StyleValue.Render(dir))
	printDetail("Press Ctrl+C to stop")

	d := newDebouncer(opts.debounce)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(w, ev.Name)
					continue
				}
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			switch classify(s, ev.Name) {
			case changeConfig:
				d.add(ev.Name, time.Now())
			case changeDisplays:
				files, err := config.Discover(dir, s.FilePattern, true, s.DisplayFile)
				if err != nil {
					c.Logger.Warn("discover failed", "err", err)
					continue
				}
				for _, f := range files {
					d.add(f, time.Now())
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)

		case now := <-ticker.C:
			for _, f := range d.due(now) {
				c.rerender(ctx, s, f, opts)
			}
		}
	}
}

// rerender renders every module of one configuration file. Failures are
// reported and watching continues.
func (c *CLI) rerender(ctx context.Context, s settings.Settings, file string, opts watchOpts) {
	prog := newProgress(c.Logger)
	p, err := c.newProvider(s, filepath.Dir(file))
	if err != nil {
		printError("%s: %v", file, err)
		return
	}
	modules, err := p.GetModules(file, "")
	if err != nil {
		printError("%s: %v", file, err)
		return
	}
	arts, err := renderModules(ctx, p, modules, "", "", renderOptions(opts.selection, opts.primary, opts.fallback, false))
	if err != nil {
		printError("%s: %v", file, err)
		return
	}
	stats := countArtifacts(arts)
	prog.done("re-rendered " + filepath.Base(file))
	printSuccess("%s  %s", filepath.Base(file), stats)
}

func addRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

type change int

const (
	changeIgnored change = iota
	changeConfig
	changeDisplays
)

// classify decides what a changed path means for the render.
func classify(s settings.Settings, path string) change {
	name := filepath.Base(path)
	if name == s.DisplayFile {
		return changeDisplays
	}
	if ok, _ := filepath.Match(s.FilePattern, name); ok {
		return changeConfig
	}
	return changeIgnored
}

// =============================================================================
// Debouncer
// =============================================================================

// debouncer collects changed paths and releases each one after it has
// been quiet for the debounce period.
type debouncer struct {
	wait    time.Duration
	mu      sync.Mutex
	pending map[string]time.Time // path -> last change
}

func newDebouncer(wait time.Duration) *debouncer {
	return &debouncer{wait: wait, pending: make(map[string]time.Time)}
}

func (d *debouncer) add(path string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[path] = at
}

// due removes and returns, sorted, the paths quiet since now-wait.
func (d *debouncer) due(now time.Time) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for path, at := range d.pending {
		if now.Sub(at) >= d.wait {
			out = append(out, path)
			delete(d.pending, path)
		}
	}
	sort.Strings(out)
	return out
}
