package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mfdcache/pkg/observability"
)

// rebuildOpts holds the command-line flags for the rebuild command.
type rebuildOpts struct {
	selection string
	primary   string
	fallback  string
}

// rebuildCommand creates the rebuild command.
func (c *CLI) rebuildCommand() *cobra.Command {
	var opts rebuildOpts

	cmd := &cobra.Command{
		Use:   "rebuild <dir>",
		Short: "Re-render every module below a directory, ignoring the cache",
		Long: `Rebuild discovers configuration files recursively below dir and renders every
enabled module, overwriting cached artifacts.`,
		Example: `  mfdcache rebuild ./configs
  mfdcache rebuild ./configs --primary WH --fallback CG`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRebuild(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "switches to activate in every module")
	cmd.Flags().StringVar(&opts.primary, "primary", "", "primary hardware-variant token")
	cmd.Flags().StringVar(&opts.fallback, "fallback", "", "fallback hardware-variant token")

	return cmd
}

func (c *CLI) runRebuild(ctx context.Context, dir string, opts rebuildOpts) error {
	s, err := c.loadSettings()
	if err != nil {
		return err
	}
	p, err := c.newProvider(s, dir)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rebuilding "+dir)
	hooks := newRebuildProgress(spinner)
	observability.SetRenderHooks(hooks)
	defer observability.SetRenderHooks(observability.NoopRenderHooks{})

	spinner.Start()
	start := time.Now()
	arts, err := p.RebuildAll(ctx, dir, renderOptions(opts.selection, opts.primary, opts.fallback, true))
	if err != nil {
		spinner.StopWithError("Rebuild failed")
		return err
	}
	spinner.Stop()

	stats := countArtifacts(arts)
	printSuccess("Rebuilt %d modules in %s", hooks.completed(), time.Since(start).Round(time.Millisecond))
	printDetail("%d artifacts  %s", stats.total(), stats)
	if cacheDir, err := s.CacheDir(); err == nil && !c.noCache {
		printDetail("Cache: %s", cacheDir)
	}
	return nil
}

// rebuildProgress reports module progress on a spinner.
type rebuildProgress struct {
	observability.NoopRenderHooks

	spinner *Spinner

	mu      sync.Mutex
	running map[string]bool
	done    int
}

func newRebuildProgress(s *Spinner) *rebuildProgress {
	return &rebuildProgress{spinner: s, running: make(map[string]bool)}
}

func (r *rebuildProgress) OnModuleStart(_ context.Context, module string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running[module] = true
	r.spinner.SetMessage("%s", r.status(module))
}

func (r *rebuildProgress) OnModuleComplete(_ context.Context, module string, _ int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, module)
	if err == nil {
		r.done++
	}
	r.spinner.SetMessage("%s", r.status(module))
}

func (r *rebuildProgress) completed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// status must be called with mu held.
func (r *rebuildProgress) status(last string) string {
	return fmt.Sprintf("Rebuilding %s (%d done, %d running)", last, r.done, len(r.running))
}
