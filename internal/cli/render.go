package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mfdcache/pkg/cache"
	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/errors"
	"github.com/matzehuels/mfdcache/pkg/provider"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	module      string // render only this module
	config      string // render only this configuration (requires module)
	selection   string // requested switches, separated by | , or ;
	primary     string // primary hardware-variant token
	fallback    string // fallback hardware-variant token
	force       bool   // ignore cached artifacts
	interactive bool   // pick configuration and switches in a TUI
	output      string // copy rendered artifacts into this directory
	fileSpec    string // configuration file pattern
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <path>",
		Short: "Render module artifacts from a configuration file or directory",
		Long: `Render composes every enabled configuration of the modules found at path and
caches the results. Switch sub-configurations are rendered only when selected
with --select (or interactively with -i).`,
		Example: `  mfdcache render ./configs
  mfdcache render ./configs --module F-16C --config LMFD --select "BIT|HSI"
  mfdcache render ./configs/f16.json --primary WH --fallback CG -o ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.config != "" && opts.module == "" && !opts.interactive {
				return errors.New(errors.ErrCodeInvalidInput, "--config requires --module")
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "render only this module")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "render only this configuration")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "switches to activate, e.g. \"BIT|HSI\"")
	cmd.Flags().StringVar(&opts.primary, "primary", "", "primary hardware-variant token")
	cmd.Flags().StringVar(&opts.fallback, "fallback", "", "fallback hardware-variant token")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "re-render even when cached")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick configuration and switches interactively")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "copy artifacts into this directory")
	cmd.Flags().StringVar(&opts.fileSpec, "pattern", "", "configuration file pattern (default from settings)")
	c.registerNameCompletion(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	s, err := c.loadSettings()
	if err != nil {
		return err
	}
	p, err := c.newProvider(s, path)
	if err != nil {
		return err
	}

	modules, err := p.GetModules(path, opts.fileSpec)
	if err != nil {
		return err
	}

	popts := renderOptions(opts.selection, opts.primary, opts.fallback, opts.force)
	prog := newProgress(c.Logger)

	var arts provider.Artifacts
	if opts.interactive {
		entry, sel, err := pickConfiguration(modules)
		if err != nil {
			return err
		}
		if entry == nil {
			printDetail("No selection made")
			return nil
		}
		popts.Selection = sel
		arts, err = p.LoadConfigurationImages(ctx, entry.Module, entry.Config.Name, popts)
		if err != nil {
			return err
		}
	} else {
		arts, err = renderModules(ctx, p, modules, opts.module, opts.config, popts)
		if err != nil {
			return err
		}
	}

	stats := countArtifacts(arts)
	prog.done(fmt.Sprintf("Rendered %d artifacts", stats.total()))
	if len(arts) == 0 {
		printWarning("Nothing rendered")
		return nil
	}
	fmt.Println(artifactTable(arts))
	printSuccess("%d artifacts  %s", stats.total(), stats)

	if opts.output != "" {
		if err := exportArtifacts(arts, opts.output); err != nil {
			return err
		}
	}
	return nil
}

// renderModules renders the named module (or every enabled module) and
// merges the results.
func renderModules(ctx context.Context, p *provider.Provider, modules []*config.Module, module, cfg string, opts provider.Options) (provider.Artifacts, error) {
	out := make(provider.Artifacts)
	matched := false
	for _, m := range modules {
		if module != "" && !strings.EqualFold(m.Name, module) {
			continue
		}
		if module == "" && !m.IsEnabled() {
			continue
		}
		matched = true

		var (
			arts provider.Artifacts
			err  error
		)
		if cfg != "" {
			arts, err = p.LoadConfigurationImages(ctx, m, cfg, opts)
		} else {
			arts, err = p.LoadModuleImages(ctx, m, opts)
		}
		if err != nil {
			return nil, err
		}
		for k, a := range arts {
			out[k] = a
		}
	}
	if module != "" && !matched {
		return nil, errors.New(errors.ErrCodeInvalidInput, "module %q not found", module)
	}
	return out, nil
}

// exportArtifacts writes each artifact to dir/{lookup key}.png.
func exportArtifacts(arts provider.Artifacts, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for k, a := range arts {
		path := filepath.Join(dir, cache.SanitizeKey(k)+cache.Extension)
		if err := os.WriteFile(path, a.Data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
