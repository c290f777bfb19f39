package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/errors"
	"github.com/matzehuels/mfdcache/pkg/provider"
	"github.com/matzehuels/mfdcache/pkg/treeviz"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	module    string
	selection string
	detailed  bool
	svg       string
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree <path>",
		Short: "Show the configuration tree of a module as Graphviz DOT or SVG",
		Example: `  mfdcache tree ./configs/f16.json --module F-16C
  mfdcache tree ./configs --module F-16C --select BIT --detailed --svg f16.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "module to show (default: first)")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "switches to mark active")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include files, sizes and fingerprints")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "render SVG to this file instead of printing DOT")
	c.registerNameCompletion(cmd)

	return cmd
}

func (c *CLI) runTree(ctx context.Context, path string, opts treeOpts) error {
	s, err := c.loadSettings()
	if err != nil {
		return err
	}
	displays, err := c.loadDisplays(s, path)
	if err != nil {
		return err
	}
	p := provider.New(s, nil, displays, nil, c.Logger)
	modules, err := p.GetModules(path, "")
	if err != nil {
		return err
	}
	m, err := pickModule(modules, opts.module)
	if err != nil {
		return err
	}

	dot := treeviz.ToDOT(m, treeviz.Options{
		Selection: provider.ParseSelection(opts.selection),
		Detailed:  opts.detailed,
	})
	if opts.svg == "" {
		fmt.Print(dot)
		return nil
	}

	svg, err := treeviz.RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.svg, svg, 0644); err != nil {
		return err
	}
	printSuccess("Rendered tree of %s", m.Title())
	printFile(opts.svg)
	return nil
}

// pickModule returns the module named name, or the first module when name
// is empty.
func pickModule(modules []*config.Module, name string) (*config.Module, error) {
	if len(modules) == 0 {
		return nil, errors.New(errors.ErrCodeConfigNotFound, "no modules found")
	}
	if name == "" {
		return modules[0], nil
	}
	for _, m := range modules {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "module %q not found", name)
}
