package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/matzehuels/mfdcache/pkg/display"
	"github.com/matzehuels/mfdcache/pkg/errors"
)

// Load reads a configuration file and resolves every module in it.
// Missing files yield CONFIG_NOT_FOUND; decode and validation failures
// yield MALFORMED_CONFIGURATION carrying the file path.
func Load(path string, displays display.Provider) ([]*Module, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, err, "configuration file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}
	return Parse(data, path, displays)
}

// Parse decodes a JSON array of modules, or a single module object, and
// resolves inheritance. origin names the source in errors and is stored
// in Module.Source.
func Parse(data []byte, origin string, displays display.Provider) ([]*Module, error) {
	if displays == nil {
		displays = display.None{}
	}

	var modules []*Module
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, errors.New(errors.ErrCodeMalformedConfig, "%s: empty configuration", origin)
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &modules); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedConfig, err, "parse %s", origin)
		}
	default:
		var m Module
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedConfig, err, "parse %s", origin)
		}
		modules = []*Module{&m}
	}

	seen := make(map[string]bool, len(modules))
	for i, m := range modules {
		if m == nil {
			return nil, errors.New(errors.ErrCodeMalformedConfig, "%s: module %d is null", origin, i)
		}
		if seen[m.Name] {
			return nil, errors.New(errors.ErrCodeMalformedConfig, "%s: duplicate module %q", origin, m.Name)
		}
		seen[m.Name] = true
		m.Source = origin
		if err := m.Resolve(displays); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedConfig, err, "resolve %s", origin)
		}
	}
	return modules, nil
}

// inherited carries the values a node may take from its ancestors.
type inherited struct {
	module   string
	filePath string
	fileName string
	enabled  bool
	lineage  []string
}

// Resolve runs the inheritance pass over the module's configurations and
// fills missing top-level geometry from displays. It is idempotent.
func (m *Module) Resolve(displays display.Provider) error {
	if err := errors.ValidatePathName(m.Name); err != nil {
		return err
	}
	if displays == nil {
		displays = display.None{}
	}

	root := inherited{
		module:   m.Name,
		filePath: m.FilePath,
		fileName: m.FileName,
		enabled:  m.IsEnabled(),
		lineage:  []string{m.Name},
	}
	if err := checkSiblings(m.Configurations, m.Name); err != nil {
		return err
	}
	for _, c := range m.Configurations {
		applyDisplay(c, displays)
		if err := resolveNode(c, root); err != nil {
			return err
		}
	}
	return nil
}

func resolveNode(n *Node, parent inherited) error {
	if err := errors.ValidateName(n.Name); err != nil {
		return err
	}
	if n.ModuleName == "" {
		n.ModuleName = parent.module
	}
	if n.FilePath == "" {
		n.FilePath = parent.filePath
	}
	if n.FileName == "" {
		n.FileName = parent.fileName
	}
	if n.Enabled == nil {
		n.Enabled = Bool(parent.enabled)
	}
	n.lineage = append([]string(nil), parent.lineage...)

	if n.FilePath == "" || n.FileName == "" {
		return errors.New(errors.ErrCodeMalformedConfig,
			"%s: no file path/name after inheritance (filePath=%q, fileName=%q)",
			n.ReadableName(), n.FilePath, n.FileName)
	}
	if n.Opacity != nil && (*n.Opacity < 0 || *n.Opacity > 1) {
		return errors.New(errors.ErrCodeMalformedConfig, "%s: opacity %v outside [0,1]", n.ReadableName(), *n.Opacity)
	}
	if err := checkSiblings(n.Children, n.ReadableName()); err != nil {
		return err
	}

	next := inherited{
		module:   n.ModuleName,
		filePath: n.FilePath,
		fileName: n.FileName,
		enabled:  *n.Enabled,
		lineage:  append(n.Lineage(), n.Name),
	}
	for _, c := range n.Children {
		if err := resolveNode(c, next); err != nil {
			return err
		}
	}
	return nil
}

func checkSiblings(nodes []*Node, owner string) error {
	seen := make(map[string]bool, len(nodes))
	for i, c := range nodes {
		if c == nil {
			return errors.New(errors.ErrCodeMalformedConfig, "%s: entry %d is null", owner, i)
		}
		if seen[c.Name] {
			return errors.New(errors.ErrCodeMalformedConfig, "%s: duplicate name %q", owner, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// applyDisplay fills unset geometry of a top-level configuration from the
// display that shares its name.
func applyDisplay(n *Node, displays display.Provider) {
	if n.Left != nil && n.Top != nil && n.Width != nil && n.Height != nil {
		return
	}
	g, ok := displays.Lookup(n.Name)
	if !ok {
		return
	}
	if n.Left == nil {
		n.Left = Int(g.Left)
	}
	if n.Top == nil {
		n.Top = Int(g.Top)
	}
	if n.Width == nil {
		n.Width = Int(g.Width)
	}
	if n.Height == nil {
		n.Height = Int(g.Height)
	}
}

// Discover returns configuration files under root whose base name matches
// pattern, sorted. With recursive set, subdirectories are searched too.
// Base names listed in exclude are skipped.
func Discover(root, pattern string, recursive bool, exclude ...string) ([]string, error) {
	if err := errors.ValidateFilePattern(pattern); err != nil {
		return nil, err
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "file pattern %q", pattern)
	}
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, err, "configuration directory %s", root)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a directory", root)
	}

	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if skip[d.Name()] {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
