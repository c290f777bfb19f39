// Package display resolves named physical display bounds.
//
// Display geometry is a fallback source: a top-level configuration that
// omits left/top/width/height borrows them from the display whose name
// matches the configuration name.
package display

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/mfdcache/pkg/errors"
)

// Geometry is the physical bounds of a named display.
type Geometry struct {
	Name        string `json:"name"`
	Left        int    `json:"left"`
	Top         int    `json:"top"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	AlwaysOnTop bool   `json:"alwaysOnTop"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

// IsEnabled reports whether the display participates in lookups.
// Displays without an explicit flag are enabled.
func (g Geometry) IsEnabled() bool {
	return g.Enabled == nil || *g.Enabled
}

// Provider resolves a display name to its bounds.
type Provider interface {
	Lookup(name string) (Geometry, bool)
}

// List is a Provider backed by an in-memory slice.
// Lookups are case-insensitive; the first enabled match wins.
type List []Geometry

// Lookup implements Provider.
func (l List) Lookup(name string) (Geometry, bool) {
	for _, g := range l {
		if g.IsEnabled() && strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Geometry{}, false
}

// None is a Provider that never resolves anything.
type None struct{}

// Lookup implements Provider.
func (None) Lookup(string) (Geometry, bool) { return Geometry{}, false }

// Load reads a display geometry file (a JSON array of displays).
func Load(path string) (List, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, err, "display file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read display file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes display geometry JSON. origin names the source in errors.
func Parse(data []byte, origin string) (List, error) {
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedConfig, err, "parse display file %s", origin)
	}
	for i, g := range list {
		if g.Name == "" {
			return nil, errors.New(errors.ErrCodeMalformedConfig, "%s: display %d has no name", origin, i)
		}
	}
	return list, nil
}

var (
	_ Provider = List(nil)
	_ Provider = None{}
)
