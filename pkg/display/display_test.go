package display

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/mfdcache/pkg/errors"
)

func TestParseAndLookup(t *testing.T) {
	data := []byte(`[
		{"name": "LMFD", "left": 10, "top": 20, "width": 400, "height": 400, "alwaysOnTop": true},
		{"name": "RMFD", "left": 500, "top": 20, "width": 400, "height": 400, "enabled": false},
		{"name": "rmfd", "left": 900, "top": 20, "width": 300, "height": 300}
	]`)

	list, err := Parse(data, "displays.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	g, ok := list.Lookup("lmfd")
	if !ok {
		t.Fatal("Lookup should be case-insensitive")
	}
	if g.Left != 10 || g.Top != 20 || g.Width != 400 || !g.AlwaysOnTop {
		t.Errorf("Lookup(lmfd) = %+v", g)
	}

	// Disabled displays are skipped in favour of later matches.
	g, ok = list.Lookup("RMFD")
	if !ok || g.Left != 900 {
		t.Errorf("Lookup(RMFD) = %+v, %v; want the enabled entry", g, ok)
	}

	if _, ok := list.Lookup("CENTER"); ok {
		t.Error("Lookup of unknown display should fail")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `[{"name": }]`},
		{"not an array", `{"name": "LMFD"}`},
		{"missing name", `[{"left": 1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "displays.json")
			if !errors.Is(err, errors.ErrCodeMalformedConfig) {
				t.Errorf("Parse error = %v, want MALFORMED_CONFIGURATION", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		t.Errorf("Load(missing) error = %v, want CONFIG_NOT_FOUND", err)
	}

	path := filepath.Join(dir, "displays.json")
	if err := os.WriteFile(path, []byte(`[{"name":"LMFD","width":200,"height":100}]`), 0644); err != nil {
		t.Fatal(err)
	}
	list, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) != 1 || list[0].Width != 200 {
		t.Errorf("Load = %+v", list)
	}
}

func TestNone(t *testing.T) {
	if _, ok := (None{}).Lookup("LMFD"); ok {
		t.Error("None should never resolve")
	}
}
