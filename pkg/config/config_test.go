package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/mfdcache/pkg/display"
	"github.com/matzehuels/mfdcache/pkg/errors"
)

const sampleModules = `[
  {
    "name": "F-16C",
    "displayName": "F-16C Viper",
    "filePath": "/mfd/f16",
    "fileName": "f16_KEY.png",
    "configurations": [
      {
        "name": "LMFD",
        "xOffsetStart": 0, "xOffsetFinish": 400, "yOffsetStart": 0, "yOffsetFinish": 400,
        "subConfigDef": [
          {"name": "BIT", "useAsSwitch": true, "fileName": "bit.png",
           "subConfigDef": [{"name": "BIT-Page2", "enabled": false}]},
          {"name": "Grid", "opacity": 0.5}
        ]
      },
      {"name": "RMFD", "enabled": false, "left": 1, "top": 2, "width": 3, "height": 4}
    ]
  },
  {
    "name": "A-10C",
    "filePath": "/mfd/a10",
    "fileName": "a10.png",
    "enabled": false,
    "configurations": [{"name": "LMFD"}]
  }
]`

func TestParseInheritance(t *testing.T) {
	modules, err := Parse([]byte(sampleModules), "mfd.json", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(modules))
	}

	f16 := modules[0]
	if f16.Source != "mfd.json" {
		t.Errorf("Source = %q", f16.Source)
	}
	if f16.Title() != "F-16C Viper" {
		t.Errorf("Title() = %q", f16.Title())
	}

	lmfd := f16.Configuration("LMFD")
	if lmfd == nil {
		t.Fatal("LMFD not found")
	}
	if lmfd.ModuleName != "F-16C" || lmfd.FilePath != "/mfd/f16" || lmfd.FileName != "f16_KEY.png" {
		t.Errorf("LMFD did not inherit from module: %+v", lmfd)
	}
	if !lmfd.IsEnabled() || lmfd.Enabled == nil {
		t.Error("LMFD should resolve to a concrete enabled=true")
	}

	bit := lmfd.Find("BIT")
	if bit.FileName != "bit.png" || bit.FilePath != "/mfd/f16" {
		t.Errorf("BIT file = %q/%q", bit.FilePath, bit.FileName)
	}
	if bit.ReadableName() != "F-16C:LMFD:BIT" {
		t.Errorf("ReadableName() = %q", bit.ReadableName())
	}

	page2 := lmfd.Find("BIT-Page2")
	if page2.FileName != "bit.png" {
		t.Errorf("BIT-Page2 should inherit its parent's file name, got %q", page2.FileName)
	}
	if page2.IsEnabled() {
		t.Error("BIT-Page2 sets enabled=false explicitly")
	}
	if !reflect.DeepEqual(page2.Lineage(), []string{"F-16C", "LMFD", "BIT"}) {
		t.Errorf("Lineage() = %v", page2.Lineage())
	}

	// Disabled parents propagate to children that leave enabled unset.
	a10 := modules[1].Configuration("LMFD")
	if a10.IsEnabled() {
		t.Error("A-10C:LMFD should inherit enabled=false from its module")
	}
}

func TestParseSingleObject(t *testing.T) {
	data := `{"name": "AH-64D", "filePath": "/mfd", "fileName": "ah64.png", "configurations": [{"name": "CPG"}]}`
	modules, err := Parse([]byte(data), "ah64.json", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(modules) != 1 || modules[0].Name != "AH-64D" {
		t.Fatalf("Parse single object = %+v", modules)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"invalid json", `[{"name": }]`},
		{"missing file name", `[{"name":"M","filePath":"/x","configurations":[{"name":"C"}]}]`},
		{"missing file path", `[{"name":"M","fileName":"x.png","configurations":[{"name":"C"}]}]`},
		{"empty node name", `[{"name":"M","filePath":"/x","fileName":"x.png","configurations":[{"name":""}]}]`},
		{"duplicate siblings", `[{"name":"M","filePath":"/x","fileName":"x.png","configurations":[{"name":"C"},{"name":"C"}]}]`},
		{"duplicate modules", `[{"name":"M","configurations":[]},{"name":"M","configurations":[]}]`},
		{"opacity out of range", `[{"name":"M","filePath":"/x","fileName":"x.png","configurations":[{"name":"C","opacity":1.5}]}]`},
		{"path in module name", `[{"name":"../M","filePath":"/x","fileName":"x.png","configurations":[{"name":"C"}]}]`},
		{"control character in name", `[{"name":"M","filePath":"/x","fileName":"x.png","configurations":[{"name":"C\u0007"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "bad.json", nil)
			if !errors.Is(err, errors.ErrCodeMalformedConfig) {
				t.Errorf("Parse error = %v, want MALFORMED_CONFIGURATION", err)
			}
		})
	}
}

func TestParseAllowsSeparatorsInNodeNames(t *testing.T) {
	data := `[{"name":"M","filePath":"/x","fileName":"x.png","configurations":[{"name":"L/R MFD","subConfigDef":[{"name":"A\\B"}]}]}]`
	modules, err := Parse([]byte(data), "sep.json", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if modules[0].Configuration("L/R MFD") == nil {
		t.Error("configuration with a slash in its name should load")
	}
}

func TestDisplayFallback(t *testing.T) {
	displays := display.List{
		{Name: "lmfd", Left: 100, Top: 200, Width: 300, Height: 250},
	}
	data := `[{"name":"M","filePath":"/x","fileName":"x.png","configurations":[
		{"name":"LMFD","width":640},
		{"name":"RMFD"}
	]}]`

	modules, err := Parse([]byte(data), "m.json", displays)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lmfd := modules[0].Configuration("LMFD")
	if *lmfd.Left != 100 || *lmfd.Top != 200 || *lmfd.Height != 250 {
		t.Errorf("LMFD geometry not filled from display: %+v", lmfd)
	}
	if *lmfd.Width != 640 {
		t.Errorf("explicit width must win over display, got %d", *lmfd.Width)
	}
	if rmfd := modules[0].Configuration("RMFD"); rmfd.Width != nil {
		t.Error("RMFD has no matching display and must keep nil geometry")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"), nil)
	if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		t.Errorf("Load(missing) error = %v, want CONFIG_NOT_FOUND", err)
	}

	path := filepath.Join(dir, "mfd.json")
	if err := os.WriteFile(path, []byte(sampleModules), 0644); err != nil {
		t.Fatal(err)
	}
	modules, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if modules[0].Source != path {
		t.Errorf("Source = %q, want %q", modules[0].Source, path)
	}
}

func TestModuleFind(t *testing.T) {
	modules, err := Parse([]byte(sampleModules), "mfd.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := modules[0].Find("Grid"); n == nil || n.Name != "Grid" {
		t.Errorf("Find(Grid) = %v", n)
	}
	if n := modules[0].Find("RMFD"); n == nil {
		t.Error("Find should match top-level configurations")
	}
	if n := modules[0].Find("nope"); n != nil {
		t.Errorf("Find(nope) = %v", n)
	}
}

func TestFindPrefersFirstPreOrderMatch(t *testing.T) {
	root := &Node{Name: "root", Children: []*Node{
		{Name: "a", Children: []*Node{{Name: "dup", FileName: "deep.png"}}},
		{Name: "dup", FileName: "shallow.png"},
	}}
	if got := root.Find("dup"); got.FileName != "deep.png" {
		t.Errorf("Find(dup) = %q, want the pre-order first match", got.FileName)
	}

	var order []string
	root.Walk(func(n, parent *Node) bool {
		order = append(order, parent.Name+">"+n.Name)
		return true
	})
	want := []string{"root>a", "a>dup", "root>dup"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Walk order = %v, want %v", order, want)
	}
}

func TestJSONRoundTripKeepsEquality(t *testing.T) {
	modules, err := Parse([]byte(sampleModules), "mfd.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	lmfd := modules[0].Configuration("LMFD")

	data, err := json.Marshal(lmfd)
	if err != nil {
		t.Fatal(err)
	}
	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !Equal(lmfd, &back) {
		t.Errorf("round trip changed the node:\n%s", data)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	write := func(rel string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.json")
	write("displays.json")
	write("notes.txt")
	write("sub/b.json")

	flat, err := Discover(dir, "*.json", false, "displays.json")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if want := []string{filepath.Join(dir, "a.json")}; !reflect.DeepEqual(flat, want) {
		t.Errorf("Discover(flat) = %v, want %v", flat, want)
	}

	deep, err := Discover(dir, "*.json", true, "displays.json")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "sub", "b.json")}
	if !reflect.DeepEqual(deep, want) {
		t.Errorf("Discover(recursive) = %v, want %v", deep, want)
	}

	if _, err := Discover(filepath.Join(dir, "missing"), "*.json", true); !errors.Is(err, errors.ErrCodeConfigNotFound) {
		t.Errorf("Discover(missing) error = %v, want CONFIG_NOT_FOUND", err)
	}
	if _, err := Discover(dir, "sub/*.json", true); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Discover(bad pattern) error = %v, want INVALID_INPUT", err)
	}
}
