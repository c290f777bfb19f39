package selection

import (
	"reflect"
	"testing"

	"github.com/matzehuels/mfdcache/pkg/config"
)

func TestIsActiveStaticNodes(t *testing.T) {
	enabled := &config.Node{Name: "Grid", Enabled: config.Bool(true)}
	disabled := &config.Node{Name: "Grid", Enabled: config.Bool(false)}
	unset := &config.Node{Name: "Grid"}

	selections := [][]string{nil, {}, {"Grid"}, {"BIT", "DCLT"}, {""}}
	for _, sel := range selections {
		if !IsActive(enabled, sel) {
			t.Errorf("enabled static node must be active for %v", sel)
		}
		if IsActive(disabled, sel) {
			t.Errorf("disabled static node must be inactive for %v", sel)
		}
		if !IsActive(unset, sel) {
			t.Errorf("unset enabled defaults to active for %v", sel)
		}
	}
}

func TestIsActiveSwitchNodes(t *testing.T) {
	bit := &config.Node{Name: "BIT", UseAsSwitch: config.Bool(true), Enabled: config.Bool(true)}

	tests := []struct {
		name      string
		requested []string
		want      bool
	}{
		{"empty selection", nil, false},
		{"empty entries", []string{"", "  "}, false},
		{"exact", []string{"BIT"}, true},
		{"case-insensitive", []string{"bit"}, true},
		{"request contains name", []string{"F16-BIT-Overlay"}, true},
		{"name contains request", []string{"BI"}, true},
		{"no match", []string{"DCLT"}, false},
		{"one of many", []string{"DCLT", "bit"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsActive(bit, tt.requested); got != tt.want {
				t.Errorf("IsActive(BIT, %v) = %v, want %v", tt.requested, got, tt.want)
			}
		})
	}
}

func TestSwitchIgnoresEnabledFlag(t *testing.T) {
	bit := &config.Node{Name: "BIT", UseAsSwitch: config.Bool(true), Enabled: config.Bool(false)}
	if !IsActive(bit, []string{"BIT"}) {
		t.Error("a requested switch is active regardless of enabled")
	}
}

func TestActiveChildren(t *testing.T) {
	root := &config.Node{Name: "LMFD", Children: []*config.Node{
		{Name: "Grid"},
		{Name: "BIT", UseAsSwitch: config.Bool(true)},
		{Name: "Off", Enabled: config.Bool(false)},
		{Name: "DCLT", UseAsSwitch: config.Bool(true)},
	}}

	names := func(ns []*config.Node) []string {
		var out []string
		for _, n := range ns {
			out = append(out, n.Name)
		}
		return out
	}

	if got := names(ActiveChildren(root, nil)); !reflect.DeepEqual(got, []string{"Grid"}) {
		t.Errorf("ActiveChildren(nil) = %v", got)
	}
	if got := names(ActiveChildren(root, []string{"dclt", "bit"})); !reflect.DeepEqual(got, []string{"Grid", "BIT", "DCLT"}) {
		t.Errorf("ActiveChildren(dclt,bit) = %v", got)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"BIT", []string{"BIT"}},
		{"BIT|DCLT", []string{"BIT", "DCLT"}},
		{"BIT, DCLT ;HSI", []string{"BIT", "DCLT", "HSI"}},
		{"|,;", nil},
	}
	for _, tt := range tests {
		if got := Split(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
