package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/mfdcache/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.Vendor != DefaultVendor || s.Product != DefaultProduct {
		t.Errorf("vendor/product = %q/%q", s.Vendor, s.Product)
	}
	if s.FilePattern != "*.json" || s.DisplayFile != "displays.json" {
		t.Errorf("discovery defaults = %q/%q", s.FilePattern, s.DisplayFile)
	}
	if s.Ruler.Enabled || s.Ruler.Interval != DefaultRulerInterval {
		t.Errorf("ruler = %+v", s.Ruler)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}

	loaded, err := Load("")
	if err != nil || loaded != s {
		t.Errorf("Load(\"\") = %+v, %v", loaded, err)
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
vendor = "acme"
cache_root = "/var/cache"

[ruler]
enabled = true
interval = 25

[variant]
key = "KEY"
primary = "WH"
fallback = "CG"
use_fallback = true
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Vendor != "acme" || s.Product != DefaultProduct {
		t.Errorf("vendor/product = %q/%q", s.Vendor, s.Product)
	}
	if !s.Ruler.Enabled || s.Ruler.Interval != 25 {
		t.Errorf("ruler = %+v", s.Ruler)
	}
	want := Variant{Key: "KEY", Primary: "WH", Fallback: "CG", UseFallback: true}
	if s.Variant != want {
		t.Errorf("variant = %+v, want %+v", s.Variant, want)
	}

	dir, err := s.CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/var/cache", "acme", DefaultProduct, "cache"); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", `vendor = `, errors.ErrCodeInvalidSettings},
		{"unknown key", `colour = "red"`, errors.ErrCodeInvalidSettings},
		{"bad vendor", `vendor = "a/b"`, errors.ErrCodeInvalidSettings},
		{"bad pattern", `file_pattern = "dir/*.json"`, errors.ErrCodeInvalidSettings},
		{"negative interval", "[ruler]\ninterval = -5", errors.ErrCodeInvalidSettings},
		{"tokens without key", "[variant]\nprimary = \"WH\"", errors.ErrCodeInvalidSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load error = %v, want %s", err, tt.code)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		t.Errorf("Load(missing) error = %v, want CONFIG_NOT_FOUND", err)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/xdg")
	dir, err := Default().CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", DefaultVendor, DefaultProduct, "cache"); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}
}

func TestWithTokens(t *testing.T) {
	base := Default()
	base.Variant = Variant{Key: "KEY", Primary: "WH"}

	s := base.WithTokens("TM", "CG")
	if s.Variant.Primary != "TM" || s.Variant.Fallback != "CG" {
		t.Errorf("WithTokens = %+v", s.Variant)
	}
	if s.Variant.UseFallback {
		t.Error("a fallback token must not enable the fallback preference")
	}

	base.Variant.UseFallback = true
	if !base.WithTokens("", "CG").Variant.UseFallback {
		t.Error("WithTokens should keep an enabled fallback preference")
	}
	base.Variant.UseFallback = false
	if base.Variant.Primary != "WH" {
		t.Error("WithTokens must not mutate the receiver")
	}

	kept := base.WithTokens("", "")
	if kept.Variant != base.Variant {
		t.Errorf("empty tokens should keep the variant, got %+v", kept.Variant)
	}
}

func TestFingerprint(t *testing.T) {
	a := Default()
	b := Default()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal settings should fingerprint equally")
	}

	b.Ruler.Enabled = true
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("ruler toggle should change the fingerprint")
	}

	c := Default().WithTokens("TM", "")
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("variant tokens should change the fingerprint")
	}

	d := Default()
	d.Vendor = "other"
	if a.Fingerprint() != d.Fingerprint() {
		t.Error("vendor does not affect pixels and should not change the fingerprint")
	}
}
