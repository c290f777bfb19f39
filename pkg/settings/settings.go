// Package settings holds the immutable render settings threaded through
// every render call: cache location, file discovery, the ruler overlay and
// hardware-variant tokens.
//
// Settings are read from a TOML file:
//
//	vendor = "matzehuels"
//	product = "mfdcache"
//	file_pattern = "*.json"
//	display_file = "displays.json"
//
//	[ruler]
//	enabled = true
//	interval = 10
//
//	[variant]
//	key = "KEY"
//	primary = "WH"
//	fallback = "CG"
//	use_fallback = true
//
// Settings are passed by value; nothing in the render path reads global
// state.
package settings

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mfdcache/pkg/errors"
	"github.com/matzehuels/mfdcache/pkg/fingerprint"
)

// Defaults.
const (
	DefaultVendor        = "matzehuels"
	DefaultProduct       = "mfdcache"
	DefaultFilePattern   = "*.json"
	DefaultDisplayFile   = "displays.json"
	DefaultRulerInterval = 10
)

// Ruler configures the measurement overlay drawn over composed artifacts.
type Ruler struct {
	Enabled  bool `toml:"enabled"`
	Interval int  `toml:"interval"`
}

// Variant configures hardware-variant substitution in source file names.
// A file name containing Key has Key replaced by Primary; when that file
// does not exist and UseFallback is set, Key is replaced by Fallback.
type Variant struct {
	Key         string `toml:"key"`
	Primary     string `toml:"primary"`
	Fallback    string `toml:"fallback"`
	UseFallback bool   `toml:"use_fallback"`
}

// Settings is the complete render configuration.
type Settings struct {
	Vendor      string  `toml:"vendor"`
	Product     string  `toml:"product"`
	CacheRoot   string  `toml:"cache_root"`
	FilePattern string  `toml:"file_pattern"`
	DisplayFile string  `toml:"display_file"`
	Ruler       Ruler   `toml:"ruler"`
	Variant     Variant `toml:"variant"`
}

// Default returns settings with every default applied.
func Default() Settings {
	s := Settings{}
	s.SetDefaults()
	return s
}

// Load reads settings from a TOML file and applies defaults.
// An empty path returns Default().
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	var s Settings
	md, err := toml.DecodeFile(path, &s)
	if os.IsNotExist(err) {
		return Settings{}, errors.Wrap(errors.ErrCodeConfigNotFound, err, "settings file %s", path)
	}
	if err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidSettings, err, "parse settings %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Settings{}, errors.New(errors.ErrCodeInvalidSettings, "%s: unknown keys %v", path, undecoded)
	}
	s.SetDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// SetDefaults fills zero values with defaults.
func (s *Settings) SetDefaults() {
	if s.Vendor == "" {
		s.Vendor = DefaultVendor
	}
	if s.Product == "" {
		s.Product = DefaultProduct
	}
	if s.FilePattern == "" {
		s.FilePattern = DefaultFilePattern
	}
	if s.DisplayFile == "" {
		s.DisplayFile = DefaultDisplayFile
	}
	if s.Ruler.Interval == 0 {
		s.Ruler.Interval = DefaultRulerInterval
	}
}

// Validate checks settings for consistency.
func (s Settings) Validate() error {
	if err := errors.ValidatePathName(s.Vendor); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "vendor")
	}
	if err := errors.ValidatePathName(s.Product); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "product")
	}
	if err := errors.ValidateFilePattern(s.FilePattern); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "file_pattern")
	}
	if _, err := filepath.Match(s.FilePattern, ""); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "file_pattern %q", s.FilePattern)
	}
	if s.Ruler.Interval < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "ruler interval must be positive, got %d", s.Ruler.Interval)
	}
	if s.Variant.Key == "" && (s.Variant.Primary != "" || s.Variant.Fallback != "") {
		return errors.New(errors.ErrCodeInvalidSettings, "variant tokens set without a variant key")
	}
	return nil
}

// WithTokens returns a copy of s with the primary and fallback variant
// tokens replaced. Empty arguments keep the current values. Whether the
// fallback is tried stays governed by Variant.UseFallback.
func (s Settings) WithTokens(primary, fallback string) Settings {
	if primary != "" {
		s.Variant.Primary = primary
	}
	if fallback != "" {
		s.Variant.Fallback = fallback
	}
	return s
}

// CacheDir returns {cache root}/{vendor}/{product}/cache. The cache root is
// CacheRoot when set, else $XDG_CACHE_HOME, else the platform user cache
// directory.
func (s Settings) CacheDir() (string, error) {
	root := s.CacheRoot
	if root == "" {
		root = os.Getenv("XDG_CACHE_HOME")
	}
	if root == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		root = dir
	}
	return filepath.Join(root, s.Vendor, s.Product, "cache"), nil
}

// Fingerprint folds every setting that changes rendered pixels into a salt
// for artifact keys.
func (s Settings) Fingerprint() uint64 {
	return fingerprint.Salt(
		strconv.FormatBool(s.Ruler.Enabled),
		strconv.Itoa(s.Ruler.Interval),
		s.Variant.Key,
		s.Variant.Primary,
		s.Variant.Fallback,
		strconv.FormatBool(s.Variant.UseFallback),
	)
}
