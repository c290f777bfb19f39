package cache

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/mfdcache/pkg/errors"
	"github.com/matzehuels/mfdcache/pkg/observability"
)

// Artifact is a composed bitmap together with its cache metadata.
type Artifact struct {
	Key    string
	Path   string
	Width  int
	Height int
	Image  image.Image
	Data   []byte // PNG encoding of Image
	Hash   string // SHA-256 of Data

	// Cached is set when the artifact was served without rendering.
	Cached bool
	// Persisted is set when the artifact exists on disk at Path.
	Persisted bool
}

// RenderFunc produces the bitmap for a cache miss.
type RenderFunc func(ctx context.Context) (image.Image, error)

// Store implements the artifact cache policy over per-module caches.
type Store struct {
	root   string
	open   func(dir string) (Cache, error)
	logger *log.Logger

	mu      sync.Mutex
	modules map[string]Cache
	aliases map[string]alias
}

type alias struct {
	module   string
	artifact *Artifact
}

// NewStore creates a store persisting artifacts under root/{module}.
// A nil logger discards output.
func NewStore(root string, logger *log.Logger) *Store {
	return newStore(root, NewFileCache, logger)
}

// NewNullStore creates a store that renders on every call and persists
// nothing.
func NewNullStore(logger *log.Logger) *Store {
	return newStore("", func(string) (Cache, error) { return NewNullCache(), nil }, logger)
}

func newStore(root string, open func(string) (Cache, error), logger *log.Logger) *Store {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Store{
		root:    root,
		open:    open,
		logger:  logger,
		modules: make(map[string]Cache),
		aliases: make(map[string]alias),
	}
}

// Dir returns the cache root, or "" for a null store.
func (s *Store) Dir() string {
	return s.root
}

// ModuleDir returns the directory holding module's artifacts.
func (s *Store) ModuleDir(module string) string {
	if s.root == "" {
		return ""
	}
	return filepath.Join(s.root, SanitizeKey(module))
}

func (s *Store) cache(module string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.modules[module]; ok {
		return c, nil
	}
	c, err := s.open(s.ModuleDir(module))
	if err != nil {
		return nil, err
	}
	s.modules[module] = c
	return c, nil
}

// GetOrRender returns the artifact stored under key, invoking render only
// on a miss or when force is set. A freshly rendered artifact is written
// back; a failed write is logged as CACHE_WRITE_FAILURE and the in-memory
// artifact is still returned.
func (s *Store) GetOrRender(ctx context.Context, module, key string, render RenderFunc, force bool) (*Artifact, error) {
	c, err := s.cache(module)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open cache for %s", module)
	}
	hooks := observability.Cache()

	if !force {
		if a, ok := s.read(ctx, c, module, key); ok {
			hooks.OnCacheHit(ctx, module, key)
			return a, nil
		}
	}
	hooks.OnCacheMiss(ctx, module, key, force)

	img, err := render(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", key)
	}
	a := newArtifact(key, c.Path(key), img, buf.Bytes())

	if err := c.Set(ctx, key, a.Data); err != nil {
		werr := errors.Wrap(errors.ErrCodeCacheWrite, err, "persist %s", key)
		s.logger.Warn("artifact not persisted", "module", module, "key", key, "err", werr)
		hooks.OnCacheWriteError(ctx, module, key, werr)
		return a, nil
	}
	a.Persisted = a.Path != ""
	hooks.OnCacheSet(ctx, module, key, len(a.Data))
	return a, nil
}

func (s *Store) read(ctx context.Context, c Cache, module, key string) (*Artifact, bool) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "module", module, "key", key, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		s.logger.Warn("discarding unreadable artifact", "module", module, "key", key, "err", err)
		_ = c.Delete(ctx, key)
		return nil, false
	}
	a := newArtifact(key, c.Path(key), img, data)
	a.Cached = true
	a.Persisted = true
	return a, true
}

func newArtifact(key, path string, img image.Image, data []byte) *Artifact {
	b := img.Bounds()
	return &Artifact{
		Key:    key,
		Path:   path,
		Width:  b.Dx(),
		Height: b.Dy(),
		Image:  img,
		Data:   data,
		Hash:   Hash(data),
	}
}

// Alias registers lookupKey as another name for a.
func (s *Store) Alias(module, lookupKey string, a *Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[lookupKey] = alias{module: module, artifact: a}
}

// Lookup resolves a lookup key registered with Alias.
func (s *Store) Lookup(lookupKey string) (*Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	al, ok := s.aliases[lookupKey]
	return al.artifact, ok
}

// Aliases returns every registered lookup key in sorted order.
func (s *Store) Aliases() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.aliases))
	for k := range s.aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClearModule removes module's artifacts and aliases.
func (s *Store) ClearModule(ctx context.Context, module string) error {
	c, err := s.cache(module)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for k, al := range s.aliases {
		if al.module == module {
			delete(s.aliases, k)
		}
	}
	s.mu.Unlock()
	return c.Clear(ctx)
}

// Clear removes every artifact under the cache root and drops all aliases.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.aliases = make(map[string]alias)
	s.mu.Unlock()
	if s.root == "" {
		return nil
	}
	if err := os.RemoveAll(s.root); err != nil {
		return errors.Wrap(errors.ErrCodeCacheWrite, err, "clear %s", s.root)
	}
	return nil
}

// Close closes every opened module cache.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for m, c := range s.modules {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.modules, m)
	}
	return first
}
