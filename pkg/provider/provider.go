// Package provider answers the questions a presentation layer asks:
// which modules exist, and what are the rendered artifacts for a module,
// a configuration or a whole directory tree.
//
// # Render flow
//
// For each enabled configuration the provider renders a base artifact,
// then one artifact per active top-level sub-configuration:
//
//	selection -> fingerprint -> cache lookup -> [miss] load -> compose -> cache write
//
// Source bitmaps are loaded lazily inside the render callback, so a fully
// cached module never touches its source images.
//
// # Keys
//
// Every artifact is returned under a lookup key:
//
//	{module}-{configuration}            base artifact
//	{module}-{configuration}-{sub}      composite for an active sub
//	{module}-{configuration}-{desc}     alias of the composite that drew desc
//
// The artifact itself carries the content-addressed cache key
// {module}-{node}-{fingerprint}.
package provider

import (
	"context"
	"image"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mfdcache/pkg/cache"
	"github.com/matzehuels/mfdcache/pkg/compose"
	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/display"
	"github.com/matzehuels/mfdcache/pkg/errors"
	"github.com/matzehuels/mfdcache/pkg/fingerprint"
	"github.com/matzehuels/mfdcache/pkg/observability"
	"github.com/matzehuels/mfdcache/pkg/selection"
	"github.com/matzehuels/mfdcache/pkg/settings"
	"github.com/matzehuels/mfdcache/pkg/source"
)

// Artifacts maps lookup keys to rendered artifacts.
type Artifacts map[string]*cache.Artifact

// Provider orchestrates loading, composing and caching.
//
// A Provider is safe for concurrent use; modules rendered concurrently
// write to disjoint cache directories.
type Provider struct {
	Settings settings.Settings
	Store    *cache.Store
	Displays display.Provider
	Source   source.ImageSource
	Logger   *log.Logger
}

// New creates a provider. A nil store renders without caching, a nil
// display provider disables geometry fallback, a nil source reads from
// disk and a nil logger discards output.
func New(s settings.Settings, store *cache.Store, displays display.Provider, src source.ImageSource, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if store == nil {
		store = cache.NewNullStore(logger)
	}
	if displays == nil {
		displays = display.None{}
	}
	if src == nil {
		src = source.FileSource{}
	}
	return &Provider{Settings: s, Store: store, Displays: displays, Source: src, Logger: logger}
}

// =============================================================================
// Modules
// =============================================================================

// GetModules loads every module from path. A directory is scanned (not
// recursively) for files matching fileSpec, skipping the display file; an
// empty fileSpec uses the configured pattern. A regular file is loaded
// directly.
func (p *Provider) GetModules(path, fileSpec string) ([]*config.Module, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, err, "configuration path %s", path)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return config.Load(path, p.Displays)
	}

	if fileSpec == "" {
		fileSpec = p.Settings.FilePattern
	}
	files, err := config.Discover(path, fileSpec, false, p.Settings.DisplayFile)
	if err != nil {
		return nil, err
	}

	var modules []*config.Module
	seen := make(map[string]string)
	for _, f := range files {
		ms, err := config.Load(f, p.Displays)
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			if prev, ok := seen[m.Name]; ok {
				return nil, errors.New(errors.ErrCodeMalformedConfig,
					"module %q defined in both %s and %s", m.Name, prev, f)
			}
			seen[m.Name] = f
		}
		modules = append(modules, ms...)
	}
	p.Logger.Debug("loaded modules", "path", path, "files", len(files), "modules", len(modules))
	return modules, nil
}

// =============================================================================
// Rendering
// =============================================================================

// LoadModuleImages renders every enabled configuration of module. The
// first failure aborts the module and no partial map is returned.
func (p *Provider) LoadModuleImages(ctx context.Context, module *config.Module, opts Options) (Artifacts, error) {
	return p.render(ctx, module, module.Configurations, opts)
}

// LoadConfigurationImages renders one configuration of module.
func (p *Provider) LoadConfigurationImages(ctx context.Context, module *config.Module, name string, opts Options) (Artifacts, error) {
	cfg := module.Configuration(name)
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "module %s has no configuration %q", module.Name, name)
	}
	return p.render(ctx, module, []*config.Node{cfg}, opts)
}

// Lookup resolves a lookup key from an earlier render.
func (p *Provider) Lookup(key string) (*cache.Artifact, bool) {
	return p.Store.Lookup(key)
}

func (p *Provider) render(ctx context.Context, module *config.Module, cfgs []*config.Node, opts Options) (Artifacts, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = p.Logger
	}
	logger = logger.With("module", module.Name, "run", uuid.NewString()[:8])

	r := &run{
		p:        p,
		module:   module,
		settings: p.Settings.WithTokens(opts.Primary, opts.Fallback),
		opts:     opts,
		logger:   logger,
		out:      make(Artifacts),
	}
	r.loader = source.NewLoader(p.Source, r.settings.Variant, logger)

	hooks := observability.Render()
	start := time.Now()
	hooks.OnModuleStart(ctx, module.Name)
	logger.Debug("rendering module", "configurations", len(cfgs), "force", opts.Force, "selection", opts.Selection)

	err := r.configurations(ctx, cfgs)
	hooks.OnModuleComplete(ctx, module.Name, len(r.out), time.Since(start), err)
	if err != nil {
		logger.Error("module render failed", "err", err)
		return nil, err
	}
	logger.Info("rendered module", "artifacts", len(r.out), "duration", time.Since(start))
	return r.out, nil
}

// run holds the state of one module render. Loaded bitmaps are shared by
// every artifact of the module and filled incrementally, so a run is
// strictly sequential.
type run struct {
	p        *Provider
	module   *config.Module
	settings settings.Settings
	opts     Options
	logger   *log.Logger
	loader   *source.Loader
	images   compose.Images
	out      Artifacts
}

func (r *run) configurations(ctx context.Context, cfgs []*config.Node) error {
	r.images = make(compose.Images)
	salt := r.settings.Fingerprint()
	for _, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !cfg.IsEnabled() {
			r.logger.Debug("skipping disabled configuration", "configuration", cfg.Name)
			continue
		}

		own := fingerprint.Of(cfg)
		key := fingerprint.Key(r.module.Name, cfg.Name, own+salt)
		base, err := r.artifact(ctx, key, cfg, nil)
		if err != nil {
			return err
		}
		r.add(r.module.Name+"-"+cfg.Name, base)

		prefix := r.module.Name + "-" + cfg.Name + "-"
		subs := selection.ActiveChildren(cfg, r.opts.Selection)
		composites := make([]*cache.Artifact, len(subs))
		for i, sub := range subs {
			key := fingerprint.Key(r.module.Name, sub.Name, own+fingerprint.Composite(sub, r.opts.Selection)+salt)
			a, err := r.artifact(ctx, key, cfg, sub)
			if err != nil {
				return err
			}
			composites[i] = a
			r.add(prefix+sub.Name, a)
		}

		// Top-level keys are registered first so they are never shadowed
		// by a descendant alias. Every descendant, active or not, resolves
		// to the composite of its top-level sub.
		for i, sub := range subs {
			sub.Walk(func(n, _ *config.Node) bool {
				r.add(prefix+n.Name, composites[i])
				return true
			})
		}
	}
	return nil
}

// add records a lookup key. The first registration wins a name clash.
func (r *run) add(lookupKey string, a *cache.Artifact) {
	if _, ok := r.out[lookupKey]; ok {
		return
	}
	r.out[lookupKey] = a
	r.p.Store.Alias(r.module.Name, lookupKey, a)
}

func (r *run) artifact(ctx context.Context, key string, cfg, sub *config.Node) (*cache.Artifact, error) {
	render := func(ctx context.Context) (image.Image, error) {
		start := time.Now()
		base, err := r.load(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			if err := r.loadSubtree(ctx, sub); err != nil {
				return nil, err
			}
		}
		out := compose.Compose(base, cfg, sub, r.images, compose.Options{Ruler: r.settings.Ruler})
		observability.Render().OnCompose(ctx, key, len(compose.Plan(base, cfg, sub, r.images))+1, time.Since(start))
		return out, nil
	}

	a, err := r.p.Store.GetOrRender(ctx, r.module.Name, key, render, r.opts.Force)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("artifact ready", "key", key, "cached", a.Cached, "path", a.Path)
	return a, nil
}

func (r *run) load(ctx context.Context, n *config.Node) (*image.NRGBA, error) {
	if img, ok := r.images[n]; ok {
		return img, nil
	}
	img, err := r.loader.Load(ctx, n)
	if err != nil {
		return nil, err
	}
	r.images[n] = img
	return img, nil
}

// loadSubtree loads sub and every active descendant reachable through
// active ancestors.
func (r *run) loadSubtree(ctx context.Context, sub *config.Node) error {
	if _, err := r.load(ctx, sub); err != nil {
		return err
	}
	var err error
	sub.Walk(func(n, _ *config.Node) bool {
		if err != nil || !selection.IsActive(n, r.opts.Selection) {
			return false
		}
		_, err = r.load(ctx, n)
		return true
	})
	return err
}

// =============================================================================
// Rebuild
// =============================================================================

// RebuildAll re-renders every enabled module found under path, recursing
// into subdirectories. Cached artifacts are ignored and overwritten. Files
// are rendered in parallel; the first failure cancels the rest.
func (p *Provider) RebuildAll(ctx context.Context, path string, opts Options) (Artifacts, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	opts.Force = true

	files, err := config.Discover(path, p.Settings.FilePattern, true, p.Settings.DisplayFile)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("rebuilding", "path", path, "files", len(files))

	var (
		mu  sync.Mutex
		out = make(Artifacts)
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		g.Go(func() error {
			modules, err := config.Load(f, p.Displays)
			if err != nil {
				return err
			}
			for _, m := range modules {
				if !m.IsEnabled() {
					continue
				}
				arts, err := p.LoadModuleImages(ctx, m, opts)
				if err != nil {
					return err
				}
				mu.Lock()
				for k, a := range arts {
					if _, dup := out[k]; dup {
						p.Logger.Warn("duplicate artifact key", "key", k, "file", f)
					}
					out[k] = a
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
