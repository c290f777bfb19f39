// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about module renders and artifact cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnModuleStart(ctx, module)
//	// ... render configurations ...
//	observability.Render().OnModuleComplete(ctx, module, artifacts, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the provider's render loop.
type RenderHooks interface {
	// Module events
	OnModuleStart(ctx context.Context, module string)
	OnModuleComplete(ctx context.Context, module string, artifacts int, duration time.Duration, err error)

	// OnSourceLoad records the decode of one node's source bitmap.
	OnSourceLoad(ctx context.Context, node, path string, duration time.Duration, err error)

	// OnCompose records the composition of one artifact.
	OnCompose(ctx context.Context, key string, layers int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from artifact cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, module, key string)

	// OnCacheMiss records a cache miss (or a forced regeneration).
	OnCacheMiss(ctx context.Context, module, key string, forced bool)

	// OnCacheSet records a successful artifact write.
	OnCacheSet(ctx context.Context, module, key string, size int)

	// OnCacheWriteError records an artifact that could not be persisted.
	OnCacheWriteError(ctx context.Context, module, key string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnModuleStart(context.Context, string) {}
func (NoopRenderHooks) OnModuleComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopRenderHooks) OnSourceLoad(context.Context, string, string, time.Duration, error) {}
func (NoopRenderHooks) OnCompose(context.Context, string, int, time.Duration)             {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string, string)                {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string, string, bool)         {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, string, int)           {}
func (NoopCacheHooks) OnCacheWriteError(context.Context, string, string, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any render.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
}
