// Package observability provides hooks for metrics and logging.
//
// Libraries in this module emit events through small hook interfaces instead
// of importing a metrics backend. Binaries register an implementation at
// startup (the HTTP server registers Prometheus collectors); everything else
// runs against the no-op defaults.
//
// # Usage
//
// Register hooks at application startup:
//
//	observability.SetSyncHooks(metrics)
//	observability.SetCacheHooks(metrics)
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	res := dsl.Parse(doc, opts)
//	observability.Sync().OnParse(ctx, "editor", len(res.Model.Nodes), len(res.Ignored), time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sync Hooks
// =============================================================================

// SyncHooks receives events from the text/diagram synchronization loop.
type SyncHooks interface {
	// OnParse records one parse pass. Source names the caller
	// ("editor", "pipeline", "lsp", ...).
	OnParse(ctx context.Context, source string, nodes, ignored int, duration time.Duration)

	// OnWriteBack records a position write-back. Applied is false when the
	// node id was unknown or its origin line no longer exists.
	OnWriteBack(ctx context.Context, nodeID string, applied bool)

	// OnRender records one render of a model to an output format.
	OnRender(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSyncHooks is a no-op implementation of SyncHooks.
type NoopSyncHooks struct{}

func (NoopSyncHooks) OnParse(context.Context, string, int, int, time.Duration) {}
func (NoopSyncHooks) OnWriteBack(context.Context, string, bool)                {}
func (NoopSyncHooks) OnRender(context.Context, string, time.Duration, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	syncHooks  SyncHooks  = NoopSyncHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetSyncHooks registers custom sync hooks. Nil is ignored.
func SetSyncHooks(h SyncHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		syncHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Sync returns the registered sync hooks.
func Sync() SyncHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return syncHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	syncHooks = NoopSyncHooks{}
	cacheHooks = NoopCacheHooks{}
}
