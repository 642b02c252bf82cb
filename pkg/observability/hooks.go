// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through hook interfaces; the binary decides what,
// if anything, receives them. The defaults are no-ops, so library code
// never depends on a particular backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	observability.SetBatchHooks(observability.NewLogHooks(logger))
//
// Libraries call hooks to emit events:
//
//	observability.Batch().OnCorpusStart(ctx, dir, len(files))
//	// ... compare ...
//	observability.Batch().OnCorpusComplete(ctx, dir, comparisons, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Batch Hooks
// =============================================================================

// BatchHooks receives events from corpus comparison runs.
type BatchHooks interface {
	// Corpus events
	OnCorpusStart(ctx context.Context, dir string, manifests int)
	OnCorpusComplete(ctx context.Context, dir string, comparisons int, duration time.Duration, err error)

	// OnManifestSkipped records a manifest excluded from comparison.
	OnManifestSkipped(ctx context.Context, path string, reason error)

	// OnFactsDerived records one fact derivation.
	OnFactsDerived(ctx context.Context, manifest string, facts int, duration time.Duration, err error)

	// OnPairCompared records one pairwise comparison.
	OnPairCompared(ctx context.Context, key string, duration time.Duration)
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

// NoopBatchHooks is a no-op implementation of BatchHooks.
type NoopBatchHooks struct{}

func (NoopBatchHooks) OnCorpusStart(context.Context, string, int) {}
func (NoopBatchHooks) OnCorpusComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopBatchHooks) OnManifestSkipped(context.Context, string, error)                    {}
func (NoopBatchHooks) OnFactsDerived(context.Context, string, int, time.Duration, error) {}
func (NoopBatchHooks) OnPairCompared(context.Context, string, time.Duration)              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	batchHooks BatchHooks = NoopBatchHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetBatchHooks registers custom batch hooks.
// This should be called once at application startup before any run.
func SetBatchHooks(h BatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		batchHooks = h
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

// Batch returns the registered batch hooks.
func Batch() BatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return batchHooks
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
	batchHooks = NoopBatchHooks{}
	cacheHooks = NoopCacheHooks{}
}
