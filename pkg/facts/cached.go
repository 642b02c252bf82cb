package facts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/specdiff/pkg/cache"
	"github.com/matzehuels/specdiff/pkg/observability"
)

const cacheKeyType = "facts"

// CachedDeriver memoizes another deriver's results.
//
// Entries are keyed by the inner deriver's ID and the manifest digest, so a
// changed manifest or a different tool never reads stale facts. Cache
// failures are not fatal: the inner deriver is used instead.
type CachedDeriver struct {
	Inner Deriver
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration
}

// NewCachedDeriver wraps inner with c. A nil keyer selects the default.
func NewCachedDeriver(inner Deriver, c cache.Cache, keyer cache.Keyer) *CachedDeriver {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedDeriver{Inner: inner, Cache: c, Keyer: keyer, TTL: cache.TTLFacts}
}

// ID implements [Deriver].
func (d *CachedDeriver) ID() string { return d.Inner.ID() }

// Derive implements [Deriver].
func (d *CachedDeriver) Derive(ctx context.Context, cfg *Config) (Set, error) {
	if cfg == nil || cfg.Digest == "" {
		return d.Inner.Derive(ctx, cfg)
	}

	key := d.Keyer.FactsKey(d.Inner.ID(), cfg.Digest)
	hooks := observability.Cache()

	if data, hit, err := d.Cache.Get(ctx, key); err == nil && hit {
		var cached []Fact
		if err := json.Unmarshal(data, &cached); err == nil {
			hooks.OnCacheHit(ctx, cacheKeyType)
			return NewSet(cached...), nil
		}
		// Undecodable entry: fall through and overwrite it.
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	s, err := d.Inner.Derive(ctx, cfg)
	if err != nil {
		return Set{}, err
	}

	if data, err := json.Marshal(s.Facts()); err == nil {
		if err := d.Cache.Set(ctx, key, data, d.TTL); err == nil {
			hooks.OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return s, nil
}

var _ Deriver = (*CachedDeriver)(nil)
