package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share one
// backend without key collisions.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "specdiff:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FactsKey generates a prefixed key for fact-set caching.
func (k *ScopedKeyer) FactsKey(deriver, digest string) string {
	return k.prefix + k.inner.FactsKey(deriver, digest)
}
