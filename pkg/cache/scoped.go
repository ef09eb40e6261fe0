package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation. This
// is useful when multiple simulation runs share one backing cache (e.g. a
// shared Redis instance) but must not see each other's snapshots.
//
// Example usage:
//
//	// Run-specific keys
//	runKeyer := NewScopedKeyer(NewDefaultKeyer(), "run:7f3a:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
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

// SnapshotKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) SnapshotKey(generation int64, contentHash string) string {
	return k.prefix + k.inner.SnapshotKey(generation, contentHash)
}

// StatsKey generates a prefixed key for stats caching.
func (k *ScopedKeyer) StatsKey(snapshotKey string) string {
	return k.prefix + k.inner.StatsKey(snapshotKey)
}
