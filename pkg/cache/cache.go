// Package cache provides pluggable storage for simplified snapshots keyed
// by generation and content hash, so a pipeline run can skip
// re-simplifying a tree sequence it has already produced. File, Redis,
// and null backends share the Cache interface; key construction is
// delegated to a Keyer so callers can scope keys per run without the
// backends knowing about it.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with TTL-based expiry. All
// methods are safe for concurrent use.
type Cache interface {
	// Get retrieves the value stored under key. A miss is reported via
	// hit=false with a nil error, never as an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key, if present. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache (file handles,
	// network connections).
	Close() error
}

// Keyer builds cache keys for the snapshot artifacts the simplification
// pipeline produces.
type Keyer interface {
	// SnapshotKey addresses the encoded Tables produced by simplifying up
	// to generation, given a content hash of the inputs that produced it
	// (e.g. Hash of the pre-simplification edge records). Two runs with
	// identical inputs at the same generation collide on this key by
	// design, so a cache hit means "already computed," not "already seen
	// this request."
	SnapshotKey(generation int64, contentHash string) string

	// StatsKey addresses the summary statistics computed over a snapshot
	// already addressed by snapshotKey.
	StatsKey(snapshotKey string) string
}

// DefaultKeyer is the unscoped Keyer: every caller shares one namespace.
type DefaultKeyer struct{}

// NewDefaultKeyer creates an unscoped Keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey hashes the generation and content hash together so that
// distinct inputs at the same generation never collide.
func (k *DefaultKeyer) SnapshotKey(generation int64, contentHash string) string {
	return hashKey("snapshot", generation, contentHash)
}

// StatsKey derives a stats key from an existing snapshot key.
func (k *DefaultKeyer) StatsKey(snapshotKey string) string {
	return hashKey("stats", snapshotKey)
}
