// Package cache provides block-level LRU caching for blob reads.
//
// Remote stores pay a round trip per read; the caching blob store splits
// blobs into fixed-size blocks and keeps recently used blocks in a
// BlockCache. The cache integrates with resource.Controller so cached
// blocks count against the process-wide memory limit.
package cache

import (
	"context"
)

// CacheKind separates key spaces so invalidation can target one class of
// entries.
type CacheKind uint8

const (
	CacheKindUnknown  CacheKind = iota
	CacheKindBlob               // blob store blocks
	CacheKindManifest           // decoded manifest documents
)

// CacheKey identifies one cached block. Keys must be stable across
// processes: the blob name plus a block index.
type CacheKey struct {
	Kind CacheKind
	// Path is the blob name the block belongs to.
	Path string
	// Offset is a logical block identifier (block index within the blob).
	Offset uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
// Implementations must be safe for concurrent use.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may copy or retain; caller must
	// treat b as immutable.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases any resources.
	Close() error
	// Stats returns hit/miss counters.
	Stats() (hits, misses int64)
}
