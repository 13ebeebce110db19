// Package cache stores rendered artifacts keyed by a hash
// of the diagram text and the options that shaped the output.
//
// Parsing is deterministic, so identical text plus identical layout and
// render options always produce identical bytes. The CLI uses [FileCache]
// under the XDG cache directory, the server can share a [RedisCache], and
// [NullCache] disables caching entirely.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().ArtifactKey(cache.Hash(text), cache.ArtifactKeyOpts{Format: "svg"})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/erdsync/pkg/layout"
)

// DefaultTTL is how long artifacts stay cached when callers pass no TTL of
// their own.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the cached value and true, or nil and false on a miss.
	// Expired and corrupt entries are misses, not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}

// =============================================================================
// Keys
// =============================================================================

// ArtifactKeyOpts are the inputs besides the text that affect a rendered
// artifact.
type ArtifactKeyOpts struct {
	Format   string
	Layout   layout.Config
	Detailed bool
}

// Keyer builds cache keys.
type Keyer interface {
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "artifact:<sha>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the unscoped keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the document hash together with the render settings.
// Zero layout fields are normalized first so defaults and explicit defaults
// share a key.
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts.Format, opts.Layout.WithDefaults(), opts.Detailed)
}

var _ Keyer = DefaultKeyer{}
