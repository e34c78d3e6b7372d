// Package photocache caches directory photo bytes so repeated map renders do
// not re-fetch the same images from the provider. Two backends exist: an
// in-process LRU for single-node deployments and a SQLite store that
// survives restarts.
package photocache

import (
	"context"
	"time"
)

// DefaultTTL matches the public cache lifetime advertised to browsers.
const DefaultTTL = 24 * time.Hour

// Entry is one cached photo: raw bytes plus the provider content type.
type Entry struct {
	Data        []byte
	ContentType string
}

// Cache stores photo bytes keyed by photo reference and requested width.
// Get returns (nil, false) on miss or expiration; a miss is not an error.
type Cache interface {
	Get(ctx context.Context, reference string, maxWidth int) (*Entry, bool)
	Put(ctx context.Context, reference string, maxWidth int, e Entry)
	Close() error
}

// Stats contains cache performance counters.
type Stats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}
