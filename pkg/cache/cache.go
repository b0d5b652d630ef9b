// Package cache stores generated artifacts keyed by the hash of their inputs.
//
// Generation is deterministic, so an entry never goes stale; TTLs only bound
// storage growth. Backends:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: shared cache for several CLI users or server replicas
//   - [MongoCache]: shared cache in a MongoDB collection
//   - [NullCache]: caching disabled
//
// [Open] selects a backend from a URL.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/nocgen/pkg/errors"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Default entry lifetimes.
const (
	TTLNetwork   = 7 * 24 * time.Hour
	TTLSimConfig = 7 * 24 * time.Hour
	TTLArtifact  = 24 * time.Hour
)

// Open returns the cache named by url:
//
//	""                       file cache in dir
//	"none"                   caching disabled
//	"redis://host:6379/0"    Redis
//	"mongodb://host/db"      MongoDB (collection "nocgen_cache")
func Open(ctx context.Context, url, dir string) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch {
	case url == "" || url == "file":
		c, err = openFile(dir)
	case url == "none" || url == "off":
		c = NewNullCache()
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		c, err = openRedis(ctx, url)
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		c, err = openMongo(ctx, url)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported cache URL %q (use redis://, mongodb://, none or an empty value)", url)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func openFile(dir string) (Cache, error) {
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func openRedis(ctx context.Context, url string) (Cache, error) {
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func openMongo(ctx context.Context, url string) (Cache, error) {
	c, err := NewMongoCache(ctx, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}
