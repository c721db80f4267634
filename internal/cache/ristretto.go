// ABOUTME: Ristretto-backed Cache implementation.
// ABOUTME: Set waits for the write buffer so a following Get sees the value.
package cache

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
)

var _ Cache = (*RistrettoCache)(nil)

type RistrettoCache struct {
	mainCache *ristretto.Cache
}

func NewRistrettoCache() (*RistrettoCache, error) {
	mainCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,     // number of keys to track frequency of (100k)
		MaxCost:     1 << 26, // maximum cost of cache (~64M)
		BufferItems: 64,      // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %s", err)
	}

	return &RistrettoCache{
		mainCache: mainCache,
	}, nil
}

func (rc *RistrettoCache) Get(key interface{}) (interface{}, bool) {
	return rc.mainCache.Get(key)
}

func (rc *RistrettoCache) Set(key, value interface{}, cost int64) bool {
	ok := rc.mainCache.Set(key, value, cost)
	rc.mainCache.Wait()
	return ok
}

func (rc *RistrettoCache) Del(key interface{}) {
	rc.mainCache.Del(key)
}

func (rc *RistrettoCache) Clear() {
	rc.mainCache.Clear()
}

// Close stops the cache's background goroutines.
func (rc *RistrettoCache) Close() {
	rc.mainCache.Close()
}
