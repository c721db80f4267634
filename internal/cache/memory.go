// ABOUTME: Map-backed Cache for tests; never evicts.
// ABOUTME: Safe for concurrent use.
package cache

import "sync"

var _ Cache = (*MemoryCache)(nil)

type MemoryCache struct {
	cache map[interface{}]interface{}
	mutex sync.Mutex
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[interface{}]interface{}),
	}
}

func (mc *MemoryCache) Get(key interface{}) (interface{}, bool) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	val, ok := mc.cache[key]
	return val, ok
}

func (mc *MemoryCache) Set(key, value interface{}, _ int64) bool {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.cache[key] = value
	return true
}

func (mc *MemoryCache) Del(key interface{}) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	delete(mc.cache, key)
}

func (mc *MemoryCache) Clear() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.cache = make(map[interface{}]interface{})
}
