// ABOUTME: Cache abstraction used by the state facade.
// ABOUTME: Backed by ristretto in production and by a plain map in tests.
package cache

type Cache interface {
	Get(key interface{}) (interface{}, bool)
	Set(key, value interface{}, cost int64) bool
	Del(key interface{})
	Clear()
}
