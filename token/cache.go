package token

import (
	"sync"
)

// TokenCache defines a cache interface for storing token state.
// Get returns the zero Token when nothing is cached.
type TokenCache interface {
	Get() (Token, error)
	Put(t Token) error
	Clear() error
}

// memoryCache implements a memory cache.
type memoryCache struct {
	t     Token
	mutex sync.Mutex
}

// NewMemoryCache creates a process-memory cache owned by a single manager.
// Managers must not share token state, hence no package-level default.
func NewMemoryCache() TokenCache {
	return &memoryCache{}
}

// Get retrieves token from cache.
func (mc *memoryCache) Get() (Token, error) {
	mc.mutex.Lock()
	t := mc.t
	mc.mutex.Unlock()
	return t, nil
}

// Put inserts token into cache.
func (mc *memoryCache) Put(t Token) error {
	mc.mutex.Lock()
	mc.t = t
	mc.mutex.Unlock()
	return nil
}

// Clear resets the cache to the no-token state.
func (mc *memoryCache) Clear() error {
	mc.mutex.Lock()
	mc.t = Token{}
	mc.mutex.Unlock()
	return nil
}
