// Package errorcache implements a cache that always fails, forcing the
// manager to hit the token endpoint on every call. Test tool.
package errorcache

import (
	"errors"

	"github.com/imagine-anything/imagineanything-go/token"
)

// Cache holds cache client.
type Cache struct {
}

// New creates a new cache client.
func New() (*Cache, error) {
	return &Cache{}, nil
}

var errAlways = errors.New("errorcache error always")

// Get retrieves token from cache.
func (c *Cache) Get() (token.Token, error) {
	return token.Token{}, errAlways
}

// Put inserts token into cache.
func (c *Cache) Put(_ token.Token) error {
	return errAlways
}

// Clear resets the cache to the no-token state.
func (c *Cache) Clear() error {
	return errAlways
}
