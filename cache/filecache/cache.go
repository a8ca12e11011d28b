// Package filecache implements a cache.
package filecache

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/imagine-anything/imagineanything-go/token"
)

// Cache holds cache client.
type Cache struct {
	filename string
	mutex    sync.Mutex
}

// New creates a new cache client.
func New(filename string) (*Cache, error) {
	return &Cache{filename: filename}, nil
}

// Get retrieves token from cache. A missing file means no token yet.
func (c *Cache) Get() (token.Token, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return tokenFromFile(c.filename)
}

func tokenFromFile(filename string) (token.Token, error) {
	buf, errRead := os.ReadFile(filename)
	if errRead != nil {
		if errors.Is(errRead, fs.ErrNotExist) {
			return token.Token{}, nil
		}
		return token.Token{}, errRead
	}
	return token.NewTokenFromJSON(buf)
}

// Put inserts token into cache.
func (c *Cache) Put(t token.Token) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return saveToken(t, c.filename)
}

func saveToken(t token.Token, filename string) error {
	out, errOpen := os.Create(filename)
	if errOpen != nil {
		return errOpen
	}
	defer out.Close()
	buf, errJSON := t.ExportJSON()
	if errJSON != nil {
		return errJSON
	}
	_, errWrite := out.Write(buf)
	return errWrite
}

// Clear resets the cache to the no-token state.
func (c *Cache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	errRemove := os.Remove(c.filename)
	if errRemove != nil && !errors.Is(errRemove, fs.ErrNotExist) {
		return errRemove
	}
	return nil
}
