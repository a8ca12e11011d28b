// Package cache provides cache implementations.
package cache

import (
	"fmt"
	"strings"

	"github.com/imagine-anything/imagineanything-go/cache/errorcache"
	"github.com/imagine-anything/imagineanything-go/cache/filecache"
	"github.com/imagine-anything/imagineanything-go/cache/rediscache"
	"github.com/imagine-anything/imagineanything-go/token"
)

// New creates cache from string.
//
//	""             in-process memory cache (the default)
//	"error"        cache that always errors, for tests
//	"file:<path>"  token state persisted to a file
//	"redis:<host>:<port>:<password>:<key>"  shared redis cache
func New(s string) (token.TokenCache, error) {
	switch {
	case s == "":
		return token.NewMemoryCache(), nil
	case s == "error":
		return errorcache.New()
	case strings.HasPrefix(s, "file:"):
		return filecache.New(strings.TrimPrefix(s, "file:"))
	case strings.HasPrefix(s, "redis:"):
		return rediscache.New(strings.TrimPrefix(s, "redis:"))
	}
	return nil, fmt.Errorf("unknown cache: %s", s)
}
