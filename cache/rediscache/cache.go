// Package rediscache implements a cache.
package rediscache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imagine-anything/imagineanything-go/token"
)

// Cache holds cache client.
type Cache struct {
	key         string
	redisClient *redis.Client
}

// New creates a new cache client.
// redisString = <host>:<port>:<password>:<key>
// redisString = localhost:6379::imagineanything-client
func New(redisString string) (*Cache, error) {
	fields := strings.SplitN(redisString, ":", 4)
	if len(fields) != 4 {
		return nil, fmt.Errorf("4 fields are required, but got: %d", len(fields))
	}
	host := fields[0]
	port := fields[1]
	password := fields[2]
	key := fields[3]
	c := Cache{
		redisClient: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", host, port),
			Password: password,
			DB:       0,
		}),
		key: key,
	}
	return &c, nil
}

// getKey generates a unique redis key for storing the token.
func (c *Cache) getKey() string {
	return "imagineanything-go:token:" + c.key
}

// Get retrieves token from cache. A missing key means no token yet.
func (c *Cache) Get() (token.Token, error) {

	var t token.Token

	cmdID := c.redisClient.Get(context.TODO(), c.getKey())
	errID := cmdID.Err()
	if errID == redis.Nil {
		return t, nil
	}
	if errID != nil {
		return t, errID
	}

	buf, _ := cmdID.Bytes()

	return token.NewTokenFromJSON(buf)
}

// Put inserts token into cache.
func (c *Cache) Put(t token.Token) error {

	buf, errJSON := t.ExportJSON()
	if errJSON != nil {
		return errJSON
	}

	expiration := time.Until(t.Deadline) + time.Minute // token remaining TTL + 1 minute

	errSet := c.redisClient.Set(context.TODO(), c.getKey(), buf, expiration)

	return errSet.Err()
}

// Clear resets the cache to the no-token state.
func (c *Cache) Clear() error {
	return c.redisClient.Del(context.TODO(), c.getKey()).Err()
}
