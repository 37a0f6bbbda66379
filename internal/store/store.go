// Package store persists opaque snapshot blobs under string keys.
//
// Three backends are available: a directory of JSON files, a SQLite
// database and a Redis server. Each write replaces the whole value.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Store is a key/value blob store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value for key.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver string
	// Path is the directory for the file driver and the database file
	// for the sqlite driver.
	Path string
	// RedisAddr, RedisPassword and RedisDB configure the redis driver.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// RedisPrefix namespaces keys in Redis.
	RedisPrefix string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverFile:
		return NewFileStore(opts.Path)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.Path)
	case DriverRedis:
		return OpenRedis(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown storage driver %q, must be one of: file, sqlite, redis", opts.Driver)
	}
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is empty")
	}
	return nil
}
