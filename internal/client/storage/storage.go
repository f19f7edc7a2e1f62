// Package storage provides the client's durable key-value storage, the
// equivalent of a browser's local storage. The session snapshot and the
// mock collections live here.
//
// Implementations:
//   - SQLite: a single-file database managed with goose migrations (default).
//   - Redis: a shared key space under a fixed prefix.
//   - Memory: process-local, for tests and throwaway sessions.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is a durable key-value store.
//
// Get returns (nil, nil) when the key is absent. Delete of an absent key
// is not an error. SetMany writes either every pair or none of them.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a Store implementation.
type Options struct {
	Driver    string
	DSN       string
	RedisAddr string
	RedisDB   int
	Prefix    string
}

// Open constructs the Store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, opts.DSN)
	case DriverRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisDB, opts.Prefix)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
