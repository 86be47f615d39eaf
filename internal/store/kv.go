package store

import (
	"context"
	"fmt"
)

// KV is a flat string key/value store. Every piece of durable quiz state
// (xp, level, per-question meta) lives under a quiz-specific key.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Keys returns all keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend.
	Close() error
}

// Driver names a KV backend.
type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Driver Driver

	// Path is the SQLite database file (sqlite driver).
	Path string

	// Redis connection settings (redis driver).
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// OpenKV opens the backend named by opts.Driver.
func OpenKV(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		if err := EnsureDir(opts.Path); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		st, err := Open(opts.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case DriverRedis:
		r, err := OpenRedis(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
