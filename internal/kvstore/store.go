// Package kvstore provides the key-value medium behind the watchlist and the
// price-history log.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Store is a minimal persistent key-value medium.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string // "file", "redis", "sqlite" or "memory"
	Path      string // file backend
	SQLite    string // sqlite backend
	RedisAddr string
	RedisPass string
	RedisDB   int
	Prefix    string // redis key prefix
}

// Open creates the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Path)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPass,
			DB:       opts.RedisDB,
			Prefix:   opts.Prefix,
		})
	case "sqlite":
		return NewSQLiteStore(opts.SQLite)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// GetJSON decodes the value stored at key into v. It reports false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
