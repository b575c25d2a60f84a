// Package record defines the key/value persistence primitive every repository is built on.
package record

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("record not found")

type Entry struct {
	Key   string
	Value []byte
}

// Store addresses JSON documents by string key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// GetForUpdate reads key and holds it locked until the enclosing unit of work ends.
	GetForUpdate(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// ScanPrefix returns every entry whose key starts with prefix, ordered by key.
	ScanPrefix(ctx context.Context, prefix string) ([]Entry, error)
}
