// Package rediskv keeps records as plain Redis strings.
package rediskv

import (
	"context"
	"errors"
	"sort"
	"strings"

	"library-backend/internal/domain/record"

	"github.com/redis/go-redis/v9"
)

type Store struct{ rdb redis.Cmdable }

var _ record.Store = (*Store)(nil)

func NewStore(rdb redis.Cmdable) *Store { return &Store{rdb: rdb} }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, record.ErrNotFound
	}
	return b, err
}

// GetForUpdate outside a unit of work takes no lock.
func (s *Store) GetForUpdate(ctx context.Context, key string) ([]byte, error) {
	return s.Get(ctx, key)
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([]record.Entry, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, globEscaper.Replace(prefix)+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)
	// SCAN may return a key twice
	keys = compactSorted(keys)

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]record.Entry, 0, len(keys))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		out = append(out, record.Entry{Key: keys[i], Value: []byte(str)})
	}
	return out, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

func compactSorted(keys []string) []string {
	out := keys[:0]
	for i, k := range keys {
		if i > 0 && k == keys[i-1] {
			continue
		}
		out = append(out, k)
	}
	return out
}
