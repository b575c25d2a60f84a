package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"library-backend/internal/domain/record"
)

type decodeFunc[T any] func(key string, raw []byte) (*T, error)

func decodeJSON[T any](key string, raw []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &out, nil
}

// flagOn reads a boolean switch that older records may omit. Only an
// explicit false turns it off.
func flagOn(key string, raw []byte, field string) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	v, ok := fields[field]
	if !ok {
		return true, nil
	}
	var on *bool
	if err := json.Unmarshal(v, &on); err != nil {
		return false, fmt.Errorf("decode %s.%s: %w", key, field, err)
	}
	return on == nil || *on, nil
}

func load[T any](ctx context.Context, s record.Store, key string, lock bool, notFound error, dec decodeFunc[T]) (*T, error) {
	var (
		raw []byte
		err error
	)
	if lock {
		raw, err = s.GetForUpdate(ctx, key)
	} else {
		raw, err = s.Get(ctx, key)
	}
	if errors.Is(err, record.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return dec(key, raw)
}

func scan[T any](ctx context.Context, s record.Store, prefix string, dec decodeFunc[T]) ([]*T, error) {
	entries, err := s.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(entries))
	for _, e := range entries {
		v, err := dec(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func getJSON[T any](ctx context.Context, s record.Store, key string, lock bool, notFound error) (*T, error) {
	return load(ctx, s, key, lock, notFound, decodeJSON[T])
}

func scanJSON[T any](ctx context.Context, s record.Store, prefix string) ([]*T, error) {
	return scan(ctx, s, prefix, decodeJSON[T])
}

func putJSON(ctx context.Context, s record.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
