package kv

import (
	"context"

	"library-backend/internal/domain/fine"
	"library-backend/internal/domain/record"
)

type FineRepository struct{ s record.Store }

func NewFineRepository(s record.Store) *FineRepository { return &FineRepository{s: s} }

// decodeFine treats a fine without the enabled switch as enabled.
func decodeFine(key string, raw []byte) (*fine.Fine, error) {
	f, err := decodeJSON[fine.Fine](key, raw)
	if err != nil {
		return nil, err
	}
	if f.Enabled, err = flagOn(key, raw, "enabled"); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FineRepository) Get(ctx context.Context, id string) (*fine.Fine, error) {
	return load(ctx, r.s, fine.Key(id), false, fine.ErrNotFound, decodeFine)
}

func (r *FineRepository) Save(ctx context.Context, f *fine.Fine) error {
	return putJSON(ctx, r.s, fine.Key(f.ID), f)
}

func (r *FineRepository) List(ctx context.Context) ([]*fine.Fine, error) {
	return scan(ctx, r.s, fine.KeyPrefix, decodeFine)
}
