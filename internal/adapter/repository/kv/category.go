package kv

import (
	"context"
	"errors"

	"library-backend/internal/domain/category"
	"library-backend/internal/domain/record"
)

type CategoryRepository struct{ s record.Store }

func NewCategoryRepository(s record.Store) *CategoryRepository {
	return &CategoryRepository{s: s}
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (*category.Category, error) {
	return getJSON[category.Category](ctx, r.s, category.Key(id), false, category.ErrNotFound)
}

func (r *CategoryRepository) Save(ctx context.Context, c *category.Category) error {
	return putJSON(ctx, r.s, category.Key(c.ID), c)
}

func (r *CategoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	return scanJSON[category.Category](ctx, r.s, category.KeyPrefix)
}

// LockName locks the name's marker record, creating it first if needed so SQL
// backends have a row to hold.
func (r *CategoryRepository) LockName(ctx context.Context, name string) error {
	key := category.NameLockKey(name)
	_, err := r.s.GetForUpdate(ctx, key)
	if !errors.Is(err, record.ErrNotFound) {
		return err
	}
	if err := r.s.Set(ctx, key, []byte(`{}`)); err != nil {
		return err
	}
	_, err = r.s.GetForUpdate(ctx, key)
	return err
}
