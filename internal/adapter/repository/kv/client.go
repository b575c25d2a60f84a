package kv

import (
	"context"

	"library-backend/internal/domain/client"
	"library-backend/internal/domain/record"
)

type ClientRepository struct{ s record.Store }

func NewClientRepository(s record.Store) *ClientRepository { return &ClientRepository{s: s} }

func (r *ClientRepository) Get(ctx context.Context, identification string) (*client.Client, error) {
	return getJSON[client.Client](ctx, r.s, client.Key(identification), false, client.ErrNotFound)
}

func (r *ClientRepository) Save(ctx context.Context, c *client.Client) error {
	return putJSON(ctx, r.s, client.Key(c.Identification), c)
}

func (r *ClientRepository) List(ctx context.Context) ([]*client.Client, error) {
	return scanJSON[client.Client](ctx, r.s, client.KeyPrefix)
}
