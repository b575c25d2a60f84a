package client

import "context"

type Repository interface {
	Get(ctx context.Context, identification string) (*Client, error)
	Save(ctx context.Context, c *Client) error
	List(ctx context.Context) ([]*Client, error)
}
