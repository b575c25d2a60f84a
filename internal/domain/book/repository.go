package book

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Book, error)
	// GetForUpdate locks the book until the enclosing unit of work ends.
	GetForUpdate(ctx context.Context, id string) (*Book, error)
	Save(ctx context.Context, b *Book) error
	List(ctx context.Context) ([]*Book, error)
}
