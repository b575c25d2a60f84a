package category

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Category, error)
	Save(ctx context.Context, c *Category) error
	List(ctx context.Context) ([]*Category, error)
	// LockName holds name for the rest of the unit of work so two writers
	// cannot both pass the uniqueness check.
	LockName(ctx context.Context, name string) error
}
