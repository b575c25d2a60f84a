package fine

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Fine, error)
	Save(ctx context.Context, f *Fine) error
	List(ctx context.Context) ([]*Fine, error)
}
