package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Get(ctx context.Context, id string) (*Loan, error)
	// GetForUpdate locks the loan until the enclosing unit of work ends.
	GetForUpdate(ctx context.Context, id string) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	List(ctx context.Context) ([]*Loan, error)
	// CountOpenByBook counts loans on bookID that still hold a copy.
	CountOpenByBook(ctx context.Context, bookID string) (int, error)
}
