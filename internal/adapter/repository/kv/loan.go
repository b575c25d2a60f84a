package kv

import (
	"context"

	"library-backend/internal/domain/loan"
	"library-backend/internal/domain/record"
)

type LoanRepository struct{ s record.Store }

func NewLoanRepository(s record.Store) *LoanRepository { return &LoanRepository{s: s} }

// decodeLoan treats a loan written before deactivation existed as active.
func decodeLoan(key string, raw []byte) (*loan.Loan, error) {
	l, err := decodeJSON[loan.Loan](key, raw)
	if err != nil {
		return nil, err
	}
	if l.Active, err = flagOn(key, raw, "active"); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	return putJSON(ctx, r.s, loan.Key(l.ID), l)
}

func (r *LoanRepository) Get(ctx context.Context, id string) (*loan.Loan, error) {
	return load(ctx, r.s, loan.Key(id), false, loan.ErrNotFound, decodeLoan)
}

func (r *LoanRepository) GetForUpdate(ctx context.Context, id string) (*loan.Loan, error) {
	return load(ctx, r.s, loan.Key(id), true, loan.ErrNotFound, decodeLoan)
}

func (r *LoanRepository) Save(ctx context.Context, l *loan.Loan) error {
	return putJSON(ctx, r.s, loan.Key(l.ID), l)
}

func (r *LoanRepository) List(ctx context.Context) ([]*loan.Loan, error) {
	return scan(ctx, r.s, loan.KeyPrefix, decodeLoan)
}

func (r *LoanRepository) CountOpenByBook(ctx context.Context, bookID string) (int, error) {
	loans, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return loan.OpenLoansByBook(loans)[bookID], nil
}
