package loanmock

import (
	"context"

	domain "library-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, l *domain.Loan) error
	GetFn             func(ctx context.Context, id string) (*domain.Loan, error)
	GetForUpdateFn    func(ctx context.Context, id string) (*domain.Loan, error)
	SaveFn            func(ctx context.Context, l *domain.Loan) error
	ListFn            func(ctx context.Context) ([]*domain.Loan, error)
	CountOpenByBookFn func(ctx context.Context, bookID string) (int, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}
func (m *Repo) Get(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, context.Canceled
}
func (m *Repo) GetForUpdate(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}
func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
func (m *Repo) List(ctx context.Context) ([]*domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}
func (m *Repo) CountOpenByBook(ctx context.Context, bookID string) (int, error) {
	if m.CountOpenByBookFn != nil {
		return m.CountOpenByBookFn(ctx, bookID)
	}
	return 0, nil
}
