package gormkv

import (
	"context"

	"library-backend/internal/adapter/repository/kv"
	"library-backend/internal/domain/book"
	"library-backend/internal/domain/loan"
	"library-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

var _ uow.UnitOfWork = (*GormUoW)(nil)

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(kv.NewRepos(NewStore(tx)))
	})
}

func (u *GormUoW) WithinBookTx(ctx context.Context, bookID string, fn func(r uow.Repos, b *book.Book) error) error {
	return u.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Books.GetForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		return fn(r, b)
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.WithinTx(ctx, func(r uow.Repos) error {
		// lock the loan row up-front; callers lock its book second
		l, err := r.Loans.GetForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
