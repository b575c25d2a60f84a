package uow

import (
	"context"

	"library-backend/internal/domain/book"
	"library-backend/internal/domain/category"
	"library-backend/internal/domain/client"
	"library-backend/internal/domain/fine"
	"library-backend/internal/domain/loan"
)

// Repos are bound to the running unit of work.
type Repos struct {
	Books      book.Repository
	Clients    client.Repository
	Loans      loan.Repository
	Fines      fine.Repository
	Categories category.Repository
}

// UnitOfWork runs fn so that every write inside it lands together or not at
// all. Locks taken through GetForUpdate are held until fn returns.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinBookTx locks the book first, then passes it in.
	WithinBookTx(ctx context.Context, bookID string, fn func(r Repos, b *book.Book) error) error
	// WithinLoanTx locks the loan first, then passes it in. Callers that also
	// touch the book lock it second.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
