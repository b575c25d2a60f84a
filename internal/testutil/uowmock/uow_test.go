package uowmock

import (
	"context"
	"errors"
	"testing"

	"library-backend/internal/domain/book"
	"library-backend/internal/domain/loan"
	"library-backend/internal/domain/uow"
	"library-backend/internal/testutil/loanmock"
)

func TestUoW_UnstubbedMethodsFail(t *testing.T) {
	ctx := context.Background()
	m := New()
	calls := map[string]error{
		"WithinTx":     m.WithinTx(ctx, func(uow.Repos) error { return nil }),
		"WithinBookTx": m.WithinBookTx(ctx, "B1", func(uow.Repos, *book.Book) error { return nil }),
		"WithinLoanTx": m.WithinLoanTx(ctx, "L1", func(uow.Repos, *loan.Loan) error { return nil }),
	}
	for name, err := range calls {
		if !errors.Is(err, errUnimplemented) {
			t.Errorf("%s: want errUnimplemented, got %v", name, err)
		}
	}
}

func TestUoW_WithWithinTx(t *testing.T) {
	boom := errors.New("deadline")
	m := New().WithWithinTx(func(context.Context, func(uow.Repos) error) error { return boom })
	ran := false
	err := m.WithinTx(context.Background(), func(uow.Repos) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("stub not used: err=%v ran=%v", err, ran)
	}
}

func TestPassthrough(t *testing.T) {
	ctx := context.Background()
	locked := &loan.Loan{ID: "LN-7"}
	lockErr := errors.New("row gone")
	loans := &loanmock.Repo{
		GetForUpdateFn: func(_ context.Context, id string) (*loan.Loan, error) {
			if id != "LN-7" {
				return nil, lockErr
			}
			return locked, nil
		},
	}
	m := Passthrough(uow.Repos{Loans: loans})

	if err := m.WithinTx(ctx, func(r uow.Repos) error {
		if r.Loans != loans {
			t.Fatalf("repos not forwarded")
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	var got *loan.Loan
	if err := m.WithinLoanTx(ctx, "LN-7", func(_ uow.Repos, l *loan.Loan) error { got = l; return nil }); err != nil || got != locked {
		t.Fatalf("WithinLoanTx: got=%v err=%v", got, err)
	}

	err := m.WithinLoanTx(ctx, "LN-8", func(uow.Repos, *loan.Loan) error {
		t.Fatalf("body ran without a lock")
		return nil
	})
	if !errors.Is(err, lockErr) {
		t.Fatalf("want %v, got %v", lockErr, err)
	}
}
