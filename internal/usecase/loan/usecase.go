package loan

import (
	"context"
	"strings"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/book"
	"library-backend/internal/domain/loan"
	"library-backend/internal/domain/uow"
	"library-backend/internal/infrastructure/metrics"
	"library-backend/pkg/id"

	"go.uber.org/zap"
)

var (
	ErrMissingClient = apperr.New(apperr.KindInvalidArgument, "client identification is required")
	ErrMissingBook   = apperr.New(apperr.KindInvalidArgument, "book id is required")
	ErrAnonymous     = apperr.New(apperr.KindForbidden, "authenticated caller required")
)

// Usecase is the only writer of a book's available copy count. Every
// mutation runs in one unit of work holding the book (or loan, then book) lock.
type Usecase struct {
	repos   uow.Repos
	uow     uow.UnitOfWork
	log     *zap.Logger
	metrics *metrics.Metrics
	cfg     Config
	now     func() time.Time
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, log *zap.Logger, m *metrics.Metrics, cfg Config) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.LoanPeriod <= 0 {
		cfg.LoanPeriod = DefaultLoanPeriod
	}
	if cfg.Reactivation == "" {
		cfg.Reactivation = ReactivationReject
	}
	return &Usecase{
		repos:   repos,
		uow:     tx,
		log:     log.Named("loans"),
		metrics: m,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateLoanInput) (out *CreateLoanOutput, err error) {
	defer func() { u.metrics.ObserveLoanOp("create", err) }()

	ident := strings.TrimSpace(in.ClientIdentification)
	switch a.Role {
	case actor.RoleClient:
		// clients only ever borrow for themselves
		ident = a.Identification
	case actor.RoleAdmin:
	default:
		return nil, ErrAnonymous
	}
	bookID := strings.TrimSpace(in.BookID)
	if ident == "" {
		return nil, ErrMissingClient
	}
	if bookID == "" {
		return nil, ErrMissingBook
	}

	var b *book.Book
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Clients.Get(ctx, ident)
		if err != nil {
			return err
		}
		if err := c.CanBorrow(); err != nil {
			return err
		}

		b, err = r.Books.GetForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if b.IsDeleted() {
			return book.ErrNotFound
		}
		if b.Legacy {
			if err := u.backfill(ctx, r, b); err != nil {
				return err
			}
			if err := r.Books.Save(ctx, b); err != nil {
				return err
			}
		}
		if b.AvailableCopies <= 0 {
			return book.ErrNoCopies
		}

		now := u.now()
		loanDate := now
		if in.LoanDate != nil {
			loanDate = in.LoanDate.UTC()
		}
		dueDate := now.Add(u.cfg.LoanPeriod)
		if in.DueDate != nil {
			dueDate = in.DueDate.UTC()
		}
		if err := loan.ValidateDates(loanDate, dueDate); err != nil {
			return err
		}

		l := &loan.Loan{
			ID:                   id.NewID32(),
			ClientIdentification: c.Identification,
			ClientName:           c.FullName(),
			BookID:               b.ID,
			BookTitle:            b.Title,
			LoanDate:             loanDate,
			DueDate:              dueDate,
			Active:               true,
			CreatedAt:            now,
		}
		l.Receipt = loan.Receipt{
			Number:               id.ReceiptNumber(now),
			IssuedAt:             now,
			ClientName:           c.FullName(),
			ClientIdentification: c.Identification,
			BookTitle:            b.Title,
			BookAuthor:           b.Author,
			BookID:               b.ID,
			LoanID:               l.ID,
			DueDate:              dueDate,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := b.ReserveCopy(); err != nil {
			return err
		}
		if err := r.Books.Save(ctx, b); err != nil {
			return err
		}
		out = &CreateLoanOutput{Loan: toDTO(l), Receipt: l.Receipt}
		return nil
	})
	if err != nil {
		u.logFailure("create", err, zap.String("book_id", bookID), zap.String("client", ident))
		return nil, err
	}
	u.metrics.SetAvailable(b.ID, b.AvailableCopies)
	u.log.Info("loan created",
		zap.String("loan_id", out.Loan.ID),
		zap.String("book_id", b.ID),
		zap.String("client", ident),
		zap.Int("available_copies", b.AvailableCopies))
	return out, nil
}

// backfill normalizes a legacy book from the loans as currently stored.
func (u *Usecase) backfill(ctx context.Context, r uow.Repos, b *book.Book) error {
	n, err := r.Loans.CountOpenByBook(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Backfill(n)
	u.log.Info("legacy book backfilled",
		zap.String("book_id", b.ID),
		zap.Int("total_copies", b.TotalCopies),
		zap.Int("available_copies", b.AvailableCopies))
	return nil
}

// lockBook locks the loan's book and backfills it before the loan changes.
func (u *Usecase) lockBook(ctx context.Context, r uow.Repos, bookID string) (*book.Book, error) {
	b, err := r.Books.GetForUpdate(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b.Legacy {
		if err := u.backfill(ctx, r, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (u *Usecase) Return(ctx context.Context, a actor.Actor, loanID string) (out *LoanDTO, err error) {
	defer func() { u.metrics.ObserveLoanOp("return", err) }()
	if a.Role != actor.RoleAdmin && a.Role != actor.RoleClient {
		return nil, ErrAnonymous
	}

	var b *book.Book
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !a.IsStaff() && l.ClientIdentification != a.Identification {
			return loan.ErrNotOwner
		}
		if l.Returned {
			return loan.ErrAlreadyReturned
		}
		var err error
		if b, err = u.lockBook(ctx, r, l.BookID); err != nil {
			return err
		}
		if err := l.Return(u.now()); err != nil {
			return err
		}
		b.ReleaseCopy()
		if err := r.Books.Save(ctx, b); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	if err != nil {
		u.logFailure("return", err, zap.String("loan_id", loanID))
		return nil, err
	}
	u.metrics.SetAvailable(b.ID, b.AvailableCopies)
	u.log.Info("loan returned", zap.String("loan_id", loanID), zap.String("book_id", b.ID))
	return out, nil
}

// Deactivate voids a loan. An already inactive loan is left untouched.
func (u *Usecase) Deactivate(ctx context.Context, a actor.Actor, loanID string) (out *LoanDTO, err error) {
	defer func() { u.metrics.ObserveLoanOp("deactivate", err) }()
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}

	var b *book.Book
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		out = toDTO(l)
		if !l.Active {
			return nil
		}
		if l.HoldsCopy() {
			var err error
			if b, err = u.lockBook(ctx, r, l.BookID); err != nil {
				return err
			}
		}
		if l.Deactivate(u.now()) {
			b.ReleaseCopy()
			if err := r.Books.Save(ctx, b); err != nil {
				return err
			}
		}
		out = toDTO(l)
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		u.logFailure("deactivate", err, zap.String("loan_id", loanID))
		return nil, err
	}
	if b != nil {
		u.metrics.SetAvailable(b.ID, b.AvailableCopies)
	}
	u.log.Info("loan deactivated", zap.String("loan_id", loanID), zap.Bool("released_copy", b != nil))
	return out, nil
}

// Reactivate restores a deactivated loan to its previous state. Going back
// to Open needs a free copy unless the oversubscribe policy is configured.
func (u *Usecase) Reactivate(ctx context.Context, a actor.Actor, loanID string) (out *LoanDTO, err error) {
	defer func() { u.metrics.ObserveLoanOp("reactivate", err) }()
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}

	var b *book.Book
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		out = toDTO(l)
		if l.Active {
			return nil
		}
		if !l.Returned {
			var err error
			if b, err = u.lockBook(ctx, r, l.BookID); err != nil {
				return err
			}
		}
		if l.Reactivate() {
			if err := u.reserveForReactivation(b, l); err != nil {
				return err
			}
			if err := r.Books.Save(ctx, b); err != nil {
				return err
			}
		}
		out = toDTO(l)
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		u.logFailure("reactivate", err, zap.String("loan_id", loanID))
		return nil, err
	}
	if b != nil {
		u.metrics.SetAvailable(b.ID, b.AvailableCopies)
	}
	u.log.Info("loan reactivated", zap.String("loan_id", loanID), zap.Bool("reserved_copy", b != nil))
	return out, nil
}

func (u *Usecase) reserveForReactivation(b *book.Book, l *loan.Loan) error {
	if u.cfg.Reactivation != ReactivationOversubscribe {
		return b.ReserveCopy()
	}
	if b.ForceReserveCopy() {
		u.log.Warn("book oversubscribed by reactivation",
			zap.String("book_id", b.ID),
			zap.String("loan_id", l.ID),
			zap.Int("total_copies", b.TotalCopies))
	}
	return nil
}

// Get hides other clients' loans and deactivated loans from client callers.
func (u *Usecase) Get(ctx context.Context, a actor.Actor, loanID string) (*LoanDTO, error) {
	l, err := u.repos.Loans.Get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !visible(a, l) {
		return nil, loan.ErrNotFound
	}
	return toDTO(l), nil
}

// List returns every loan to staff, and to a client only their own active ones.
func (u *Usecase) List(ctx context.Context, a actor.Actor) ([]*LoanDTO, error) {
	if a.Role != actor.RoleAdmin && a.Role != actor.RoleClient {
		return nil, ErrAnonymous
	}
	loans, err := u.repos.Loans.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*LoanDTO, 0, len(loans))
	for _, l := range loans {
		if visible(a, l) {
			out = append(out, toDTO(l))
		}
	}
	return out, nil
}

func visible(a actor.Actor, l *loan.Loan) bool {
	if a.IsStaff() {
		return true
	}
	return a.Role == actor.RoleClient && l.Active && l.ClientIdentification == a.Identification
}

// logFailure logs request-level failures at info and everything else at
// error; partial failures need manual reconciliation.
func (u *Usecase) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	switch {
	case apperr.KindOf(err) == apperr.KindPartialFailure:
		u.log.Error("loan operation partially applied, run reconcile", fields...)
	case apperr.IsDomain(err):
		u.log.Info("loan operation rejected", fields...)
	default:
		u.log.Error("loan operation failed", fields...)
	}
}
