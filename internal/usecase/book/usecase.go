package book

import (
	"context"
	"errors"
	"strings"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/book"
	"library-backend/internal/domain/category"
	"library-backend/internal/domain/lifecycle"
	"library-backend/internal/domain/loan"
	"library-backend/internal/domain/uow"
	"library-backend/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

type Usecase struct {
	repos   uow.Repos
	uow     uow.UnitOfWork
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, log *zap.Logger, m *metrics.Metrics) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		repos:   repos,
		uow:     tx,
		log:     log.Named("catalog"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// List returns the catalog with AvailableCopies recomputed from the open
// loans. Only staff see soft-deleted books.
func (u *Usecase) List(ctx context.Context, a actor.Actor) ([]*book.Book, error) {
	books, err := u.repos.Books.List(ctx)
	if err != nil {
		return nil, err
	}
	loans, err := u.repos.Loans.List(ctx)
	if err != nil {
		return nil, err
	}
	genres, err := u.genreIndex(ctx)
	if err != nil {
		return nil, err
	}
	open := loan.OpenLoansByBook(loans)

	out := make([]*book.Book, 0, len(books))
	for _, b := range books {
		if b.IsDeleted() && !a.IsStaff() {
			continue
		}
		u.present(b, open[b.ID], genres)
		out = append(out, b)
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, a actor.Actor, id string) (*book.Book, error) {
	b, err := u.repos.Books.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.IsDeleted() && !a.IsStaff() {
		return nil, book.ErrNotFound
	}
	n, err := u.repos.Loans.CountOpenByBook(ctx, id)
	if err != nil {
		return nil, err
	}
	genres, err := u.genreIndex(ctx)
	if err != nil {
		return nil, err
	}
	u.present(b, n, genres)
	return b, nil
}

func (u *Usecase) present(b *book.Book, openLoans int, genres map[string]string) {
	if b.Legacy {
		b.Backfill(openLoans)
	} else {
		b.Recompute(openLoans)
	}
	if name, ok := genres[b.CategoryID]; ok {
		b.Genre = name
	}
}

// genreIndex maps live category ids to their current names.
func (u *Usecase) genreIndex(ctx context.Context) (map[string]string, error) {
	cats, err := u.repos.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(cats))
	for _, c := range cats {
		if !c.IsDeleted() {
			out[c.ID] = c.Name
		}
	}
	return out, nil
}

func checkCategory(ctx context.Context, r uow.Repos, id string) error {
	if id == "" {
		return nil
	}
	c, err := r.Categories.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDeleted() {
		return category.ErrNotFound
	}
	return nil
}

func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateBookInput) (*book.Book, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	now := u.now()
	b, err := book.New(in.ID, in.Title, in.Author, in.TotalCopies, now)
	if err != nil {
		return nil, err
	}
	b.Genre = strings.TrimSpace(in.Genre)
	b.CategoryID = strings.TrimSpace(in.CategoryID)
	b.PageCount = in.PageCount
	b.SetCoverImage(in.CoverImageURL)

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		existing, err := r.Books.GetForUpdate(ctx, b.ID)
		switch {
		case err == nil && !existing.IsDeleted():
			return book.ErrDuplicateID
		case err == nil:
			// replacing a soft-deleted record; its loans may still hold copies
			n, err := r.Loans.CountOpenByBook(ctx, b.ID)
			if err != nil {
				return err
			}
			b.Recompute(n)
		case !errors.Is(err, book.ErrNotFound):
			return err
		}
		if err := checkCategory(ctx, r, b.CategoryID); err != nil {
			return err
		}
		return r.Books.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	u.metrics.SetAvailable(b.ID, b.AvailableCopies)
	u.log.Info("book created", zap.String("book_id", b.ID), zap.Int("total_copies", b.TotalCopies))
	return b, nil
}

func (u *Usecase) Update(ctx context.Context, a actor.Actor, id string, in UpdateBookInput) (*book.Book, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	var out *book.Book
	err := u.uow.WithinBookTx(ctx, id, func(r uow.Repos, b *book.Book) error {
		if b.IsDeleted() {
			return book.ErrNotFound
		}
		if b.Legacy {
			n, err := r.Loans.CountOpenByBook(ctx, id)
			if err != nil {
				return err
			}
			b.Backfill(n)
		}
		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return book.ErrMissingField
			}
			b.Title = strings.TrimSpace(*in.Title)
		}
		if in.Author != nil {
			if strings.TrimSpace(*in.Author) == "" {
				return book.ErrMissingField
			}
			b.Author = strings.TrimSpace(*in.Author)
		}
		if in.Genre != nil {
			b.Genre = strings.TrimSpace(*in.Genre)
		}
		if in.CategoryID != nil {
			cid := strings.TrimSpace(*in.CategoryID)
			if err := checkCategory(ctx, r, cid); err != nil {
				return err
			}
			b.CategoryID = cid
		}
		if in.PageCount != nil {
			b.PageCount = in.PageCount
		}
		if in.CoverImageURL != nil {
			b.SetCoverImage(*in.CoverImageURL)
		}
		if in.TotalCopies != nil && *in.TotalCopies != b.TotalCopies {
			if err := b.SetTotalCopies(*in.TotalCopies); err != nil {
				return err
			}
		}
		now := u.now()
		b.UpdatedAt = &now
		out = b
		return r.Books.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	u.metrics.SetAvailable(out.ID, out.AvailableCopies)
	return out, nil
}

func (u *Usecase) Delete(ctx context.Context, a actor.Actor, id string) error {
	if err := a.RequireStaff(); err != nil {
		return err
	}
	return u.uow.WithinBookTx(ctx, id, func(r uow.Repos, b *book.Book) error {
		if err := lifecycle.Delete(b, u.now(), book.ErrNotFound); err != nil {
			return err
		}
		return r.Books.Save(ctx, b)
	})
}

// Restore is a no-op for a book that is not deleted.
func (u *Usecase) Restore(ctx context.Context, a actor.Actor, id string) (*book.Book, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	var out *book.Book
	err := u.uow.WithinBookTx(ctx, id, func(r uow.Repos, b *book.Book) error {
		out = b
		if !lifecycle.Restore(b, u.now()) {
			return nil
		}
		return r.Books.Save(ctx, b)
	})
	return out, err
}

// Reconcile recomputes every stored AvailableCopies from the open loans and
// persists the books that drifted, legacy documents included.
func (u *Usecase) Reconcile(ctx context.Context, a actor.Actor) (*ReconcileReport, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	books, err := u.repos.Books.List(ctx)
	if err != nil {
		return nil, err
	}
	report := &ReconcileReport{Drifted: []Drift{}}
	for _, listed := range books {
		var (
			drift   *Drift
			current int
		)
		err := u.uow.WithinBookTx(ctx, listed.ID, func(r uow.Repos, b *book.Book) error {
			n, err := r.Loans.CountOpenByBook(ctx, b.ID)
			if err != nil {
				return err
			}
			stored, legacy := b.AvailableCopies, b.Legacy
			if legacy {
				b.Backfill(n)
			} else {
				b.Recompute(n)
			}
			current = b.AvailableCopies
			if !legacy && stored == b.AvailableCopies {
				return nil
			}
			drift = &Drift{BookID: b.ID, Stored: stored, Recomputed: b.AvailableCopies, Legacy: legacy}
			return r.Books.Save(ctx, b)
		})
		if err != nil {
			return report, err
		}
		report.Checked++
		u.metrics.SetAvailable(listed.ID, current)
		if drift != nil {
			report.Drifted = append(report.Drifted, *drift)
			u.log.Warn("book availability drift repaired",
				zap.String("book_id", drift.BookID),
				zap.Int("stored", drift.Stored),
				zap.Int("recomputed", drift.Recomputed),
				zap.Bool("legacy", drift.Legacy))
		}
	}
	return report, nil
}
