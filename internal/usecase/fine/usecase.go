package fine

import (
	"context"
	"strings"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/client"
	"library-backend/internal/domain/fine"
	"library-backend/internal/domain/uow"
	"library-backend/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	repos uow.Repos
	uow   uow.UnitOfWork
	log   *zap.Logger
	now   func() time.Time
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repos: repos, uow: tx, log: log.Named("fines"), now: func() time.Time { return time.Now().UTC() }}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Create records a manual fine against a live client. Fines never touch loans
// or copy counts.
func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateFineInput) (*fine.Fine, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	var out *fine.Fine
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Clients.Get(ctx, strings.TrimSpace(in.ClientIdentification))
		if err != nil {
			return err
		}
		if c.IsDeleted() {
			return client.ErrNotFound
		}
		f, err := fine.New(id.NewID32(), c.Identification, c.FullName(), in.Amount, in.Reason, u.now())
		if err != nil {
			return err
		}
		f.LoanID = strings.TrimSpace(in.LoanID)
		if f.LoanID != "" {
			if _, err := r.Loans.Get(ctx, f.LoanID); err != nil {
				return err
			}
		}
		out = f
		return r.Fines.Save(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("fine created",
		zap.String("fine_id", out.ID),
		zap.String("client", out.ClientIdentification),
		zap.Float64("amount", out.Amount))
	return out, nil
}

func (u *Usecase) Pay(ctx context.Context, a actor.Actor, fineID string) (*fine.Fine, error) {
	return u.mutate(ctx, a, fineID, func(f *fine.Fine) error { return f.Pay(u.now()) })
}

func (u *Usecase) Disable(ctx context.Context, a actor.Actor, fineID string) (*fine.Fine, error) {
	return u.mutate(ctx, a, fineID, func(f *fine.Fine) error {
		f.Disable()
		return nil
	})
}

func (u *Usecase) Enable(ctx context.Context, a actor.Actor, fineID string) (*fine.Fine, error) {
	return u.mutate(ctx, a, fineID, func(f *fine.Fine) error {
		f.Enable()
		return nil
	})
}

func (u *Usecase) mutate(ctx context.Context, a actor.Actor, fineID string, fn func(f *fine.Fine) error) (*fine.Fine, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	var out *fine.Fine
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		f, err := r.Fines.Get(ctx, fineID)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
		out = f
		return r.Fines.Save(ctx, f)
	})
	return out, err
}

// List returns all fines to staff and a client's own enabled fines otherwise.
func (u *Usecase) List(ctx context.Context, a actor.Actor) ([]*fine.Fine, error) {
	if !a.IsStaff() && a.Role != actor.RoleClient {
		return nil, actor.ErrStaffOnly
	}
	fines, err := u.repos.Fines.List(ctx)
	if err != nil {
		return nil, err
	}
	if a.IsStaff() {
		return fines, nil
	}
	out := make([]*fine.Fine, 0, len(fines))
	for _, f := range fines {
		if f.VisibleTo(a.Identification) {
			out = append(out, f)
		}
	}
	return out, nil
}
