package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/client"
	"library-backend/internal/domain/lifecycle"
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
	return &Usecase{repos: repos, uow: tx, log: log.Named("membership"), now: func() time.Time { return time.Now().UTC() }}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// List is staff only and includes soft-deleted clients.
func (u *Usecase) List(ctx context.Context, a actor.Actor) ([]*client.Client, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	return u.repos.Clients.List(ctx)
}

// Get lets a client read their own live record; staff read any.
func (u *Usecase) Get(ctx context.Context, a actor.Actor, identification string) (*client.Client, error) {
	if !a.IsStaff() && a.Identification != identification {
		return nil, actor.ErrStaffOnly
	}
	c, err := u.repos.Clients.Get(ctx, identification)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted() && !a.IsStaff() {
		return nil, client.ErrNotFound
	}
	return c, nil
}

func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateClientInput) (*client.Client, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	uid := strings.TrimSpace(in.ID)
	if uid == "" {
		uid = id.NewID32()
	}
	c, err := client.New(uid, in.Identification, in.Name, in.LastName, u.now())
	if err != nil {
		return nil, err
	}
	c.Email = strings.TrimSpace(in.Email)
	if !client.ValidBirthDate(in.BirthDate) {
		return nil, client.ErrInvalidBirthDate
	}
	c.BirthDate = in.BirthDate
	if in.Role != "" {
		role, ok := actor.ParseRole(in.Role)
		if !ok {
			return nil, client.ErrInvalidRole
		}
		c.Role = role
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		existing, err := r.Clients.Get(ctx, c.Identification)
		switch {
		case err == nil && !existing.IsDeleted():
			return client.ErrDuplicate
		case err != nil && !errors.Is(err, client.ErrNotFound):
			return err
		}
		return r.Clients.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("client created", zap.String("identification", c.Identification), zap.String("role", string(c.Role)))
	return c, nil
}

// Update changes profile fields. Clients may edit their own profile but not
// their role.
func (u *Usecase) Update(ctx context.Context, a actor.Actor, identification string, in UpdateClientInput) (*client.Client, error) {
	if !a.IsStaff() {
		if a.Identification != identification || in.Role != nil {
			return nil, actor.ErrStaffOnly
		}
	}
	var out *client.Client
	err := u.mutate(ctx, identification, func(c *client.Client) error {
		if c.IsDeleted() {
			return client.ErrNotFound
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return client.ErrMissingField
			}
			c.Name = strings.TrimSpace(*in.Name)
		}
		if in.LastName != nil {
			if strings.TrimSpace(*in.LastName) == "" {
				return client.ErrMissingField
			}
			c.LastName = strings.TrimSpace(*in.LastName)
		}
		if in.Email != nil {
			c.Email = strings.TrimSpace(*in.Email)
		}
		if in.BirthDate != nil {
			if !client.ValidBirthDate(*in.BirthDate) {
				return client.ErrInvalidBirthDate
			}
			c.BirthDate = *in.BirthDate
		}
		if in.Role != nil {
			role, ok := actor.ParseRole(*in.Role)
			if !ok {
				return client.ErrInvalidRole
			}
			c.Role = role
		}
		now := u.now()
		c.UpdatedAt = &now
		out = c
		return nil
	})
	return out, err
}

func (u *Usecase) Delete(ctx context.Context, a actor.Actor, identification string) error {
	if err := a.RequireStaff(); err != nil {
		return err
	}
	return u.mutate(ctx, identification, func(c *client.Client) error {
		return lifecycle.Delete(c, u.now(), client.ErrNotFound)
	})
}

// Restore leaves a live client untouched.
func (u *Usecase) Restore(ctx context.Context, a actor.Actor, identification string) (*client.Client, error) {
	return u.toggle(ctx, a, identification, func(c *client.Client) { lifecycle.Restore(c, u.now()) })
}

// Block and Unblock gate new loans only; open loans stay open.
func (u *Usecase) Block(ctx context.Context, a actor.Actor, identification string) (*client.Client, error) {
	out, err := u.toggle(ctx, a, identification, func(c *client.Client) { c.Block(u.now()) })
	if err == nil {
		u.log.Info("client blocked", zap.String("identification", identification))
	}
	return out, err
}

func (u *Usecase) Unblock(ctx context.Context, a actor.Actor, identification string) (*client.Client, error) {
	return u.toggle(ctx, a, identification, func(c *client.Client) { c.Unblock() })
}

func (u *Usecase) toggle(ctx context.Context, a actor.Actor, identification string, fn func(c *client.Client)) (*client.Client, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	var out *client.Client
	err := u.mutate(ctx, identification, func(c *client.Client) error {
		fn(c)
		out = c
		return nil
	})
	return out, err
}

func (u *Usecase) mutate(ctx context.Context, identification string, fn func(c *client.Client) error) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Clients.Get(ctx, identification)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		return r.Clients.Save(ctx, c)
	})
}
