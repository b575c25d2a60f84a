package category

import (
	"context"
	"strings"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/category"
	"library-backend/internal/domain/lifecycle"
	"library-backend/internal/domain/uow"
	"library-backend/pkg/id"
)

type Usecase struct {
	repos uow.Repos
	uow   uow.UnitOfWork
	now   func() time.Time
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork) *Usecase {
	return &Usecase{repos: repos, uow: tx, now: func() time.Time { return time.Now().UTC() }}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// List hides soft-deleted categories from everyone but staff.
func (u *Usecase) List(ctx context.Context, a actor.Actor) ([]*category.Category, error) {
	cats, err := u.repos.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if a.IsStaff() {
		return cats, nil
	}
	out := make([]*category.Category, 0, len(cats))
	for _, c := range cats {
		if !c.IsDeleted() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CategoryInput) (*category.Category, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	c, err := category.New(id.NewID32(), in.Name, in.Description, u.now())
	if err != nil {
		return nil, err
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Categories.LockName(ctx, c.Name); err != nil {
			return err
		}
		all, err := r.Categories.List(ctx)
		if err != nil {
			return err
		}
		if err := category.CheckUniqueName(all, c.Name, ""); err != nil {
			return err
		}
		return r.Categories.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update renames or redescribes a live category. Books reference it by id
// and pick up the new name on their next read.
func (u *Usecase) Update(ctx context.Context, a actor.Actor, categoryID string, in UpdateCategoryInput) (*category.Category, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	var out *category.Category
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var name string
		if in.Name != nil {
			if name = strings.TrimSpace(*in.Name); name == "" {
				return category.ErrMissingName
			}
			if err := r.Categories.LockName(ctx, name); err != nil {
				return err
			}
		}
		c, err := r.Categories.Get(ctx, categoryID)
		if err != nil {
			return err
		}
		if c.IsDeleted() {
			return category.ErrNotFound
		}
		if in.Name != nil {
			all, err := r.Categories.List(ctx)
			if err != nil {
				return err
			}
			if err := category.CheckUniqueName(all, name, c.ID); err != nil {
				return err
			}
			c.Name = name
		}
		if in.Description != nil {
			c.Description = strings.TrimSpace(*in.Description)
		}
		now := u.now()
		c.UpdatedAt = &now
		out = c
		return r.Categories.Save(ctx, c)
	})
	return out, err
}

func (u *Usecase) Delete(ctx context.Context, a actor.Actor, categoryID string) error {
	if err := a.RequireStaff(); err != nil {
		return err
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Categories.Get(ctx, categoryID)
		if err != nil {
			return err
		}
		if err := lifecycle.Delete(c, u.now(), category.ErrNotFound); err != nil {
			return err
		}
		return r.Categories.Save(ctx, c)
	})
}

// Restore fails with a conflict when a live category took the name meanwhile.
func (u *Usecase) Restore(ctx context.Context, a actor.Actor, categoryID string) (*category.Category, error) {
	if err := a.RequireStaff(); err != nil {
		return nil, err
	}
	var out *category.Category
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Categories.Get(ctx, categoryID)
		if err != nil {
			return err
		}
		out = c
		if !c.IsDeleted() {
			return nil
		}
		if err := r.Categories.LockName(ctx, c.Name); err != nil {
			return err
		}
		all, err := r.Categories.List(ctx)
		if err != nil {
			return err
		}
		if err := category.CheckUniqueName(all, c.Name, c.ID); err != nil {
			return err
		}
		lifecycle.Restore(c, u.now())
		return r.Categories.Save(ctx, c)
	})
	return out, err
}
