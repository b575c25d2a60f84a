package rediskv

import (
	"context"
	"errors"
	"time"

	"library-backend/internal/adapter/repository/kv"
	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/book"
	"library-backend/internal/domain/loan"
	"library-backend/internal/domain/record"
	"library-backend/internal/domain/uow"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockPrefix      = "lock:"
	defaultLockTTL  = 30 * time.Second
	defaultLockWait = 5 * time.Second
	lockRetry       = 10 * time.Millisecond
)

// releaseScript deletes a lock only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var ErrLockTimeout = apperr.New(apperr.KindConflict, "record is busy, try again")

// UoW gives Redis units of work per-key SETNX locks and a write journal.
// Writes go straight to Redis; when fn fails after writing, the journal is
// replayed backwards to restore the previous values. If that replay fails
// the error is reported as a PartialFailure listing the touched keys.
type UoW struct {
	rdb      *redis.Client
	log      *zap.Logger
	LockTTL  time.Duration
	LockWait time.Duration
}

var _ uow.UnitOfWork = (*UoW)(nil)

func NewUoW(rdb *redis.Client, log *zap.Logger) *UoW {
	return &UoW{rdb: rdb, log: log, LockTTL: defaultLockTTL, LockWait: defaultLockWait}
}

type journalEntry struct {
	key     string
	prev    []byte
	existed bool
}

// txStore is the record.Store seen by repositories inside one unit of work.
type txStore struct {
	*Store
	u       *UoW
	token   string
	held    map[string]bool
	journal []journalEntry
	seen    map[string]bool
}

func (t *txStore) GetForUpdate(ctx context.Context, key string) ([]byte, error) {
	if err := t.lock(ctx, key); err != nil {
		return nil, err
	}
	return t.Store.Get(ctx, key)
}

func (t *txStore) Set(ctx context.Context, key string, value []byte) error {
	if err := t.remember(ctx, key); err != nil {
		return err
	}
	return t.Store.Set(ctx, key, value)
}

func (t *txStore) Delete(ctx context.Context, key string) error {
	if err := t.remember(ctx, key); err != nil {
		return err
	}
	return t.Store.Delete(ctx, key)
}

// remember journals the value key had before its first write in this unit.
func (t *txStore) remember(ctx context.Context, key string) error {
	if t.seen[key] {
		return nil
	}
	prev, err := t.Store.Get(ctx, key)
	existed := true
	if errors.Is(err, record.ErrNotFound) {
		existed, err = false, nil
	}
	if err != nil {
		return err
	}
	t.seen[key] = true
	t.journal = append(t.journal, journalEntry{key: key, prev: prev, existed: existed})
	return nil
}

func (t *txStore) lock(ctx context.Context, key string) error {
	if t.held[key] {
		return nil
	}
	deadline := time.Now().Add(t.u.LockWait)
	for {
		ok, err := t.u.rdb.SetNX(ctx, lockPrefix+key, t.token, t.u.LockTTL).Result()
		if err != nil {
			return err
		}
		if ok {
			t.held[key] = true
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

func (t *txStore) unlockAll(ctx context.Context) {
	for key := range t.held {
		if err := releaseScript.Run(ctx, t.u.rdb, []string{lockPrefix + key}, t.token).Err(); err != nil {
			t.u.log.Warn("redis lock release failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (t *txStore) rollback(ctx context.Context) error {
	for i := len(t.journal) - 1; i >= 0; i-- {
		j := t.journal[i]
		var err error
		if j.existed {
			err = t.Store.Set(ctx, j.key, j.prev)
		} else {
			err = t.Store.Delete(ctx, j.key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *txStore) keys() []string {
	out := make([]string, 0, len(t.journal))
	for _, j := range t.journal {
		out = append(out, j.key)
	}
	return out
}

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	t := &txStore{
		Store: NewStore(u.rdb),
		u:     u,
		token: uuid.NewString(),
		held:  make(map[string]bool),
		seen:  make(map[string]bool),
	}
	// cleanup must run even when the request context is gone
	bg := context.WithoutCancel(ctx)
	defer t.unlockAll(bg)

	err := fn(kv.NewRepos(t))
	if err == nil || len(t.journal) == 0 {
		return err
	}
	if rbErr := t.rollback(bg); rbErr != nil {
		u.log.Error("unit of work partially applied, manual reconciliation needed",
			zap.Strings("keys", t.keys()), zap.Error(err), zap.NamedError("rollback_error", rbErr))
		return apperr.Partial(err, t.keys())
	}
	u.log.Warn("unit of work rolled back", zap.Strings("keys", t.keys()), zap.Error(err))
	return err
}

func (u *UoW) WithinBookTx(ctx context.Context, bookID string, fn func(r uow.Repos, b *book.Book) error) error {
	return u.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Books.GetForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		return fn(r, b)
	})
}

func (u *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
