// Package memstore is an in-memory record.Store and unit of work for tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"library-backend/internal/adapter/repository/kv"
	"library-backend/internal/domain/book"
	"library-backend/internal/domain/loan"
	"library-backend/internal/domain/record"
	"library-backend/internal/domain/uow"
)

var (
	_ record.Store     = (*Store)(nil)
	_ uow.UnitOfWork = (*UoW)(nil)
)

type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
	// SetErr, when set, is consulted before every write.
	SetErr func(key string) error
}

func New() *Store { return &Store{data: make(map[string][]byte)} }

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, record.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) GetForUpdate(ctx context.Context, key string) ([]byte, error) {
	return s.Get(ctx, key)
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if s.SetErr != nil {
		if err := s.SetErr(key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *Store) ScanPrefix(_ context.Context, prefix string) ([]record.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Entry
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, record.Entry{Key: k, Value: append([]byte(nil), v...)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Put stores raw JSON, bypassing the repositories. Used to seed legacy documents.
func (s *Store) Put(key, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = []byte(raw)
}

func (s *Store) Raw(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return string(v), ok
}

func (s *Store) snapshot() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		cp[k] = v
	}
	return cp
}

func (s *Store) restore(snap map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = snap
}

// UoW serializes units of work on one mutex and rolls the whole store back
// when fn fails.
type UoW struct {
	mu    sync.Mutex
	store *Store
}

func NewUoW(s *Store) *UoW { return &UoW{store: s} }

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	snap := u.store.snapshot()
	if err := fn(kv.NewRepos(u.store)); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
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
