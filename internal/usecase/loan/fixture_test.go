package loan

import (
	"context"
	"testing"
	"time"

	"library-backend/internal/adapter/repository/kv"
	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/book"
	"library-backend/internal/domain/client"
	"library-backend/internal/domain/uow"
	"library-backend/internal/infrastructure/metrics"
	"library-backend/internal/testutil/memstore"

	"go.uber.org/zap"
)

var (
	now   = time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)
	staff = actor.Staff("admin-1")
)

type fixture struct {
	store   *memstore.Store
	repos   uow.Repos
	metrics *metrics.Metrics
	uc      *Usecase
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	s := memstore.New()
	repos := kv.NewRepos(s)
	m := metrics.New()
	uc := NewUsecase(repos, memstore.NewUoW(s), zap.NewNop(), m, cfg).
		WithClock(func() time.Time { return now })
	return &fixture{store: s, repos: repos, metrics: m, uc: uc}
}

func (f *fixture) seedBook(t *testing.T, id string, total int) {
	t.Helper()
	b, err := book.New(id, "Title "+id, "Author "+id, total, now)
	if err != nil {
		t.Fatalf("book.New: %v", err)
	}
	if err := f.repos.Books.Save(context.Background(), b); err != nil {
		t.Fatalf("seed book: %v", err)
	}
}

func (f *fixture) seedClient(t *testing.T, ident string, mutate func(c *client.Client)) {
	t.Helper()
	c, err := client.New("uid-"+ident, ident, "Ana", "Gomez", now)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	if mutate != nil {
		mutate(c)
	}
	if err := f.repos.Clients.Save(context.Background(), c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
}

func (f *fixture) book(t *testing.T, id string) *book.Book {
	t.Helper()
	b, err := f.repos.Books.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get book %s: %v", id, err)
	}
	return b
}

// assertAvailable checks the stored count, its bounds and that it matches
// the count recomputed from open loans.
func (f *fixture) assertAvailable(t *testing.T, id string, want int) {
	t.Helper()
	b := f.book(t, id)
	if b.AvailableCopies != want {
		t.Fatalf("book %s available = %d, want %d", id, b.AvailableCopies, want)
	}
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		t.Fatalf("book %s out of bounds: %d of %d", id, b.AvailableCopies, b.TotalCopies)
	}
	open, err := f.repos.Loans.CountOpenByBook(context.Background(), id)
	if err != nil {
		t.Fatalf("count open: %v", err)
	}
	if b.TotalCopies-open != b.AvailableCopies {
		t.Fatalf("book %s not recomputable: total %d - open %d != available %d",
			id, b.TotalCopies, open, b.AvailableCopies)
	}
	if b.Available != (b.AvailableCopies > 0) {
		t.Fatalf("book %s available flag out of sync", id)
	}
}

func (f *fixture) borrow(t *testing.T, ident, bookID string) *CreateLoanOutput {
	t.Helper()
	out, err := f.uc.Create(context.Background(), staff, CreateLoanInput{ClientIdentification: ident, BookID: bookID})
	if err != nil {
		t.Fatalf("Create(%s, %s): %v", ident, bookID, err)
	}
	return out
}
