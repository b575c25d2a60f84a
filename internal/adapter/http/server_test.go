package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/adapter/repository/kv"
	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	domainbook "library-backend/internal/domain/book"
	"library-backend/internal/domain/uow"
	"library-backend/internal/infrastructure/metrics"
	"library-backend/internal/testutil/memstore"
	"library-backend/internal/testutil/uowmock"
	bookuc "library-backend/internal/usecase/book"
	categoryuc "library-backend/internal/usecase/category"
	clientuc "library-backend/internal/usecase/client"
	fineuc "library-backend/internal/usecase/fine"
	loanuc "library-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	admin    = actor.Staff("ADM-1")
	borrower = actor.Client("CC-1001")
)

type stack struct {
	e     *echo.Echo
	repos uow.Repos
	h     Handlers
}

func newStack(t *testing.T, tx func(s *memstore.Store) uow.UnitOfWork) *stack {
	t.Helper()
	s := memstore.New()
	repos := kv.NewRepos(s)
	var unit uow.UnitOfWork = memstore.NewUoW(s)
	if tx != nil {
		unit = tx(s)
	}
	m := metrics.New()
	log := zap.NewNop()
	h := Handlers{
		System:     NewHandler(m),
		Books:      NewBookHandler(bookuc.NewUsecase(repos, unit, log, m), log),
		Clients:    NewClientHandler(clientuc.NewUsecase(repos, unit, log), log),
		Loans:      NewLoanHandler(loanuc.NewUsecase(repos, unit, log, m, loanuc.Config{}), log),
		Fines:      NewFineHandler(fineuc.NewUsecase(repos, unit, log), log),
		Categories: NewCategoryHandler(categoryuc.NewUsecase(repos, unit), log),
	}
	e := newEchoWithValidator()
	e.Use(middleware.Caller())
	Register(e, h, middleware.RequireCaller())
	return &stack{e: e, repos: repos, h: h}
}

func (s *stack) do(t *testing.T, a actor.Actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *stdhttp.Request
	if body != nil {
		req = httptest.NewRequest(method, path, mustJSON(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if a.Role != actor.RoleAnonymous {
		req.Header.Set(middleware.HeaderCallerID, a.Identification)
		req.Header.Set(middleware.HeaderCallerRole, string(a.Role))
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *stack) seed(t *testing.T) {
	t.Helper()
	wantStatus(t, s.do(t, admin, stdhttp.MethodPost, "/api/clients", map[string]any{
		"identification": borrower.Identification, "name": "Ana", "last_name": "Gomez",
	}), stdhttp.StatusCreated)
	wantStatus(t, s.do(t, admin, stdhttp.MethodPost, "/api/books", map[string]any{
		"id": "B1", "title": "Dune", "author": "Herbert", "total_copies": 1,
	}), stdhttp.StatusCreated)
}

func TestLoanFlowOverHTTP(t *testing.T) {
	s := newStack(t, nil)
	s.seed(t)

	rec := s.do(t, borrower, stdhttp.MethodPost, "/api/loans", map[string]any{"book_id": "B1"})
	wantStatus(t, rec, stdhttp.StatusCreated)
	created := decodeBody[loanuc.CreateLoanOutput](t, rec)
	if created.Loan.ClientIdentification != borrower.Identification || created.Receipt.BookTitle != "Dune" {
		t.Fatalf("unexpected loan: %+v", created)
	}
	if !strings.HasPrefix(created.Receipt.Number, "REC-") {
		t.Fatalf("receipt number = %q", created.Receipt.Number)
	}

	// the only copy is out
	rec = s.do(t, admin, stdhttp.MethodPost, "/api/loans", map[string]any{
		"client_identification": borrower.Identification, "book_id": "B1",
	})
	wantStatus(t, rec, stdhttp.StatusConflict)
	if er := decodeBody[ErrorResponse](t, rec); er.Kind != "conflict" || er.Error != domainbook.ErrNoCopies.Error() {
		t.Fatalf("unexpected error body: %+v", er)
	}

	books := decodeBody[[]domainbook.Book](t, s.do(t, actor.Anonymous(), stdhttp.MethodGet, "/public/books", nil))
	if len(books) != 1 || books[0].AvailableCopies != 0 || books[0].Available {
		t.Fatalf("public catalog = %+v", books)
	}

	path := "/api/loans/" + created.Loan.ID
	wantStatus(t, s.do(t, actor.Client("CC-9999"), stdhttp.MethodPost, path+"/return", nil), stdhttp.StatusForbidden)
	rec = s.do(t, borrower, stdhttp.MethodPost, path+"/return", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	if dto := decodeBody[loanuc.LoanDTO](t, rec); !dto.Returned || dto.ReturnDate == nil {
		t.Fatalf("loan not returned: %+v", dto)
	}
	wantStatus(t, s.do(t, borrower, stdhttp.MethodPost, path+"/return", nil), stdhttp.StatusConflict)

	b, err := s.repos.Books.Get(context.Background(), "B1")
	if err != nil || b.AvailableCopies != 1 {
		t.Fatalf("book after return = (%+v, %v)", b, err)
	}
}

func TestDeactivateAndReactivateOverHTTP(t *testing.T) {
	s := newStack(t, nil)
	s.seed(t)
	created := decodeBody[loanuc.CreateLoanOutput](t, s.do(t, borrower, stdhttp.MethodPost, "/api/loans", map[string]any{"book_id": "B1"}))
	path := "/api/loans/" + created.Loan.ID

	wantStatus(t, s.do(t, borrower, stdhttp.MethodDelete, path, nil), stdhttp.StatusForbidden)
	rec := s.do(t, admin, stdhttp.MethodDelete, path, nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	if dto := decodeBody[loanuc.LoanDTO](t, rec); dto.Active {
		t.Fatalf("loan still active: %+v", dto)
	}
	wantStatus(t, s.do(t, borrower, stdhttp.MethodGet, path, nil), stdhttp.StatusNotFound)

	rec = s.do(t, admin, stdhttp.MethodPost, path+"/reactivate", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	b, _ := s.repos.Books.Get(context.Background(), "B1")
	if b.AvailableCopies != 0 {
		t.Fatalf("reactivated loan must hold the copy again: %+v", b)
	}
}

func TestAccessControlOverHTTP(t *testing.T) {
	s := newStack(t, nil)
	s.seed(t)

	tests := []struct {
		name   string
		a      actor.Actor
		method string
		path   string
		body   any
		want   int
	}{
		{"anonymous api", actor.Anonymous(), stdhttp.MethodGet, "/api/books", nil, stdhttp.StatusUnauthorized},
		{"client creates book", borrower, stdhttp.MethodPost, "/api/books", map[string]any{"id": "B2", "title": "t", "author": "a"}, stdhttp.StatusForbidden},
		{"client lists clients", borrower, stdhttp.MethodGet, "/api/clients", nil, stdhttp.StatusForbidden},
		{"client reads self", borrower, stdhttp.MethodGet, "/api/clients/" + borrower.Identification, nil, stdhttp.StatusOK},
		{"client reads other", borrower, stdhttp.MethodGet, "/api/clients/CC-2002", nil, stdhttp.StatusForbidden},
		{"client reconciles", borrower, stdhttp.MethodPost, "/api/admin/reconcile", nil, stdhttp.StatusForbidden},
		{"admin reconciles", admin, stdhttp.MethodPost, "/api/admin/reconcile", nil, stdhttp.StatusOK},
		{"unknown book", admin, stdhttp.MethodGet, "/api/books/nope", nil, stdhttp.StatusNotFound},
		{"duplicate client", admin, stdhttp.MethodPost, "/api/clients", map[string]any{"identification": borrower.Identification, "name": "A", "last_name": "B"}, stdhttp.StatusConflict},
		{"client lists own fines", borrower, stdhttp.MethodGet, "/api/fines", nil, stdhttp.StatusOK},
		{"public categories", actor.Anonymous(), stdhttp.MethodGet, "/public/categories", nil, stdhttp.StatusOK},
		{"health", actor.Anonymous(), stdhttp.MethodGet, "/health", nil, stdhttp.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantStatus(t, s.do(t, tt.a, tt.method, tt.path, tt.body), tt.want)
		})
	}
}

func TestCatalogAdminOverHTTP(t *testing.T) {
	s := newStack(t, nil)
	s.seed(t)

	rec := s.do(t, admin, stdhttp.MethodPost, "/api/categories", map[string]any{"name": "Science Fiction"})
	wantStatus(t, rec, stdhttp.StatusCreated)
	cat := decodeBody[struct {
		ID string `json:"id"`
	}](t, rec)

	rec = s.do(t, admin, stdhttp.MethodPut, "/api/books/B1", map[string]any{"category_id": cat.ID, "total_copies": 3})
	wantStatus(t, rec, stdhttp.StatusOK)
	if b := decodeBody[domainbook.Book](t, rec); b.TotalCopies != 3 || b.AvailableCopies != 3 {
		t.Fatalf("unexpected book: %+v", b)
	}
	rec = s.do(t, borrower, stdhttp.MethodGet, "/api/books/B1", nil)
	if b := decodeBody[domainbook.Book](t, rec); b.Genre != "Science Fiction" {
		t.Fatalf("genre not resolved: %+v", b)
	}

	wantStatus(t, s.do(t, admin, stdhttp.MethodDelete, "/api/books/B1", nil), stdhttp.StatusNoContent)
	if books := decodeBody[[]domainbook.Book](t, s.do(t, borrower, stdhttp.MethodGet, "/api/books", nil)); len(books) != 0 {
		t.Fatalf("deleted book visible to client: %+v", books)
	}
	wantStatus(t, s.do(t, admin, stdhttp.MethodPost, "/api/books/B1/restore", nil), stdhttp.StatusOK)

	rec = s.do(t, admin, stdhttp.MethodPost, "/api/fines", map[string]any{
		"client_identification": borrower.Identification, "amount": 2.5, "reason": "late",
	})
	wantStatus(t, rec, stdhttp.StatusCreated)
	f := decodeBody[struct {
		ID string `json:"id"`
	}](t, rec)
	wantStatus(t, s.do(t, admin, stdhttp.MethodPost, "/api/fines/"+f.ID+"/pay", nil), stdhttp.StatusOK)
	wantStatus(t, s.do(t, admin, stdhttp.MethodPost, "/api/fines/"+f.ID+"/pay", nil), stdhttp.StatusConflict)
}

func TestCreateLoan_BindError(t *testing.T) {
	s := newStack(t, nil)
	c, rec := newCtx(s.e, admin, stdhttp.MethodPost, "/api/loans", strings.NewReader(`{"book_id":`))
	if err := s.h.Loans.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	wantStatus(t, rec, stdhttp.StatusBadRequest)
	if er := decodeBody[ErrorResponse](t, rec); er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestCreateClient_ValidationError(t *testing.T) {
	s := newStack(t, nil)
	c, rec := newCtx(s.e, admin, stdhttp.MethodPost, "/api/clients", mustJSON(map[string]any{
		"id":             "NOT_HEX",
		"identification": "a b",
		"name":           "Ana",
		"birth_date":     "1990/01/01",
		"role":           "root",
	}))
	if err := s.h.Clients.CreateClient(c); err != nil {
		t.Fatalf("CreateClient error: %v", err)
	}
	wantStatus(t, rec, stdhttp.StatusUnprocessableEntity)
	er := decodeBody[ErrorResponse](t, rec)
	if er.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", er.Error, "validation failed")
	}
	for _, want := range []struct{ field, msg string }{
		{"ID", "32-char lowercase hex"},
		{"Identification", "letters, digits or dashes"},
		{"LastName", "is required"},
		{"BirthDate", "2006-01-02"},
		{"Role", "admin or client"},
	} {
		if !containsFieldMsg(er.Details, want.field, want.msg) {
			t.Fatalf("missing %s detail: %+v", want.field, er.Details)
		}
	}
}

func TestCreateFine_Dec2Validation(t *testing.T) {
	s := newStack(t, nil)
	c, rec := newCtx(s.e, admin, stdhttp.MethodPost, "/api/fines", mustJSON(map[string]any{
		"client_identification": "CC-1", "amount": 1.234, "reason": "late",
	}))
	if err := s.h.Fines.CreateFine(c); err != nil {
		t.Fatalf("CreateFine error: %v", err)
	}
	wantStatus(t, rec, stdhttp.StatusUnprocessableEntity)
	if er := decodeBody[ErrorResponse](t, rec); !containsFieldMsg(er.Details, "Amount", "2 decimal places") {
		t.Fatalf("missing dec2 detail: %+v", er.Details)
	}
}

func TestFail_MapsKinds(t *testing.T) {
	s := newStack(t, func(*memstore.Store) uow.UnitOfWork {
		return uowmock.New().WithWithinTx(func(ctx context.Context, fn func(r uow.Repos) error) error {
			return context.DeadlineExceeded
		})
	})
	rec := s.do(t, admin, stdhttp.MethodPost, "/api/clients", map[string]any{
		"identification": "CC-5", "name": "A", "last_name": "B",
	})
	wantStatus(t, rec, stdhttp.StatusInternalServerError)
	if er := decodeBody[ErrorResponse](t, rec); er.Error != "internal error" || er.Kind != "" {
		t.Fatalf("storage error leaked: %+v", er)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		kind string
		want int
	}{
		{"not_found", stdhttp.StatusNotFound},
		{"conflict", stdhttp.StatusConflict},
		{"forbidden", stdhttp.StatusForbidden},
		{"invalid_argument", stdhttp.StatusBadRequest},
		{"partial_failure", stdhttp.StatusInternalServerError},
		{"", stdhttp.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(apperr.Kind(tt.kind)); got != tt.want {
			t.Fatalf("statusOf(%q) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
