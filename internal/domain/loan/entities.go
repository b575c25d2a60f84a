package loan

import (
	"time"

	"library-backend/internal/domain/apperr"
)

type State string

const (
	StateOpen                State = "open"
	StateReturned            State = "returned"
	StateDeactivatedOpen     State = "deactivated_open"
	StateDeactivatedReturned State = "deactivated_returned"
)

var (
	ErrNotFound        = apperr.New(apperr.KindNotFound, "loan not found")
	ErrAlreadyReturned = apperr.New(apperr.KindConflict, "loan already returned")
	ErrDeactivated     = apperr.New(apperr.KindConflict, "loan is deactivated")
	ErrInvalidDates    = apperr.New(apperr.KindInvalidArgument, "due date must be after loan date")
	ErrNotOwner        = apperr.New(apperr.KindForbidden, "loan belongs to another client")
)

// Receipt is the snapshot handed to the client when the loan is issued. It is
// never rewritten afterwards.
type Receipt struct {
	Number               string    `json:"number"`
	IssuedAt             time.Time `json:"issued_at"`
	ClientName           string    `json:"client_name"`
	ClientIdentification string    `json:"client_identification"`
	BookTitle            string    `json:"book_title"`
	BookAuthor           string    `json:"book_author"`
	BookID               string    `json:"book_id"`
	LoanID               string    `json:"loan_id"`
	DueDate              time.Time `json:"due_date"`
}

// Loan is stored under "loan:<id>". Active and Returned are independent flags;
// only an active, unreturned loan holds a copy of its book.
type Loan struct {
	ID                   string     `json:"id"`
	ClientIdentification string     `json:"client_identification"`
	ClientName           string     `json:"client_name"`
	BookID               string     `json:"book_id"`
	BookTitle            string     `json:"book_title"`
	LoanDate             time.Time  `json:"loan_date"`
	DueDate              time.Time  `json:"due_date"`
	ReturnDate           *time.Time `json:"return_date"`
	Returned             bool       `json:"returned"`
	Active               bool       `json:"active"`
	DeactivatedAt        *time.Time `json:"deactivated_at,omitempty"`
	Receipt              Receipt    `json:"receipt"`
	CreatedAt            time.Time  `json:"created_at"`
}

const KeyPrefix = "loan:"

func Key(id string) string { return KeyPrefix + id }

// ValidateDates requires due strictly after loan.
func ValidateDates(loanDate, dueDate time.Time) error {
	if !dueDate.After(loanDate) {
		return ErrInvalidDates
	}
	return nil
}

func (l *Loan) State() State {
	switch {
	case l.Active && !l.Returned:
		return StateOpen
	case l.Active && l.Returned:
		return StateReturned
	case !l.Active && !l.Returned:
		return StateDeactivatedOpen
	default:
		return StateDeactivatedReturned
	}
}

// HoldsCopy reports whether the loan keeps one unit of its book reserved.
func (l *Loan) HoldsCopy() bool { return l.State() == StateOpen }

// Return moves Open to Returned. The caller releases the copy.
func (l *Loan) Return(now time.Time) error {
	if l.Returned {
		return ErrAlreadyReturned
	}
	if !l.Active {
		return ErrDeactivated
	}
	l.Returned = true
	l.ReturnDate = &now
	return nil
}

// Deactivate voids the loan. It reports whether a copy must be released,
// which only happens when leaving Open. Deactivating twice is a no-op.
func (l *Loan) Deactivate(now time.Time) (releaseCopy bool) {
	if !l.Active {
		return false
	}
	releaseCopy = !l.Returned
	l.Active = false
	l.DeactivatedAt = &now
	return releaseCopy
}

// Reactivate restores the pre-deactivation state. It reports whether a copy
// must be reserved again, which only happens when going back to Open.
func (l *Loan) Reactivate() (reserveCopy bool) {
	if l.Active {
		return false
	}
	l.Active = true
	l.DeactivatedAt = nil
	return !l.Returned
}

// OpenLoansByBook counts copy-holding loans per book id.
func OpenLoansByBook(loans []*Loan) map[string]int {
	out := make(map[string]int)
	for _, l := range loans {
		if l.HoldsCopy() {
			out[l.BookID]++
		}
	}
	return out
}
