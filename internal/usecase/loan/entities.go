package loan

import (
	"time"

	"library-backend/internal/domain/loan"
)

type CreateLoanInput struct {
	ClientIdentification string     `json:"client_identification"`
	BookID               string     `json:"book_id" validate:"required"`
	LoanDate             *time.Time `json:"loan_date"`
	DueDate              *time.Time `json:"due_date"`
}

// LoanDTO is a loan plus its derived state.
type LoanDTO struct {
	*loan.Loan
	State loan.State `json:"state"`
}

func toDTO(l *loan.Loan) *LoanDTO { return &LoanDTO{Loan: l, State: l.State()} }

type CreateLoanOutput struct {
	Loan    *LoanDTO     `json:"loan"`
	Receipt loan.Receipt `json:"receipt"`
}

// ReactivationPolicy decides what happens when a deactivated open loan comes
// back and its book has no copy left.
type ReactivationPolicy string

const (
	ReactivationReject        ReactivationPolicy = "reject"
	ReactivationOversubscribe ReactivationPolicy = "oversubscribe"
)

type Config struct {
	LoanPeriod   time.Duration
	Reactivation ReactivationPolicy
}

const DefaultLoanPeriod = 14 * 24 * time.Hour
