package fine

import (
	"strings"
	"time"

	"library-backend/internal/domain/apperr"
)

var (
	ErrNotFound      = apperr.New(apperr.KindNotFound, "fine not found")
	ErrAlreadyPaid   = apperr.New(apperr.KindConflict, "fine already paid")
	ErrInvalidAmount = apperr.New(apperr.KindInvalidArgument, "amount must be greater than zero")
	ErrMissingReason = apperr.New(apperr.KindInvalidArgument, "reason is required")
)

// Fine is stored under "fine:<id>". Pending tracks payment while Enabled is
// the administrative visibility switch; the two never affect each other.
type Fine struct {
	ID                   string     `json:"id"`
	ClientIdentification string     `json:"client_identification"`
	ClientName           string     `json:"client_name"`
	LoanID               string     `json:"loan_id,omitempty"`
	Amount               float64    `json:"amount"`
	Reason               string     `json:"reason"`
	Pending              bool       `json:"pending"`
	Enabled              bool       `json:"enabled"`
	CreatedAt            time.Time  `json:"created_at"`
	PaidAt               *time.Time `json:"paid_at"`
}

const KeyPrefix = "fine:"

func Key(id string) string { return KeyPrefix + id }

func New(id, identification, clientName string, amount float64, reason string, now time.Time) (*Fine, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}
	return &Fine{
		ID:                   id,
		ClientIdentification: identification,
		ClientName:           clientName,
		Amount:               amount,
		Reason:               reason,
		Pending:              true,
		Enabled:              true,
		CreatedAt:            now,
	}, nil
}

func (f *Fine) Pay(now time.Time) error {
	if !f.Pending {
		return ErrAlreadyPaid
	}
	f.Pending = false
	f.PaidAt = &now
	return nil
}

func (f *Fine) Disable() { f.Enabled = false }

func (f *Fine) Enable() { f.Enabled = true }

// VisibleTo reports whether a client with identification may see the fine.
func (f *Fine) VisibleTo(identification string) bool {
	return f.Enabled && f.ClientIdentification == identification
}
