package client

import (
	"strings"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/lifecycle"
)

var (
	ErrNotFound         = apperr.New(apperr.KindNotFound, "client not found")
	ErrDuplicate        = apperr.New(apperr.KindConflict, "identification already exists")
	ErrBlocked          = apperr.New(apperr.KindForbidden, "client is blocked and cannot borrow")
	ErrMissingField     = apperr.New(apperr.KindInvalidArgument, "identification, name and last name are required")
	ErrInvalidRole      = apperr.New(apperr.KindInvalidArgument, "role must be admin or client")
	ErrInvalidBirthDate = apperr.New(apperr.KindInvalidArgument, "birth date must be YYYY-MM-DD")
)

// Client is stored under "client:<identification>". ID links to the auth identity.
type Client struct {
	ID             string     `json:"id"`
	Identification string     `json:"identification"`
	Name           string     `json:"name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email,omitempty"`
	BirthDate      string     `json:"birth_date,omitempty"`
	Role           actor.Role `json:"role"`
	Blocked        bool       `json:"blocked"`
	BlockedAt      *time.Time `json:"blocked_at,omitempty"`
	lifecycle.Lifecycle
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

const KeyPrefix = "client:"

func Key(identification string) string { return KeyPrefix + identification }

func New(id, identification, name, lastName string, now time.Time) (*Client, error) {
	identification = strings.TrimSpace(identification)
	name, lastName = strings.TrimSpace(name), strings.TrimSpace(lastName)
	if identification == "" || name == "" || lastName == "" {
		return nil, ErrMissingField
	}
	return &Client{
		ID:             id,
		Identification: identification,
		Name:           name,
		LastName:       lastName,
		Role:           actor.RoleClient,
		CreatedAt:      now,
	}, nil
}

func (c *Client) FullName() string { return strings.TrimSpace(c.Name + " " + c.LastName) }

// CanBorrow gates loan creation only; existing loans are unaffected by either flag.
func (c *Client) CanBorrow() error {
	if c.Deleted {
		return ErrNotFound
	}
	if c.Blocked {
		return ErrBlocked
	}
	return nil
}

func (c *Client) Block(now time.Time) {
	c.Blocked = true
	c.BlockedAt = &now
}

func (c *Client) Unblock() {
	c.Blocked = false
	c.BlockedAt = nil
}

func ValidBirthDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
