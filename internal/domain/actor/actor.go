package actor

import (
	"strings"

	"library-backend/internal/domain/apperr"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
	// RoleAnonymous is used by the public catalog endpoints.
	RoleAnonymous Role = "anonymous"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	Identification string
	Role           Role
}

var ErrStaffOnly = apperr.New(apperr.KindForbidden, "staff permissions required")

func (a Actor) IsStaff() bool { return a.Role == RoleAdmin }

func (a Actor) RequireStaff() error {
	if !a.IsStaff() {
		return ErrStaffOnly
	}
	return nil
}

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleClient:
		return RoleClient, true
	}
	return "", false
}

func Staff(identification string) Actor { return Actor{Identification: identification, Role: RoleAdmin} }

func Client(identification string) Actor {
	return Actor{Identification: identification, Role: RoleClient}
}

func Anonymous() Actor { return Actor{Role: RoleAnonymous} }
