package client

type CreateClientInput struct {
	ID             string `json:"id" validate:"omitempty,hex32"`
	Identification string `json:"identification" validate:"required,ident"`
	Name           string `json:"name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	BirthDate      string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Role           string `json:"role" validate:"omitempty,role"`
}

// UpdateClientInput cannot carry an identification; it is immutable.
type UpdateClientInput struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,email"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Role      *string `json:"role" validate:"omitempty,role"`
}
