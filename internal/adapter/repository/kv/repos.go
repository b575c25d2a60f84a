// Package kv maps the domain repositories onto a record.Store, one JSON
// document per entity under "<entity>:<id>".
package kv

import (
	"library-backend/internal/domain/record"
	"library-backend/internal/domain/uow"
)

// NewRepos binds every repository to s.
func NewRepos(s record.Store) uow.Repos {
	return uow.Repos{
		Books:      NewBookRepository(s),
		Clients:    NewClientRepository(s),
		Loans:      NewLoanRepository(s),
		Fines:      NewFineRepository(s),
		Categories: NewCategoryRepository(s),
	}
}
