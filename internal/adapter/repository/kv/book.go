package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"library-backend/internal/domain/book"
	"library-backend/internal/domain/record"
)

type BookRepository struct{ s record.Store }

func NewBookRepository(s record.Store) *BookRepository { return &BookRepository{s: s} }

// copyFields picks out the copy counters as pointers so missing ones can be
// told apart from zero. copy_count is the pre-inventory field name.
type copyFields struct {
	TotalCopies     *int `json:"total_copies"`
	AvailableCopies *int `json:"available_copies"`
	CopyCount       *int `json:"copy_count"`
}

func decodeBook(key string, raw []byte) (*book.Book, error) {
	var b book.Book
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	var cf copyFields
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if cf.TotalCopies == nil || cf.AvailableCopies == nil {
		b.Legacy = true
		if cf.TotalCopies == nil && cf.CopyCount != nil {
			b.TotalCopies = *cf.CopyCount
		}
	}
	return &b, nil
}

func (r *BookRepository) Get(ctx context.Context, id string) (*book.Book, error) {
	return load(ctx, r.s, book.Key(id), false, book.ErrNotFound, decodeBook)
}

func (r *BookRepository) GetForUpdate(ctx context.Context, id string) (*book.Book, error) {
	return load(ctx, r.s, book.Key(id), true, book.ErrNotFound, decodeBook)
}

func (r *BookRepository) Save(ctx context.Context, b *book.Book) error {
	return putJSON(ctx, r.s, book.Key(b.ID), b)
}

func (r *BookRepository) List(ctx context.Context) ([]*book.Book, error) {
	return scan(ctx, r.s, book.KeyPrefix, decodeBook)
}
