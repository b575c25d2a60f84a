package book

import (
	"strings"
	"time"

	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/lifecycle"
)

var (
	ErrNotFound     = apperr.New(apperr.KindNotFound, "book not found")
	ErrDuplicateID  = apperr.New(apperr.KindConflict, "book id already exists")
	ErrNoCopies     = apperr.New(apperr.KindConflict, "no copies available")
	ErrInvalidTotal = apperr.New(apperr.KindInvalidArgument, "total copies must be at least 1")
	ErrMissingField = apperr.New(apperr.KindInvalidArgument, "id, title and author are required")
)

// Book is stored under "book:<id>". AvailableCopies is a materialized counter:
// at rest it equals TotalCopies minus the loans on this book that are active
// and not returned.
type Book struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Genre           string  `json:"genre"`
	CategoryID      string  `json:"category_id,omitempty"`
	PageCount       *int    `json:"page_count,omitempty"`
	TotalCopies     int     `json:"total_copies"`
	AvailableCopies int     `json:"available_copies"`
	Available       bool    `json:"available"`
	CoverImageURL   *string `json:"cover_image_url,omitempty"`
	lifecycle.Lifecycle
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Legacy is set by the store for documents written before copy counts
	// existed; such books must be backfilled before a loan touches them.
	Legacy bool `json:"-"`
}

func Key(id string) string { return "book:" + id }

const KeyPrefix = "book:"

// New validates fields and returns a book with every copy available.
// A zero total defaults to a single copy.
func New(id, title, author string, total int, now time.Time) (*Book, error) {
	id, title, author = strings.TrimSpace(id), strings.TrimSpace(title), strings.TrimSpace(author)
	if id == "" || title == "" || author == "" {
		return nil, ErrMissingField
	}
	if total == 0 {
		total = 1
	}
	if total < 1 {
		return nil, ErrInvalidTotal
	}
	return &Book{
		ID:              id,
		Title:           title,
		Author:          author,
		TotalCopies:     total,
		AvailableCopies: total,
		Available:       true,
		CreatedAt:       now,
	}, nil
}

// SetCoverImage stores url, normalizing blank values to nil.
func (b *Book) SetCoverImage(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		b.CoverImageURL = nil
		return
	}
	b.CoverImageURL = &url
}

// SetTotalCopies shifts AvailableCopies by the same delta, floored at 0.
func (b *Book) SetTotalCopies(total int) error {
	if total < 1 {
		return ErrInvalidTotal
	}
	delta := total - b.TotalCopies
	b.TotalCopies = total
	b.AvailableCopies = max(0, b.AvailableCopies+delta)
	b.syncAvailable()
	return nil
}

// ReserveCopy takes one copy for a new open loan.
func (b *Book) ReserveCopy() error {
	if b.AvailableCopies <= 0 {
		return ErrNoCopies
	}
	b.AvailableCopies--
	b.syncAvailable()
	return nil
}

// ForceReserveCopy takes one copy even when none is left, flooring at 0.
// It reports whether the book ended up oversubscribed.
func (b *Book) ForceReserveCopy() (oversubscribed bool) {
	if b.AvailableCopies <= 0 {
		b.AvailableCopies = 0
		b.syncAvailable()
		return true
	}
	b.AvailableCopies--
	b.syncAvailable()
	return false
}

// ReleaseCopy gives one copy back, capped at TotalCopies.
func (b *Book) ReleaseCopy() {
	b.AvailableCopies = min(b.AvailableCopies+1, b.TotalCopies)
	b.syncAvailable()
}

// Recompute derives AvailableCopies from the number of open loans.
func (b *Book) Recompute(openLoans int) {
	b.AvailableCopies = max(0, b.TotalCopies-openLoans)
	b.syncAvailable()
}

// Backfill normalizes a legacy document. TotalCopies already holds whatever
// count the legacy record carried; anything below one becomes a single copy.
func (b *Book) Backfill(openLoans int) {
	if b.TotalCopies < 1 {
		b.TotalCopies = 1
	}
	b.Recompute(openLoans)
	b.Legacy = false
}

func (b *Book) syncAvailable() { b.Available = b.AvailableCopies > 0 }
