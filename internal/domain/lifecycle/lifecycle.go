// Package lifecycle holds the soft-delete state shared by every catalog entity.
package lifecycle

import "time"

// Lifecycle is embedded by entities that are soft-deleted instead of removed.
type Lifecycle struct {
	Deleted    bool       `json:"deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	RestoredAt *time.Time `json:"restored_at,omitempty"`
}

func (l *Lifecycle) IsDeleted() bool { return l.Deleted }

func (l *Lifecycle) SoftDelete(now time.Time) {
	l.Deleted = true
	l.DeletedAt = &now
}

func (l *Lifecycle) Restore(now time.Time) {
	l.Deleted = false
	l.RestoredAt = &now
}

// SoftDeletable is satisfied by any struct embedding *Lifecycle through a pointer receiver.
type SoftDeletable interface {
	IsDeleted() bool
	SoftDelete(now time.Time)
	Restore(now time.Time)
}

// Delete soft-deletes d. A record that is already deleted counts as missing
// and notFound is returned unchanged.
func Delete(d SoftDeletable, now time.Time, notFound error) error {
	if d.IsDeleted() {
		return notFound
	}
	d.SoftDelete(now)
	return nil
}

// Restore undeletes d and reports whether anything changed.
func Restore(d SoftDeletable, now time.Time) bool {
	if !d.IsDeleted() {
		return false
	}
	d.Restore(now)
	return true
}
