package category

import (
	"strings"
	"time"

	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/lifecycle"
)

var (
	ErrNotFound      = apperr.New(apperr.KindNotFound, "category not found")
	ErrDuplicateName = apperr.New(apperr.KindConflict, "category name already exists")
	ErrMissingName   = apperr.New(apperr.KindInvalidArgument, "name is required")
)

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	lifecycle.Lifecycle
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

const KeyPrefix = "category:"

func Key(id string) string { return KeyPrefix + id }

// NameLockKey is the marker record writers of a name lock, case folded.
// It sits outside KeyPrefix so category scans never see it.
func NameLockKey(name string) string {
	return "category-name:" + strings.ToLower(strings.TrimSpace(name))
}

func New(id, name, description string, now time.Time) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	return &Category{ID: id, Name: name, Description: strings.TrimSpace(description), CreatedAt: now}, nil
}

// CheckUniqueName fails when another live category already uses name,
// ignoring case. selfID is skipped so a rename to the same name passes.
func CheckUniqueName(existing []*Category, name, selfID string) error {
	name = strings.TrimSpace(name)
	for _, c := range existing {
		if c.ID == selfID || c.IsDeleted() {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return ErrDuplicateName
		}
	}
	return nil
}
