package category

import (
	"errors"
	"testing"
	"time"
)

func TestCheckUniqueName(t *testing.T) {
	now := time.Now().UTC()
	fiction, _ := New("C1", "Fiction", "", now)
	history, _ := New("C2", "History", "", now)
	gone, _ := New("C3", "Poetry", "", now)
	gone.SoftDelete(now)
	all := []*Category{fiction, history, gone}

	tests := []struct {
		name    string
		newName string
		selfID  string
		wantErr bool
	}{
		{"new unique name", "Science", "", false},
		{"case-insensitive clash", "  fICTION ", "", true},
		{"rename to own name", "FICTION", "C1", false},
		{"rename onto other", "history", "C1", true},
		{"deleted names are free", "poetry", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUniqueName(all, tt.newName, tt.selfID)
			if tt.wantErr && !errors.Is(err, ErrDuplicateName) {
				t.Fatalf("want ErrDuplicateName, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestNew_RequiresName(t *testing.T) {
	if _, err := New("C1", "   ", "", time.Now()); !errors.Is(err, ErrMissingName) {
		t.Fatalf("want ErrMissingName, got %v", err)
	}
}
