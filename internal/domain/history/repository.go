package history

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for history entries.
type Repository interface {
	// RecordView inserts the entry or, when the user already viewed the
	// route, refreshes its label and view time keeping the favourite flag.
	RecordView(ctx context.Context, e *Entry) error

	// FindByUserID lists a user's entries, most recent first.
	FindByUserID(ctx context.Context, userID uuid.UUID, favoritesOnly bool) ([]*Entry, error)

	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByUserID removes every entry of a user and returns how many were removed.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}
