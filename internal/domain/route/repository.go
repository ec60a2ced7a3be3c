package route

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for routes.
type Repository interface {
	// FindByID retrieves a route by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Route, error)

	// FindByOwnerID retrieves routes planned by a user with pagination, newest first.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Route, int64, error)

	// Save persists a new route.
	Save(ctx context.Context, r *Route) error
}
