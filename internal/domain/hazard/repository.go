package hazard

import (
	"context"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/roadwatch/service-navigation/internal/domain/photo"
)

// ListFilter narrows a hazard listing. Zero values mean "any".
type ListFilter struct {
	Type   Type
	Status Status
	Bound  *orb.Bound
}

// Repository defines the persistence contract for hazard aggregates.
type Repository interface {
	// FindByID retrieves a hazard by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Hazard, error)

	// List retrieves hazards matching filter with pagination, newest first.
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Hazard, int64, error)

	// FindInBound retrieves every hazard inside bound whose status is in statuses.
	FindInBound(ctx context.Context, bound orb.Bound, statuses []Status) ([]*Hazard, error)

	// CountByStatus returns hazard counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// CountByType returns hazard counts grouped by type (admin).
	CountByType(ctx context.Context) (map[string]int64, error)

	// Save persists a new hazard and, when cover is not nil, its cover photo
	// in the same transaction.
	Save(ctx context.Context, h *Hazard, cover *photo.HazardPhoto) error

	// Update persists changes to an existing hazard with optimistic locking.
	Update(ctx context.Context, h *Hazard) error
}
