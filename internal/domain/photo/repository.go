package photo

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for hazard photos.
type Repository interface {
	Save(ctx context.Context, photo *HazardPhoto) error
	FindByHazardID(ctx context.Context, hazardID uuid.UUID) ([]*HazardPhoto, error)
	FindByID(ctx context.Context, id uuid.UUID) (*HazardPhoto, error)
}
