package trip

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for trip records.
type Repository interface {
	Save(ctx context.Context, r *Record) error
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Record, int64, error)
}
