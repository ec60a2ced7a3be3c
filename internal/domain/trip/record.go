package trip

import (
	"time"

	"github.com/google/uuid"

	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// Record is a finished trip kept in the driver's history.
type Record struct {
	id        uuid.UUID
	userID    uuid.UUID
	routeID   uuid.UUID
	summary   Summary
	completed bool
	startedAt time.Time
	endedAt   time.Time
	createdAt time.Time
}

// NewRecord creates a trip record from a finished simulation.
func NewRecord(userID, routeID uuid.UUID, summary Summary, startedAt, endedAt time.Time) (*Record, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if routeID == uuid.Nil {
		return nil, domain.NewValidationError("route ID is required")
	}
	if endedAt.Before(startedAt) {
		return nil, domain.NewValidationError("trip cannot end before it starts")
	}
	return &Record{
		id:        uuid.New(),
		userID:    userID,
		routeID:   routeID,
		summary:   summary,
		completed: summary.Completed,
		startedAt: startedAt,
		endedAt:   endedAt,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructRecord rebuilds a Record from persistence data (no validation).
func ReconstructRecord(id, userID, routeID uuid.UUID, summary Summary, completed bool, startedAt, endedAt, createdAt time.Time) *Record {
	return &Record{
		id:        id,
		userID:    userID,
		routeID:   routeID,
		summary:   summary,
		completed: completed,
		startedAt: startedAt,
		endedAt:   endedAt,
		createdAt: createdAt,
	}
}

func (r *Record) ID() uuid.UUID        { return r.id }
func (r *Record) UserID() uuid.UUID    { return r.userID }
func (r *Record) RouteID() uuid.UUID   { return r.routeID }
func (r *Record) Summary() Summary     { return r.summary }
func (r *Record) Completed() bool      { return r.completed }
func (r *Record) StartedAt() time.Time { return r.startedAt }
func (r *Record) EndedAt() time.Time   { return r.endedAt }
func (r *Record) CreatedAt() time.Time { return r.createdAt }
