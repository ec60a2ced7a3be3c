package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// Entry records that a user opened a route. One entry exists per user and route.
type Entry struct {
	id         uuid.UUID
	userID     uuid.UUID
	routeID    uuid.UUID
	routeLabel string
	favorite   bool
	viewedAt   time.Time
}

// NewEntry creates a history entry for a route view.
func NewEntry(userID, routeID uuid.UUID, routeLabel string) (*Entry, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if routeID == uuid.Nil {
		return nil, domain.NewValidationError("route ID is required")
	}
	return &Entry{
		id:         uuid.New(),
		userID:     userID,
		routeID:    routeID,
		routeLabel: routeLabel,
		viewedAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds an Entry from persistence data (no validation).
func Reconstruct(id, userID, routeID uuid.UUID, routeLabel string, favorite bool, viewedAt time.Time) *Entry {
	return &Entry{
		id:         id,
		userID:     userID,
		routeID:    routeID,
		routeLabel: routeLabel,
		favorite:   favorite,
		viewedAt:   viewedAt,
	}
}

func (e *Entry) ID() uuid.UUID       { return e.id }
func (e *Entry) UserID() uuid.UUID   { return e.userID }
func (e *Entry) RouteID() uuid.UUID  { return e.routeID }
func (e *Entry) RouteLabel() string  { return e.routeLabel }
func (e *Entry) Favorite() bool      { return e.favorite }
func (e *Entry) ViewedAt() time.Time { return e.viewedAt }

// ToggleFavorite flips the favourite flag and returns the new value.
func (e *Entry) ToggleFavorite() bool {
	e.favorite = !e.favorite
	return e.favorite
}

// Touch refreshes the view time and label of a revisited route.
func (e *Entry) Touch(label string) {
	if label != "" {
		e.routeLabel = label
	}
	e.viewedAt = time.Now().UTC()
}

// OwnedBy reports whether the entry belongs to userID.
func (e *Entry) OwnedBy(userID uuid.UUID) bool { return e.userID == userID }
