package route

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// Route is the aggregate root for a planned trip between two cities. It is
// immutable once created.
type Route struct {
	id              uuid.UUID
	ownerID         uuid.UUID
	label           string
	departureCity   string
	destinationCity string
	locations       []Location
	recommendation  string
	safetyNotes     string
	createdAt       time.Time
}

// NewRoute creates a new Route with validated fields.
func NewRoute(
	ownerID uuid.UUID,
	label, departureCity, destinationCity string,
	locations []Location,
	recommendation, safetyNotes string,
) (*Route, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	departureCity = strings.TrimSpace(departureCity)
	destinationCity = strings.TrimSpace(destinationCity)
	if departureCity == "" {
		return nil, domain.NewValidationError("departure city is required")
	}
	if destinationCity == "" {
		return nil, domain.NewValidationError("destination city is required")
	}
	if len(locations) == 0 {
		return nil, domain.NewValidationError("route needs at least one location")
	}

	label = strings.TrimSpace(label)
	if label == "" {
		label = departureCity + " → " + destinationCity
	}

	return &Route{
		id:              uuid.New(),
		ownerID:         ownerID,
		label:           label,
		departureCity:   departureCity,
		destinationCity: destinationCity,
		locations:       cloneLocations(locations),
		recommendation:  recommendation,
		safetyNotes:     safetyNotes,
		createdAt:       time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Route from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	label, departureCity, destinationCity string,
	locations []Location,
	recommendation, safetyNotes string,
	createdAt time.Time,
) *Route {
	return &Route{
		id:              id,
		ownerID:         ownerID,
		label:           label,
		departureCity:   departureCity,
		destinationCity: destinationCity,
		locations:       locations,
		recommendation:  recommendation,
		safetyNotes:     safetyNotes,
		createdAt:       createdAt,
	}
}

// ID returns the route's unique identifier.
func (r *Route) ID() uuid.UUID { return r.id }

// OwnerID returns the user who planned the route.
func (r *Route) OwnerID() uuid.UUID { return r.ownerID }

// Label returns the display label.
func (r *Route) Label() string { return r.label }

// DepartureCity returns the departure city.
func (r *Route) DepartureCity() string { return r.departureCity }

// DestinationCity returns the destination city.
func (r *Route) DestinationCity() string { return r.destinationCity }

// Locations returns a copy of the ordered hazard points.
func (r *Route) Locations() []Location { return cloneLocations(r.locations) }

// Recommendation returns the free-text driving recommendation.
func (r *Route) Recommendation() string { return r.recommendation }

// SafetyNotes returns the free-text safety notes.
func (r *Route) SafetyNotes() string { return r.safetyNotes }

// CreatedAt returns the creation timestamp.
func (r *Route) CreatedAt() time.Time { return r.createdAt }

func cloneLocations(in []Location) []Location {
	out := make([]Location, len(in))
	for i, l := range in {
		c := l
		if l.Latitude != nil {
			v := *l.Latitude
			c.Latitude = &v
		}
		if l.Longitude != nil {
			v := *l.Longitude
			c.Longitude = &v
		}
		if l.RecommendedSpeedKmh != nil {
			v := *l.RecommendedSpeedKmh
			c.RecommendedSpeedKmh = &v
		}
		if l.HazardID != nil {
			v := *l.HazardID
			c.HazardID = &v
		}
		out[i] = c
	}
	return out
}
