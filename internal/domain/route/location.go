package route

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/roadwatch/service-navigation/internal/geo"
)

// Location is one hazard point along a route. Latitude and longitude are
// optional; a point missing either is skipped for markers and paths.
type Location struct {
	HazardID            *uuid.UUID `json:"hazard_id,omitempty" yaml:"hazard_id,omitempty"`
	Latitude            *float64   `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude           *float64   `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Label               string     `json:"label" yaml:"label"`
	Icon                string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Precaution          string     `json:"precaution,omitempty" yaml:"precaution,omitempty"`
	RecommendedSpeedKmh *int       `json:"recommended_speed_kmh,omitempty" yaml:"recommended_speed_kmh,omitempty"`
	Consequence         string     `json:"consequence,omitempty" yaml:"consequence,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Point returns the location as an orb point; ok is false when coordinates are missing.
func (l Location) Point() (orb.Point, bool) {
	if !l.HasCoordinates() {
		return orb.Point{}, false
	}
	return geo.Point(*l.Latitude, *l.Longitude), true
}

// IsHazard reports whether the location is a catalogued hazard rather than a
// route endpoint such as a departure or destination city.
func (l Location) IsHazard() bool {
	return l.HazardID != nil
}

// ValidPoint pairs a located point with its index in the original list.
type ValidPoint struct {
	Index    int
	Location Location
	Point    orb.Point
}

// ValidPoints returns the located points in input order.
func ValidPoints(locations []Location) []ValidPoint {
	out := make([]ValidPoint, 0, len(locations))
	for i, loc := range locations {
		if p, ok := loc.Point(); ok {
			out = append(out, ValidPoint{Index: i, Location: loc, Point: p})
		}
	}
	return out
}

// HazardPoints returns the located hazards in input order. Endpoints and
// points without coordinates are skipped.
func HazardPoints(locations []Location) []ValidPoint {
	valid := ValidPoints(locations)
	out := valid[:0]
	for _, vp := range valid {
		if vp.Location.IsHazard() {
			out = append(out, vp)
		}
	}
	return out
}

// NewLocation builds a located point.
func NewLocation(lat, lng float64, label string) Location {
	return Location{Latitude: &lat, Longitude: &lng, Label: label}
}
