// Package directions defines the port the route renderer uses to obtain
// drivable paths, and an OSRM implementation of it.
package directions

import (
	"context"
	"errors"

	"github.com/paulmach/orb"
)

// ErrNoRoute is returned when the provider answers but finds no drivable route.
var ErrNoRoute = errors.New("no route found")

// Request asks for a path from Origin to Destination through Waypoints in order.
type Request struct {
	Origin       orb.Point
	Destination  orb.Point
	Waypoints    []orb.Point
	Alternatives bool
	// Traffic asks for traffic-aware durations. Providers that cannot
	// honour it ignore it.
	Traffic bool
}

// Points returns origin, waypoints and destination in travel order.
func (r Request) Points() []orb.Point {
	pts := make([]orb.Point, 0, len(r.Waypoints)+2)
	pts = append(pts, r.Origin)
	pts = append(pts, r.Waypoints...)
	return append(pts, r.Destination)
}

// Leg is the part of a route between two consecutive request points.
type Leg struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Route is one candidate path. Routes[0] of a Result is the recommended one.
type Route struct {
	Geometry        orb.LineString `json:"-"`
	DistanceMeters  float64        `json:"distance_meters"`
	DurationSeconds float64        `json:"duration_seconds"`
	Legs            []Leg          `json:"legs"`
}

// Result is a successful directions response. It always holds at least one route.
type Result struct {
	Routes []Route
}

// Provider computes driving directions.
type Provider interface {
	Route(ctx context.Context, req Request) (*Result, error)
}
