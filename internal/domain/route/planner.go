package route

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/roadwatch/service-navigation/internal/geo"
)

// DefaultCorridorMeters is used when a plan request leaves the corridor width unset.
const DefaultCorridorMeters = 2000.0

// CorridorPlanner picks hazard locations lying near the straight segment
// between two endpoints and orders them by their position along it.
type CorridorPlanner struct {
	widthMeters float64
}

// NewCorridorPlanner creates a planner; non-positive widths fall back to DefaultCorridorMeters.
func NewCorridorPlanner(widthMeters float64) *CorridorPlanner {
	if widthMeters <= 0 {
		widthMeters = DefaultCorridorMeters
	}
	return &CorridorPlanner{widthMeters: widthMeters}
}

// Width returns the corridor half-width in meters.
func (p *CorridorPlanner) Width() float64 { return p.widthMeters }

// SearchBound returns the bound a repository should prefilter candidates with.
func (p *CorridorPlanner) SearchBound(origin, destination orb.Point) orb.Bound {
	b := geo.BoundAround(origin, p.widthMeters)
	return b.Union(geo.BoundAround(destination, p.widthMeters))
}

// Plan returns [origin, candidates in corridor ordered along the segment, destination].
// Candidates without coordinates are ignored.
func (p *CorridorPlanner) Plan(origin, destination Location, candidates []Location) []Location {
	out := []Location{origin}
	op, ok1 := origin.Point()
	dp, ok2 := destination.Point()
	if !ok1 || !ok2 {
		return append(out, destination)
	}

	proj := geo.NewLocalProjection(op)
	a := proj.Project(op)
	b := proj.Project(dp)

	type placed struct {
		loc Location
		t   float64
	}
	var inside []placed
	for _, c := range candidates {
		cp, ok := c.Point()
		if !ok {
			continue
		}
		q := proj.Project(cp)
		if planar.DistanceFromSegment(a, b, q) > p.widthMeters {
			continue
		}
		inside = append(inside, placed{loc: c, t: alongSegment(a, b, q)})
	}
	sort.SliceStable(inside, func(i, j int) bool { return inside[i].t < inside[j].t })

	for _, pl := range inside {
		out = append(out, pl.loc)
	}
	return append(out, destination)
}

// alongSegment returns the clamped position of q's projection on segment ab, in [0,1].
func alongSegment(a, b, q orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0
	}
	t := ((q[0]-a[0])*dx + (q[1]-a[1])*dy) / lenSq
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
