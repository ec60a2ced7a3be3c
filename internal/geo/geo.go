// Package geo holds coordinate validation and the small amount of geodesy the
// service needs on top of paulmach/orb.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// metersPerDegreeLat is the mean length of one degree of latitude.
const metersPerDegreeLat = 111_320.0

// ValidateCoordinates checks latitude and longitude ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %v", lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %v", lng)
	}
	return nil
}

// Point builds an orb point from latitude and longitude.
func Point(lat, lng float64) orb.Point {
	return orb.Point{lng, lat}
}

// LengthMeters returns the haversine length of a line string.
func LengthMeters(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += orbgeo.DistanceHaversine(ls[i-1], ls[i])
	}
	return total
}

// BoundAround returns the bound covering every point within radius meters of center.
// Near the antimeridian Max.Lon runs past 180 instead of wrapping, so bounds
// stay unionable. SplitAntimeridian turns the result back into valid ranges.
func BoundAround(center orb.Point, radiusMeters float64) orb.Bound {
	b := orbgeo.NewBoundAroundPoint(center, radiusMeters)
	if b.Min.Lon() > b.Max.Lon() {
		b.Max[0] += 360
	}
	return b
}

// BoundOf returns the smallest bound containing all points. ok is false for no points.
func BoundOf(points []orb.Point) (bound orb.Bound, ok bool) {
	if len(points) == 0 {
		return orb.Bound{}, false
	}
	bound = points[0].Bound()
	for _, p := range points[1:] {
		bound = bound.Extend(p)
	}
	return bound, true
}

// LocalProjection maps points to planar meters around an origin using an
// equirectangular approximation. Good enough for corridors of a few hundred km.
type LocalProjection struct {
	origin orb.Point
	cosLat float64
}

// NewLocalProjection creates a projection centered on origin.
func NewLocalProjection(origin orb.Point) LocalProjection {
	return LocalProjection{
		origin: origin,
		cosLat: math.Cos(origin.Lat() * math.Pi / 180),
	}
}

// Project returns p in meters east/north of the projection origin.
func (lp LocalProjection) Project(p orb.Point) orb.Point {
	return orb.Point{
		(p.Lon() - lp.origin.Lon()) * metersPerDegreeLat * lp.cosLat,
		(p.Lat() - lp.origin.Lat()) * metersPerDegreeLat,
	}
}

// SplitAntimeridian returns the longitude ranges b covers once wrapped to
// [-180, 180]. A bound crossing the antimeridian, either as a Min.Lon greater
// than Max.Lon or as longitudes past ±180, becomes two bounds. Latitudes are
// clamped to [-90, 90].
func SplitAntimeridian(b orb.Bound) []orb.Bound {
	minLat := math.Max(b.Min.Lat(), -90)
	maxLat := math.Min(b.Max.Lat(), 90)
	minLon, maxLon := b.Min.Lon(), b.Max.Lon()

	span := func(lo, hi float64) orb.Bound {
		return orb.Bound{Min: orb.Point{lo, minLat}, Max: orb.Point{hi, maxLat}}
	}

	if minLon <= maxLon && maxLon-minLon >= 360 {
		return []orb.Bound{span(-180, 180)}
	}
	minLon, maxLon = wrapLon(minLon), wrapLon(maxLon)
	if minLon <= maxLon {
		return []orb.Bound{span(minLon, maxLon)}
	}
	return []orb.Bound{span(minLon, 180), span(-180, maxLon)}
}

// wrapLon maps lon into [-180, 180], keeping 180 itself.
func wrapLon(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
