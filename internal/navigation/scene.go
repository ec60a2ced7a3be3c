// Package navigation renders routes into map scenes and simulates live trips
// along them.
package navigation

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/roadwatch/service-navigation/internal/domain/route"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// Marker is a clickable hazard point on the map.
type Marker struct {
	ID       string         `json:"id"`
	Index    int            `json:"index"`
	Location route.Location `json:"location"`
	Point    orb.Point      `json:"-"`
}

// Scene is everything drawn for one session. It is not safe for concurrent use.
type Scene struct {
	Markers      []Marker
	Path         orb.LineString
	Alternatives []orb.LineString
	Metrics      *route.Metrics
	Bounds       *orb.Bound
	Fallback     bool

	selected *Marker
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Clear removes markers, paths, metrics, bounds and the selection.
func (s *Scene) Clear() {
	s.Markers = nil
	s.Path = nil
	s.Alternatives = nil
	s.Metrics = nil
	s.Bounds = nil
	s.Fallback = false
	s.selected = nil
}

// Marker looks up a marker by id.
func (s *Scene) Marker(id string) (Marker, bool) {
	for _, m := range s.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return Marker{}, false
}

// Select makes the marker with id the selected hazard.
func (s *Scene) Select(id string) error {
	m, ok := s.Marker(id)
	if !ok {
		return domain.NewNotFoundError("marker", id)
	}
	s.selected = &m
	return nil
}

// ClearSelection unsets the selected hazard.
func (s *Scene) ClearSelection() { s.selected = nil }

// Selected returns the selected marker, if any.
func (s *Scene) Selected() (Marker, bool) {
	if s.selected == nil {
		return Marker{}, false
	}
	return *s.selected, true
}

// FeatureCollection renders the scene as GeoJSON: a Point per marker, then
// the primary path and each alternative as LineStrings.
func (s *Scene) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range s.Markers {
		f := geojson.NewFeature(m.Point)
		f.ID = m.ID
		f.Properties["kind"] = "hazard"
		f.Properties["label"] = m.Location.Label
		if m.Location.Icon != "" {
			f.Properties["icon"] = m.Location.Icon
		}
		if m.Location.RecommendedSpeedKmh != nil {
			f.Properties["recommended_speed_kmh"] = *m.Location.RecommendedSpeedKmh
		}
		if s.selected != nil && s.selected.ID == m.ID {
			f.Properties["selected"] = true
		}
		fc.Append(f)
	}
	if len(s.Path) > 0 {
		f := geojson.NewFeature(s.Path)
		f.ID = "path"
		f.Properties["kind"] = "path"
		f.Properties["fallback"] = s.Fallback
		fc.Append(f)
	}
	for i, alt := range s.Alternatives {
		f := geojson.NewFeature(alt)
		f.ID = fmt.Sprintf("alt%d", i+1)
		f.Properties["kind"] = "alternative"
		fc.Append(f)
	}
	if s.Bounds != nil {
		fc.BBox = geojson.NewBBox(*s.Bounds)
	}
	return fc
}

func markerID(index int) string {
	return fmt.Sprintf("m%d", index)
}
