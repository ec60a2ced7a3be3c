package navigation

import (
	"context"
	"errors"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/roadwatch/service-navigation/internal/directions"
	"github.com/roadwatch/service-navigation/internal/domain/route"
	"github.com/roadwatch/service-navigation/internal/geo"
)

// Renderer draws routes into scenes using a directions provider.
type Renderer struct {
	provider directions.Provider
	logger   *zap.Logger
	now      func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRendererClock overrides the clock used for ETAs.
func WithRendererClock(now func() time.Time) RendererOption {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer creates a Renderer.
func NewRenderer(provider directions.Provider, logger *zap.Logger, opts ...RendererOption) *Renderer {
	r := &Renderer{provider: provider, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render clears scene and draws locations into it. Points without both
// coordinates are skipped. With two or more points a single directions
// request is made; if it fails for any reason the scene falls back to a
// straight line through the points with estimated metrics.
func (r *Renderer) Render(ctx context.Context, scene *Scene, locations []route.Location) {
	scene.Clear()

	valid := route.ValidPoints(locations)
	points := make([]orb.Point, len(valid))
	for i, vp := range valid {
		points[i] = vp.Point
		scene.Markers = append(scene.Markers, Marker{
			ID:       markerID(vp.Index),
			Index:    vp.Index,
			Location: vp.Location,
			Point:    vp.Point,
		})
	}

	if len(points) < 2 {
		if b, ok := geo.BoundOf(points); ok {
			scene.Bounds = &b
		}
		return
	}

	req := directions.Request{
		Origin:       points[0],
		Destination:  points[len(points)-1],
		Waypoints:    points[1 : len(points)-1],
		Alternatives: true,
		Traffic:      true,
	}
	res, err := r.provider.Route(ctx, req)
	if err != nil || len(res.Routes) == 0 {
		if err == nil {
			err = directions.ErrNoRoute
		}
		r.fallback(scene, points, err)
		return
	}

	primary := res.Routes[0]
	scene.Path = primary.Geometry
	for _, alt := range res.Routes[1:] {
		scene.Alternatives = append(scene.Alternatives, alt.Geometry)
	}
	metrics := route.NewMetrics(primary.DistanceMeters, primary.DurationSeconds, r.now())
	scene.Metrics = &metrics

	b, ok := geo.BoundOf(primary.Geometry)
	if !ok {
		b = points[0].Bound()
	}
	for _, p := range points {
		b = b.Extend(p)
	}
	scene.Bounds = &b
}

func (r *Renderer) fallback(scene *Scene, points []orb.Point, cause error) {
	level := zap.WarnLevel
	if errors.Is(cause, directions.ErrNoRoute) || errors.Is(cause, context.Canceled) {
		level = zap.InfoLevel
	}
	r.logger.Check(level, "directions unavailable, drawing straight line").
		Write(zap.Int("points", len(points)), zap.Error(cause))

	line := make(orb.LineString, len(points))
	copy(line, points)
	scene.Path = line
	scene.Fallback = true

	metrics := route.EstimateMetrics(geo.LengthMeters(line), r.now())
	scene.Metrics = &metrics

	b, _ := geo.BoundOf(points)
	scene.Bounds = &b
}
