package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roadwatch/service-navigation/internal/directions"
	"github.com/roadwatch/service-navigation/internal/domain/route"
)

type fakeProvider struct {
	calls  int
	last   directions.Request
	result *directions.Result
	err    error
}

func (f *fakeProvider) Route(_ context.Context, req directions.Request) (*directions.Result, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

var fixedNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newTestRenderer(p directions.Provider) *Renderer {
	return NewRenderer(p, zap.NewNop(), WithRendererClock(func() time.Time { return fixedNow }))
}

func threeStops() []route.Location {
	lat := 33.7
	return []route.Location{
		route.NewLocation(33.5, -7.6, "start"),
		{Latitude: &lat, Label: "missing longitude"},
		route.NewLocation(33.8, -7.2, "middle"),
		route.NewLocation(34.0, -6.8, "end"),
	}
}

func TestRenderer_Success(t *testing.T) {
	p := &fakeProvider{result: &directions.Result{Routes: []directions.Route{
		{
			// Deliberately does not reach the last waypoint.
			Geometry:        orb.LineString{{-7.6, 33.5}, {-7.2, 33.8}, {-6.9, 33.95}},
			DistanceMeters:  95_000,
			DurationSeconds: 3900,
			// Metrics use the totals, not the first leg.
			Legs: []directions.Leg{
				{DistanceMeters: 40_000, DurationSeconds: 1700},
				{DistanceMeters: 55_000, DurationSeconds: 2200},
			},
		},
		{Geometry: orb.LineString{{-7.6, 33.5}, {-6.8, 34.0}}, DistanceMeters: 99_000, DurationSeconds: 4200},
	}}}
	scene := NewScene()

	newTestRenderer(p).Render(context.Background(), scene, threeStops())

	require.Equal(t, 1, p.calls)
	assert.Equal(t, orb.Point{-7.6, 33.5}, p.last.Origin)
	assert.Equal(t, orb.Point{-6.8, 34.0}, p.last.Destination)
	assert.Equal(t, []orb.Point{{-7.2, 33.8}}, p.last.Waypoints)
	assert.True(t, p.last.Alternatives)
	assert.True(t, p.last.Traffic)

	ids := make([]string, len(scene.Markers))
	for i, m := range scene.Markers {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"m0", "m2", "m3"}, ids)

	assert.False(t, scene.Fallback)
	assert.Len(t, scene.Path, 3)
	assert.Len(t, scene.Alternatives, 1)
	require.NotNil(t, scene.Metrics)
	assert.Equal(t, "95.0 km", scene.Metrics.DistanceText)
	assert.Equal(t, "1 h 5 min", scene.Metrics.DurationText)
	assert.Equal(t, "10:05", scene.Metrics.ETAText)

	require.NotNil(t, scene.Bounds)
	for _, m := range scene.Markers {
		assert.True(t, scene.Bounds.Contains(m.Point), "bounds must contain %s", m.ID)
	}
}

func TestRenderer_FallbackOnFailure(t *testing.T) {
	for _, err := range []error{directions.ErrNoRoute, errors.New("connection refused")} {
		t.Run(err.Error(), func(t *testing.T) {
			p := &fakeProvider{err: err}
			scene := NewScene()

			newTestRenderer(p).Render(context.Background(), scene, threeStops())

			assert.Equal(t, 1, p.calls, "no retry")
			assert.True(t, scene.Fallback)
			want := orb.LineString{{-7.6, 33.5}, {-7.2, 33.8}, {-6.8, 34.0}}
			if diff := cmp.Diff(want, scene.Path); diff != "" {
				t.Errorf("fallback path mismatch (-want +got):\n%s", diff)
			}
			assert.Empty(t, scene.Alternatives)
			require.NotNil(t, scene.Metrics)
			assert.True(t, scene.Metrics.Estimated)
			assert.Greater(t, scene.Metrics.DistanceMeters, 0.0)
			require.NotNil(t, scene.Bounds)
			for _, pt := range want {
				assert.True(t, scene.Bounds.Contains(pt))
			}
		})
	}
}

func TestRenderer_FewerThanTwoPoints(t *testing.T) {
	p := &fakeProvider{}
	scene := NewScene()
	lat := 1.0

	newTestRenderer(p).Render(context.Background(), scene, []route.Location{
		route.NewLocation(33.5, -7.6, "only"),
		{Latitude: &lat},
	})

	assert.Zero(t, p.calls)
	assert.Len(t, scene.Markers, 1)
	assert.Nil(t, scene.Path)
	assert.Nil(t, scene.Metrics)
	require.NotNil(t, scene.Bounds)
	assert.True(t, scene.Bounds.Contains(orb.Point{-7.6, 33.5}))

	newTestRenderer(p).Render(context.Background(), scene, nil)
	assert.Empty(t, scene.Markers)
	assert.Nil(t, scene.Bounds)
	assert.Zero(t, p.calls)
}

func TestRenderer_RerenderClearsScene(t *testing.T) {
	p := &fakeProvider{err: directions.ErrNoRoute}
	scene := NewScene()
	r := newTestRenderer(p)

	r.Render(context.Background(), scene, threeStops())
	require.NoError(t, scene.Select("m2"))

	r.Render(context.Background(), scene, []route.Location{route.NewLocation(1, 1, "solo")})

	assert.Len(t, scene.Markers, 1)
	assert.False(t, scene.Fallback)
	_, selected := scene.Selected()
	assert.False(t, selected)
}

func TestScene_SelectionAndGeoJSON(t *testing.T) {
	p := &fakeProvider{err: directions.ErrNoRoute}
	scene := NewScene()
	newTestRenderer(p).Render(context.Background(), scene, threeStops())

	assert.Error(t, scene.Select("m1"), "marker for invalid point does not exist")
	require.NoError(t, scene.Select("m3"))
	m, ok := scene.Selected()
	require.True(t, ok)
	assert.Equal(t, "end", m.Location.Label)

	fc := scene.FeatureCollection()
	require.Len(t, fc.Features, 4)
	assert.Equal(t, "Point", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, true, fc.Features[2].Properties["selected"])
	assert.Equal(t, "LineString", fc.Features[3].Geometry.GeoJSONType())
	assert.Equal(t, true, fc.Features[3].Properties["fallback"])
	assert.Len(t, fc.BBox, 4)

	scene.ClearSelection()
	_, ok = scene.Selected()
	assert.False(t, ok)
}
