package route

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoute(t *testing.T) {
	locs := []Location{NewLocation(33.57, -7.59, "Casablanca"), NewLocation(34.02, -6.84, "Rabat")}

	r, err := NewRoute(uuid.New(), "", " Casablanca ", "Rabat", locs, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Casablanca → Rabat", r.Label())
	assert.Equal(t, "Casablanca", r.DepartureCity())

	// Locations are defensive copies.
	got := r.Locations()
	*got[0].Latitude = 0
	assert.Equal(t, 33.57, *r.Locations()[0].Latitude)

	_, err = NewRoute(uuid.New(), "x", "", "Rabat", locs, "", "")
	assert.Error(t, err)
	_, err = NewRoute(uuid.New(), "x", "A", "B", nil, "", "")
	assert.Error(t, err)
	_, err = NewRoute(uuid.Nil, "x", "A", "B", locs, "", "")
	assert.Error(t, err)
}

func TestValidPoints_SkipsMissingCoordinates(t *testing.T) {
	lat := 10.0
	locs := []Location{
		NewLocation(1, 1, "a"),
		{Latitude: &lat, Label: "no lng"},
		{Label: "nothing"},
		NewLocation(2, 2, "b"),
	}

	valid := ValidPoints(locs)
	require.Len(t, valid, 2)
	assert.Equal(t, 0, valid[0].Index)
	assert.Equal(t, 3, valid[1].Index)
	assert.Equal(t, 2.0, valid[1].Point.Lat())
}

func TestHazardPoints_SkipsEndpoints(t *testing.T) {
	id := uuid.New()
	hazard := NewLocation(1.5, 1.5, "pothole")
	hazard.HazardID = &id
	unlocated := Location{HazardID: &id, Label: "unlocated"}

	got := HazardPoints([]Location{NewLocation(1, 1, "origin"), unlocated, hazard, NewLocation(2, 2, "destination")})
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Index)
	assert.True(t, got[0].Location.IsHazard())
	assert.False(t, NewLocation(1, 1, "origin").IsHazard())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "850 m", FormatDistance(849.6))
	assert.Equal(t, "12.3 km", FormatDistance(12_345))
	assert.Equal(t, "1 min", FormatDuration(10*time.Second))
	assert.Equal(t, "45 min", FormatDuration(45*time.Minute))
	assert.Equal(t, "2 h", FormatDuration(2*time.Hour))
	assert.Equal(t, "1 h 5 min", FormatDuration(65*time.Minute))
}

func TestMetrics(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

	m := NewMetrics(30_000, 1800, now)
	assert.Equal(t, "30.0 km", m.DistanceText)
	assert.Equal(t, "30 min", m.DurationText)
	assert.Equal(t, "14:30", m.ETAText)
	assert.False(t, m.Estimated)

	est := EstimateMetrics(50_000, now)
	assert.True(t, est.Estimated)
	assert.InDelta(t, 3600, est.DurationSeconds, 0.001)
	assert.Equal(t, "15:00", est.ETAText)
}

func TestCorridorPlanner_Plan(t *testing.T) {
	origin := NewLocation(0, 0, "origin")
	dest := NewLocation(0, 1, "destination")

	candidates := []Location{
		NewLocation(0.001, 0.8, "late"),
		NewLocation(0.5, 0.5, "far off"),
		NewLocation(-0.001, 0.2, "early"),
		{Label: "no coordinates"},
		NewLocation(0.0, 0.5, "middle"),
	}

	p := NewCorridorPlanner(1000)
	got := p.Plan(origin, dest, candidates)

	labels := make([]string, len(got))
	for i, l := range got {
		labels[i] = l.Label
	}
	assert.Equal(t, []string{"origin", "early", "middle", "late", "destination"}, labels)
}

func TestCorridorPlanner_SearchBound(t *testing.T) {
	p := NewCorridorPlanner(0)
	assert.Equal(t, DefaultCorridorMeters, p.Width())

	o, _ := NewLocation(33.5, -7.6, "").Point()
	d, _ := NewLocation(34.0, -6.8, "").Point()
	b := p.SearchBound(o, d)
	assert.True(t, b.Contains(o))
	assert.True(t, b.Contains(d))
}

func TestCorridorPlanner_SearchBoundAtAntimeridian(t *testing.T) {
	p := NewCorridorPlanner(5000)
	o, _ := NewLocation(-16.50, 179.98, "").Point()
	d, _ := NewLocation(-16.40, 179.60, "").Point()

	b := p.SearchBound(o, d)
	assert.Less(t, b.Min.Lon(), b.Max.Lon())
	assert.True(t, b.Contains(o))
	assert.True(t, b.Contains(d))
	assert.Greater(t, b.Max.Lon(), 180.0)
	assert.Less(t, b.Max.Lon()-b.Min.Lon(), 1.0)
}
