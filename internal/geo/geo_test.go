package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "dakar", lat: 14.6928, lng: -17.4467},
		{name: "poles and antimeridian", lat: -90, lng: 180},
		{name: "latitude too high", lat: 90.1, lng: 0, wantErr: true},
		{name: "longitude too low", lat: 0, lng: -180.1, wantErr: true},
		{name: "nan latitude", lat: math.NaN(), lng: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBoundOf(t *testing.T) {
	tests := []struct {
		name   string
		points []orb.Point
		want   orb.Bound
		ok     bool
	}{
		{name: "no points"},
		{
			name:   "single point",
			points: []orb.Point{Point(14.69, -17.44)},
			want:   orb.Bound{Min: orb.Point{-17.44, 14.69}, Max: orb.Point{-17.44, 14.69}},
			ok:     true,
		},
		{
			name:   "several points",
			points: []orb.Point{Point(14.69, -17.44), Point(14.79, -16.93), Point(14.50, -17.10)},
			want:   orb.Bound{Min: orb.Point{-17.44, 14.50}, Max: orb.Point{-16.93, 14.79}},
			ok:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BoundOf(tt.points)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalProjection_Project(t *testing.T) {
	origin := Point(60, 10)
	lp := NewLocalProjection(origin)

	tests := []struct {
		name  string
		point orb.Point
		east  float64
		north float64
	}{
		{name: "origin", point: origin},
		{name: "north", point: Point(60.01, 10), north: 1113.2},
		{name: "south", point: Point(59.99, 10), north: -1113.2},
		// cos(60°) halves a degree of longitude.
		{name: "east", point: Point(60, 10.01), east: 556.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lp.Project(tt.point)
			assert.InDelta(t, tt.east, got.X(), 0.1)
			assert.InDelta(t, tt.north, got.Y(), 0.1)
		})
	}
}

func TestLengthMeters(t *testing.T) {
	assert.Zero(t, LengthMeters(nil))
	assert.Zero(t, LengthMeters(orb.LineString{Point(14.69, -17.44)}))

	// One degree of latitude along a meridian.
	ls := orb.LineString{Point(0, 0), Point(0.5, 0), Point(1, 0)}
	assert.InDelta(t, 111_319.5, LengthMeters(ls), 1)
}

func TestBoundAround(t *testing.T) {
	center := Point(14.69, -17.44)
	b := BoundAround(center, 1000)

	assert.True(t, b.Contains(center))
	assert.InDelta(t, 2000, (b.Max.Lat()-b.Min.Lat())*metersPerDegreeLat, 20)
	assert.Greater(t, b.Max.Lon()-b.Min.Lon(), b.Max.Lat()-b.Min.Lat())
}

func TestSplitAntimeridian(t *testing.T) {
	tests := []struct {
		name  string
		bound orb.Bound
		want  []orb.Bound
	}{
		{
			name:  "inside range",
			bound: orb.Bound{Min: orb.Point{-18, 14}, Max: orb.Point{-16, 15}},
			want:  []orb.Bound{{Min: orb.Point{-18, 14}, Max: orb.Point{-16, 15}}},
		},
		{
			name:  "east overflow",
			bound: orb.Bound{Min: orb.Point{179, -17}, Max: orb.Point{181, -16}},
			want: []orb.Bound{
				{Min: orb.Point{179, -17}, Max: orb.Point{180, -16}},
				{Min: orb.Point{-180, -17}, Max: orb.Point{-179, -16}},
			},
		},
		{
			name:  "west overflow",
			bound: orb.Bound{Min: orb.Point{-181, 50}, Max: orb.Point{-179, 51}},
			want: []orb.Bound{
				{Min: orb.Point{179, 50}, Max: orb.Point{180, 51}},
				{Min: orb.Point{-180, 50}, Max: orb.Point{-179, 51}},
			},
		},
		{
			name:  "wrapped minimum",
			bound: orb.Bound{Min: orb.Point{170, 0}, Max: orb.Point{-170, 1}},
			want: []orb.Bound{
				{Min: orb.Point{170, 0}, Max: orb.Point{180, 1}},
				{Min: orb.Point{-180, 0}, Max: orb.Point{-170, 1}},
			},
		},
		{
			name:  "whole world with polar overflow",
			bound: orb.Bound{Min: orb.Point{-200, -95}, Max: orb.Point{200, 95}},
			want:  []orb.Bound{{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitAntimeridian(tt.bound)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i].Min.Lon(), got[i].Min.Lon(), 1e-9)
				assert.InDelta(t, tt.want[i].Max.Lon(), got[i].Max.Lon(), 1e-9)
				assert.InDelta(t, tt.want[i].Min.Lat(), got[i].Min.Lat(), 1e-9)
				assert.InDelta(t, tt.want[i].Max.Lat(), got[i].Max.Lat(), 1e-9)
			}
		})
	}
}

func TestBoundAround_NearAntimeridianSplits(t *testing.T) {
	b := BoundAround(Point(-16.5, 179.99), 5000)
	assert.True(t, b.Contains(orb.Point{179.99, -16.5}))
	require.Greater(t, b.Max.Lon(), 180.0)
	require.Less(t, b.Min.Lon(), b.Max.Lon())

	parts := SplitAntimeridian(b)
	require.Len(t, parts, 2)
	assert.Equal(t, 180.0, parts[0].Max.Lon())
	assert.Equal(t, -180.0, parts[1].Min.Lon())
}
