package trip

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_ElapsedExcludesPauses(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := Stats{StartedAt: start, PausedFor: 2 * time.Minute}

	assert.Equal(t, 8*time.Minute, s.Elapsed(start.Add(10*time.Minute)))

	s.PausedAt = start.Add(10 * time.Minute)
	assert.Equal(t, 8*time.Minute, s.Elapsed(start.Add(15*time.Minute)), "open pause is not counted")

	s.PausedAt = time.Time{}
	s.EndedAt = start.Add(20 * time.Minute)
	assert.Equal(t, 18*time.Minute, s.Elapsed(start.Add(time.Hour)))

	assert.Zero(t, Stats{}.Elapsed(start))
}

func TestSummarize(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	stats := Stats{
		Progress:       50,
		AverageSpeed:   60,
		MaxSpeed:       110,
		HazardsAvoided: 2,
		StartedAt:      start,
		EndedAt:        start.Add(30 * time.Minute),
	}

	t.Run("with route length", func(t *testing.T) {
		s := Summarize(stats, 40_000, 100, false, start.Add(time.Hour))
		assert.Equal(t, 1800.0, s.DurationSeconds)
		assert.Equal(t, "30 min", s.DurationText)
		assert.Equal(t, 20_000.0, s.DistanceMeters)
		assert.Equal(t, "20.0 km", s.DistanceText)
		assert.False(t, s.DistanceEstimate)
		assert.Equal(t, 2, s.HazardsAvoided)
		assert.False(t, s.Completed)
	})

	t.Run("placeholder units", func(t *testing.T) {
		s := Summarize(stats, 0, 100, true, start.Add(time.Hour))
		assert.True(t, s.DistanceEstimate)
		assert.Equal(t, "50 units", s.DistanceText)
		assert.True(t, s.Completed)
	})
}

func TestNewRecord(t *testing.T) {
	now := time.Now()
	r, err := NewRecord(uuid.New(), uuid.New(), Summary{Completed: true}, now.Add(-time.Minute), now)
	require.NoError(t, err)
	assert.True(t, r.Completed())

	_, err = NewRecord(uuid.New(), uuid.New(), Summary{}, now, now.Add(-time.Minute))
	assert.Error(t, err)
	_, err = NewRecord(uuid.Nil, uuid.New(), Summary{}, now, now)
	assert.Error(t, err)
}
