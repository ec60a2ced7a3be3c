package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwatch/service-navigation/internal/directions"
	"github.com/roadwatch/service-navigation/internal/domain/route"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

func testRoute(t *testing.T, owner uuid.UUID) *route.Route {
	t.Helper()
	r, err := route.NewRoute(owner, "", "Casablanca", "Rabat", hazardsRoute(), "", "")
	require.NoError(t, err)
	return r
}

func TestSessionManager_Ownership(t *testing.T) {
	m := NewSessionManager(context.Background())
	owner := uuid.New()
	s := m.Open(owner, testRoute(t, owner))

	got, err := m.Get(s.ID(), owner)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get(s.ID(), uuid.New())
	var forbidden *domain.ForbiddenError
	assert.True(t, errors.As(err, &forbidden))

	_, err = m.Get(uuid.New(), owner)
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	assert.Error(t, m.Close(s.ID(), uuid.New()))
	require.NoError(t, m.Close(s.ID(), owner))
	assert.Zero(t, m.Len())
}

func TestSession_RenderSimulateSummarize(t *testing.T) {
	m := NewSessionManager(context.Background())
	owner := uuid.New()
	s := m.Open(owner, testRoute(t, owner))
	defer m.CloseAll()

	s.Render(context.Background(), newTestRenderer(&fakeProvider{err: directions.ErrNoRoute}))
	require.NoError(t, s.Select("m3"))

	v := s.View()
	assert.Len(t, v.Markers, 5)
	assert.True(t, v.Fallback)
	require.NotNil(t, v.Selected)
	assert.Equal(t, "pothole", v.Selected.Location.Label)
	assert.Nil(t, v.Simulation)

	_, err := s.Summary(time.Now())
	assert.Error(t, err, "no trip before start")

	cfg := DefaultConfig()
	cfg.Interval = time.Millisecond
	cfg.ProgressStep = 50
	sim, err := s.Start(cfg)
	require.NoError(t, err)
	<-sim.Done()

	sum, err := s.Summary(time.Now())
	require.NoError(t, err)
	assert.True(t, sum.Completed)
	assert.False(t, sum.DistanceEstimate)
	assert.InDelta(t, s.RouteMeters(), sum.DistanceMeters, 1e-6)

	// A finished trip can be replaced by a new one.
	cfg.Interval = time.Hour
	sim2, err := s.Start(cfg)
	require.NoError(t, err)
	_, err = s.Start(cfg)
	assert.Error(t, err)
	s.ClearSelection()
	assert.Nil(t, s.View().Selected)

	s.Close()
	<-sim2.Done()
	assert.Equal(t, StateStopped, sim2.State())

	_, err = s.Start(cfg)
	assert.Error(t, err, "closed sessions cannot start")
}

func TestSessionManager_CloseAllStopsSimulations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewSessionManager(ctx)

	var sims []*Simulator
	for i := 0; i < 3; i++ {
		owner := uuid.New()
		s := m.Open(owner, testRoute(t, owner))
		cfg := DefaultConfig()
		cfg.Interval = time.Hour
		sim, err := s.Start(cfg)
		require.NoError(t, err)
		sims = append(sims, sim)
	}

	m.CloseAll()
	for _, sim := range sims {
		<-sim.Done()
		assert.Equal(t, StateStopped, sim.State())
	}
	assert.Zero(t, m.Len())
}
