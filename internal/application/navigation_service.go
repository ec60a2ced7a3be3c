package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	routeDomain "github.com/roadwatch/service-navigation/internal/domain/route"
	tripDomain "github.com/roadwatch/service-navigation/internal/domain/trip"
	"github.com/roadwatch/service-navigation/internal/navigation"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
	"github.com/roadwatch/service-navigation/internal/proto/events"
)

const tripPersistTimeout = 5 * time.Second

// NavigationService wires route loading, rendering and simulation into
// per-user navigation sessions.
type NavigationService struct {
	routes    routeDomain.Repository
	history   *HistoryService
	sessions  *navigation.SessionManager
	renderer  *navigation.Renderer
	simConfig navigation.Config
	publisher publisher
	logger    *zap.Logger
}

// NewNavigationService creates a new NavigationService.
func NewNavigationService(
	routes routeDomain.Repository,
	history *HistoryService,
	sessions *navigation.SessionManager,
	renderer *navigation.Renderer,
	simConfig navigation.Config,
	producer EventPublisher,
	logger *zap.Logger,
) *NavigationService {
	return &NavigationService{
		routes:    routes,
		history:   history,
		sessions:  sessions,
		renderer:  renderer,
		simConfig: simConfig.WithDefaults(),
		publisher: publisher{producer: producer, logger: logger},
		logger:    logger,
	}
}

// LoadRoute resolves a raw route_id query value into a stored route and
// records the view in the caller's history.
func (s *NavigationService) LoadRoute(ctx context.Context, userID uuid.UUID, rawRouteID string) (*routeDomain.Route, error) {
	rawRouteID = strings.TrimSpace(rawRouteID)
	if rawRouteID == "" {
		return nil, domain.NewValidationError("route_id is required")
	}
	routeID, err := uuid.Parse(rawRouteID)
	if err != nil {
		return nil, domain.NewValidationError("invalid route_id")
	}

	rt, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if err := s.history.RecordView(ctx, userID, rt.ID(), rt.Label()); err != nil {
		s.logger.Warn("failed to record route view",
			zap.String("route_id", rt.ID().String()),
			zap.Error(err),
		)
	}
	return rt, nil
}

// OpenSession loads the route, opens a session on it and renders it.
func (s *NavigationService) OpenSession(ctx context.Context, userID uuid.UUID, rawRouteID string) (*navigation.View, error) {
	rt, err := s.LoadRoute(ctx, userID, rawRouteID)
	if err != nil {
		return nil, err
	}

	session := s.sessions.Open(userID, rt)
	session.Render(ctx, s.renderer)

	s.logger.Info("navigation session opened",
		zap.String("session_id", session.ID().String()),
		zap.String("route_id", rt.ID().String()),
	)

	view := session.View()
	return &view, nil
}

// GetSession returns a snapshot of one of the caller's sessions.
func (s *NavigationService) GetSession(userID, sessionID uuid.UUID) (*navigation.View, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	view := session.View()
	return &view, nil
}

// Render redraws the session's route.
func (s *NavigationService) Render(ctx context.Context, userID, sessionID uuid.UUID) (*navigation.View, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.Render(ctx, s.renderer)
	view := session.View()
	return &view, nil
}

// Select marks a hazard marker as selected.
func (s *NavigationService) Select(userID, sessionID uuid.UUID, markerID string) (*navigation.View, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := session.Select(markerID); err != nil {
		return nil, err
	}
	view := session.View()
	return &view, nil
}

// ClearSelection unsets the selected marker.
func (s *NavigationService) ClearSelection(userID, sessionID uuid.UUID) (*navigation.View, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.ClearSelection()
	view := session.View()
	return &view, nil
}

// Start begins a simulated trip.
func (s *NavigationService) Start(userID, sessionID uuid.UUID) (*navigation.Telemetry, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	sim, err := session.Start(s.simConfig,
		navigation.WithLogger(s.logger.With(zap.String("session_id", sessionID.String()))),
		navigation.WithOnFinish(func(stats tripDomain.Stats, completed bool) {
			s.finishTrip(session, stats, completed)
		}),
	)
	if err != nil {
		return nil, err
	}
	frame := sim.Snapshot()
	return &frame, nil
}

// Pause suspends the running trip.
func (s *NavigationService) Pause(userID, sessionID uuid.UUID) (*navigation.Telemetry, error) {
	return s.control(userID, sessionID, (*navigation.Simulator).Pause)
}

// Resume continues a paused trip.
func (s *NavigationService) Resume(userID, sessionID uuid.UUID) (*navigation.Telemetry, error) {
	return s.control(userID, sessionID, (*navigation.Simulator).Resume)
}

// Stop ends the trip early.
func (s *NavigationService) Stop(userID, sessionID uuid.UUID) (*navigation.Telemetry, error) {
	return s.control(userID, sessionID, func(sim *navigation.Simulator) error {
		sim.Stop()
		return nil
	})
}

func (s *NavigationService) control(userID, sessionID uuid.UUID, op func(*navigation.Simulator) error) (*navigation.Telemetry, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	sim, err := session.Simulator()
	if err != nil {
		return nil, err
	}
	if err := op(sim); err != nil {
		return nil, err
	}
	frame := sim.Snapshot()
	return &frame, nil
}

// Subscribe streams telemetry of the session's current trip.
func (s *NavigationService) Subscribe(userID, sessionID uuid.UUID) (<-chan navigation.Telemetry, func(), error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	sim, err := session.Simulator()
	if err != nil {
		return nil, nil, err
	}
	frames, cancel := sim.Subscribe()
	return frames, cancel, nil
}

// Summary returns the summary of the current or last trip.
func (s *NavigationService) Summary(userID, sessionID uuid.UUID) (*tripDomain.Summary, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	summary, err := session.Summary(time.Now())
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// CloseSession tears a session down, stopping any running trip.
func (s *NavigationService) CloseSession(userID, sessionID uuid.UUID) error {
	return s.sessions.Close(sessionID, userID)
}

// Shutdown closes every open session.
func (s *NavigationService) Shutdown() {
	n := s.sessions.Len()
	s.sessions.CloseAll()
	s.logger.Info("navigation sessions closed", zap.Int("sessions", n))
}

// finishTrip persists the trip record and publishes trip.completed. It runs
// on the simulator's goroutine after the session context may already be
// cancelled, so it uses its own deadline.
func (s *NavigationService) finishTrip(session *navigation.Session, stats tripDomain.Stats, completed bool) {
	ctx, cancel := context.WithTimeout(context.Background(), tripPersistTimeout)
	defer cancel()

	summary := tripDomain.Summarize(stats, session.RouteMeters(), s.simConfig.TotalDistance, completed, stats.EndedAt)
	rec, err := tripDomain.NewRecord(session.OwnerID(), session.Route().ID(), summary, stats.StartedAt, stats.EndedAt)
	if err != nil {
		s.logger.Error("invalid trip record", zap.Error(err))
		return
	}
	if err := s.history.SaveTrip(ctx, rec); err != nil {
		s.logger.Error("failed to save trip",
			zap.String("session_id", session.ID().String()),
			zap.Error(err),
		)
	}

	s.logger.Info("trip finished",
		zap.String("trip_id", rec.ID().String()),
		zap.Bool("completed", completed),
		zap.Float64("progress", stats.Progress),
		zap.Int("hazards_avoided", stats.HazardsAvoided),
	)

	s.publisher.publish(ctx, events.TopicTripEvents, events.TripCompleted, rec.ID().String(), events.TripCompletedEvent{
		TripID:          rec.ID(),
		UserID:          rec.UserID(),
		RouteID:         rec.RouteID(),
		Completed:       completed,
		DurationSeconds: summary.DurationSeconds,
		HazardsAvoided:  summary.HazardsAvoided,
		AverageSpeedKmh: summary.AverageSpeedKmh,
		MaxSpeedKmh:     summary.MaxSpeedKmh,
		OccurredAt:      time.Now().UTC(),
	})
}
