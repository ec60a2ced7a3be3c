package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/roadwatch/service-navigation/internal/domain/route"
	"github.com/roadwatch/service-navigation/internal/domain/trip"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// Session is one user's navigation of one route: its scene and, once
// started, its simulation.
type Session struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	route     *route.Route
	createdAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	scene *Scene
	sim   *Simulator
	cfg   Config
}

func newSession(parent context.Context, ownerID uuid.UUID, r *route.Route) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		id:        uuid.New(),
		ownerID:   ownerID,
		route:     r,
		createdAt: time.Now().UTC(),
		ctx:       ctx,
		cancel:    cancel,
		scene:     NewScene(),
	}
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) OwnerID() uuid.UUID   { return s.ownerID }
func (s *Session) Route() *route.Route  { return s.route }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Render redraws the route into the session scene.
func (s *Session) Render(ctx context.Context, r *Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Render(ctx, s.scene, s.route.Locations())
}

// Select sets the selected hazard marker.
func (s *Session) Select(markerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene.Select(markerID)
}

// ClearSelection unsets the selected hazard marker.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.ClearSelection()
}

// Start launches a new simulation. A finished simulation may be replaced by
// a new one; a live one may not.
func (s *Session) Start(cfg Config, opts ...SimulatorOption) (*Simulator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return nil, domain.NewConflictError("navigation session is closed")
	}
	if s.sim != nil && !s.sim.State().IsFinal() {
		return nil, domain.NewInvalidStateError(string(s.sim.State()), string(StateRunning))
	}
	sim := NewSimulator(cfg, s.route.Locations(), opts...)
	if err := sim.Start(s.ctx); err != nil {
		return nil, err
	}
	s.sim = sim
	s.cfg = sim.cfg
	return sim, nil
}

// Simulator returns the current simulation.
func (s *Session) Simulator() (*Simulator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return nil, domain.NewInvalidStateError(string(StateIdle), string(StateRunning))
	}
	return s.sim, nil
}

// Summary summarises the current or last simulation.
func (s *Session) Summary(at time.Time) (trip.Summary, error) {
	s.mu.Lock()
	sim, cfg, meters := s.sim, s.cfg, s.routeMetersLocked()
	s.mu.Unlock()

	if sim == nil {
		return trip.Summary{}, domain.NewNotFoundError("trip", s.id.String())
	}
	frame := sim.Snapshot()
	return trip.Summarize(frame.Stats, meters, cfg.TotalDistance, frame.State == StateCompleted, at), nil
}

// RouteMeters returns the rendered route length, or 0 before a render.
func (s *Session) RouteMeters() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routeMetersLocked()
}

func (s *Session) routeMetersLocked() float64 {
	if s.scene.Metrics == nil {
		return 0
	}
	return s.scene.Metrics.DistanceMeters
}

// Close stops any simulation and invalidates the session.
func (s *Session) Close() {
	s.cancel()
	s.mu.Lock()
	sim := s.sim
	s.mu.Unlock()
	if sim != nil {
		sim.Stop()
	}
}

// View is a serialisable snapshot of a session.
type View struct {
	ID         uuid.UUID                  `json:"id"`
	RouteID    uuid.UUID                  `json:"route_id"`
	RouteLabel string                     `json:"route_label"`
	Markers    []Marker                   `json:"markers"`
	Metrics    *route.Metrics             `json:"metrics,omitempty"`
	Bounds     *orb.Bound                 `json:"bounds,omitempty"`
	Fallback   bool                       `json:"fallback"`
	Selected   *Marker                    `json:"selected,omitempty"`
	Geometry   *geojson.FeatureCollection `json:"geometry"`
	Simulation *Telemetry                 `json:"simulation,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:         s.id,
		RouteID:    s.route.ID(),
		RouteLabel: s.route.Label(),
		Markers:    append([]Marker(nil), s.scene.Markers...),
		Fallback:   s.scene.Fallback,
		Geometry:   s.scene.FeatureCollection(),
		CreatedAt:  s.createdAt,
	}
	if s.scene.Metrics != nil {
		m := *s.scene.Metrics
		v.Metrics = &m
	}
	if s.scene.Bounds != nil {
		b := *s.scene.Bounds
		v.Bounds = &b
	}
	if m, ok := s.scene.Selected(); ok {
		v.Selected = &m
	}
	if s.sim != nil {
		t := s.sim.Snapshot()
		v.Simulation = &t
	}
	return v
}

// SessionManager is the in-memory registry of open sessions.
type SessionManager struct {
	ctx context.Context

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionManager creates a registry whose sessions are cancelled with ctx.
func NewSessionManager(ctx context.Context) *SessionManager {
	return &SessionManager{ctx: ctx, sessions: make(map[uuid.UUID]*Session)}
}

// Open registers a new session for ownerID on r.
func (m *SessionManager) Open(ownerID uuid.UUID, r *route.Route) *Session {
	s := newSession(m.ctx, ownerID, r)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns the session if userID owns it.
func (m *SessionManager) Get(id, userID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.NewNotFoundError("navigation session", id.String())
	}
	if s.ownerID != userID {
		return nil, domain.NewForbiddenError("navigation session belongs to another user")
	}
	return s, nil
}

// Close tears down a session owned by userID.
func (m *SessionManager) Close(id, userID uuid.UUID) error {
	s, err := m.Get(id, userID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	s.Close()
	return nil
}

// CloseAll tears down every session.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Len returns the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
