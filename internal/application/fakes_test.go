package application

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	hazardDomain "github.com/roadwatch/service-navigation/internal/domain/hazard"
	historyDomain "github.com/roadwatch/service-navigation/internal/domain/history"
	photoDomain "github.com/roadwatch/service-navigation/internal/domain/photo"
	routeDomain "github.com/roadwatch/service-navigation/internal/domain/route"
	tripDomain "github.com/roadwatch/service-navigation/internal/domain/trip"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
	"github.com/roadwatch/service-navigation/internal/platform/kafka"
)

type memHazards struct {
	mu      sync.Mutex
	hazards map[uuid.UUID]*hazardDomain.Hazard
	// covers receives the cover photo written alongside a new hazard.
	covers *memPhotos
	err    error
}

func newMemHazards() *memHazards {
	return &memHazards{hazards: make(map[uuid.UUID]*hazardDomain.Hazard)}
}

func (m *memHazards) FindByID(_ context.Context, id uuid.UUID) (*hazardDomain.Hazard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hazards[id]
	if !ok {
		return nil, domain.NewNotFoundError("Hazard", id.String())
	}
	return h, nil
}

func (m *memHazards) List(_ context.Context, f hazardDomain.ListFilter, page, limit int) ([]*hazardDomain.Hazard, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*hazardDomain.Hazard
	for _, h := range m.hazards {
		if f.Type != "" && h.Type() != f.Type {
			continue
		}
		if f.Status != "" && h.Status() != f.Status {
			continue
		}
		if f.Bound != nil && !f.Bound.Contains(h.Point()) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	total := int64(len(out))
	start := min((page-1)*limit, len(out))
	end := min(start+limit, len(out))
	return out[start:end], total, nil
}

func (m *memHazards) FindInBound(_ context.Context, b orb.Bound, statuses []hazardDomain.Status) ([]*hazardDomain.Hazard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*hazardDomain.Hazard
	for _, h := range m.hazards {
		if !b.Contains(h.Point()) {
			continue
		}
		for _, s := range statuses {
			if h.Status() == s {
				out = append(out, h)
				break
			}
		}
	}
	return out, nil
}

func (m *memHazards) CountByStatus(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, h := range m.hazards {
		out[string(h.Status())]++
	}
	return out, nil
}

func (m *memHazards) CountByType(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, h := range m.hazards {
		out[string(h.Type())]++
	}
	return out, nil
}

func (m *memHazards) Save(ctx context.Context, h *hazardDomain.Hazard, cover *photoDomain.HazardPhoto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if cover != nil && m.covers != nil {
		if err := m.covers.Save(ctx, cover); err != nil {
			return err
		}
	}
	m.hazards[h.ID()] = h
	return nil
}

func (m *memHazards) Update(_ context.Context, h *hazardDomain.Hazard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hazards[h.ID()] = h
	return nil
}

type memPhotos struct {
	mu     sync.Mutex
	photos []*photoDomain.HazardPhoto
	err    error
}

func (m *memPhotos) Save(_ context.Context, p *photoDomain.HazardPhoto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.photos = append(m.photos, p)
	return nil
}

func (m *memPhotos) FindByHazardID(_ context.Context, id uuid.UUID) ([]*photoDomain.HazardPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*photoDomain.HazardPhoto
	for _, p := range m.photos {
		if p.HazardID() == id {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPhotos) FindByID(_ context.Context, id uuid.UUID) (*photoDomain.HazardPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.photos {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("Photo", id.String())
}

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (m *memStore) Save(_ context.Context, key string, r io.Reader) (string, int64, error) {
	if m.err != nil {
		return "", 0, m.err
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return "", 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = buf.Bytes()
	return "/uploads/" + key, n, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

type memRoutes struct {
	mu     sync.Mutex
	routes map[uuid.UUID]*routeDomain.Route
}

func newMemRoutes() *memRoutes { return &memRoutes{routes: map[uuid.UUID]*routeDomain.Route{}} }

func (m *memRoutes) FindByID(_ context.Context, id uuid.UUID) (*routeDomain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return nil, domain.NewNotFoundError("Route", id.String())
	}
	return r, nil
}

func (m *memRoutes) FindByOwnerID(_ context.Context, owner uuid.UUID, page, limit int) ([]*routeDomain.Route, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*routeDomain.Route
	for _, r := range m.routes {
		if r.OwnerID() == owner {
			out = append(out, r)
		}
	}
	total := int64(len(out))
	start := min((page-1)*limit, len(out))
	end := min(start+limit, len(out))
	return out[start:end], total, nil
}

func (m *memRoutes) Save(_ context.Context, r *routeDomain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[r.ID()] = r
	return nil
}

type memHistory struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*historyDomain.Entry
}

func newMemHistory() *memHistory { return &memHistory{entries: map[uuid.UUID]*historyDomain.Entry{}} }

func (m *memHistory) RecordView(_ context.Context, e *historyDomain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.UserID() == e.UserID() && existing.RouteID() == e.RouteID() {
			existing.Touch(e.RouteLabel())
			return nil
		}
	}
	m.entries[e.ID()] = e
	return nil
}

func (m *memHistory) FindByUserID(_ context.Context, user uuid.UUID, favoritesOnly bool) ([]*historyDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*historyDomain.Entry
	for _, e := range m.entries {
		if e.UserID() == user && (!favoritesOnly || e.Favorite()) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memHistory) FindByID(_ context.Context, id uuid.UUID) (*historyDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, domain.NewNotFoundError("HistoryEntry", id.String())
	}
	return e, nil
}

func (m *memHistory) Update(context.Context, *historyDomain.Entry) error { return nil }

func (m *memHistory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *memHistory) DeleteByUserID(_ context.Context, user uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.entries {
		if e.UserID() == user {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

type memTrips struct {
	mu      sync.Mutex
	records []*tripDomain.Record
	saved   chan struct{}
}

func newMemTrips() *memTrips { return &memTrips{saved: make(chan struct{}, 8)} }

func (m *memTrips) Save(_ context.Context, r *tripDomain.Record) error {
	m.mu.Lock()
	m.records = append(m.records, r)
	m.mu.Unlock()
	m.saved <- struct{}{}
	return nil
}

func (m *memTrips) FindByUserID(_ context.Context, user uuid.UUID, page, limit int) ([]*tripDomain.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*tripDomain.Record
	for _, r := range m.records {
		if r.UserID() == user {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	topics []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, e kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func ptr[T any](v T) *T { return &v }
