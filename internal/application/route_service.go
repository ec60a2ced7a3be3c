package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	hazardDomain "github.com/roadwatch/service-navigation/internal/domain/hazard"
	routeDomain "github.com/roadwatch/service-navigation/internal/domain/route"
	"github.com/roadwatch/service-navigation/internal/geo"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// Coordinate is a latitude/longitude pair in a request body.
type Coordinate struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// PlanRouteRequest holds the data needed to plan a route.
type PlanRouteRequest struct {
	Label           string     `json:"label"`
	DepartureCity   string     `json:"departure_city" binding:"required"`
	DestinationCity string     `json:"destination_city" binding:"required"`
	Origin          Coordinate `json:"origin" binding:"required"`
	Destination     Coordinate `json:"destination" binding:"required"`
	CorridorMeters  float64    `json:"corridor_m"`
	Recommendation  string     `json:"recommendation"`
	SafetyNotes     string     `json:"safety_notes"`
}

// RouteDTO is the response representation of a route.
type RouteDTO struct {
	ID              uuid.UUID              `json:"id"`
	OwnerID         uuid.UUID              `json:"owner_id"`
	Label           string                 `json:"label"`
	DepartureCity   string                 `json:"departure_city"`
	DestinationCity string                 `json:"destination_city"`
	Locations       []routeDomain.Location `json:"locations"`
	HazardCount     int                    `json:"hazard_count"`
	Recommendation  string                 `json:"recommendation,omitempty"`
	SafetyNotes     string                 `json:"safety_notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// RouteService plans and serves routes.
type RouteService struct {
	repo    routeDomain.Repository
	hazards hazardDomain.Repository
	logger  *zap.Logger
}

// NewRouteService creates a new RouteService.
func NewRouteService(repo routeDomain.Repository, hazards hazardDomain.Repository, logger *zap.Logger) *RouteService {
	return &RouteService{repo: repo, hazards: hazards, logger: logger}
}

// PlanRoute builds a route from origin to destination through the active
// hazards inside the requested corridor.
func (s *RouteService) PlanRoute(ctx context.Context, ownerID uuid.UUID, req PlanRouteRequest) (*RouteDTO, error) {
	origin, err := coordinateLocation(req.Origin, req.DepartureCity)
	if err != nil {
		return nil, err
	}
	destination, err := coordinateLocation(req.Destination, req.DestinationCity)
	if err != nil {
		return nil, err
	}

	planner := routeDomain.NewCorridorPlanner(req.CorridorMeters)
	op, _ := origin.Point()
	dp, _ := destination.Point()

	hazards, err := s.hazards.FindInBound(ctx, planner.SearchBound(op, dp), hazardDomain.ActiveStatuses())
	if err != nil {
		return nil, fmt.Errorf("failed to load corridor hazards: %w", err)
	}
	candidates := make([]routeDomain.Location, len(hazards))
	for i, h := range hazards {
		candidates[i] = hazardLocation(h)
	}

	rt, err := routeDomain.NewRoute(
		ownerID,
		req.Label,
		req.DepartureCity,
		req.DestinationCity,
		planner.Plan(origin, destination, candidates),
		req.Recommendation,
		req.SafetyNotes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to save route: %w", err)
	}

	s.logger.Info("route planned",
		zap.String("route_id", rt.ID().String()),
		zap.Int("hazards", len(rt.Locations())-2),
		zap.Float64("corridor_m", planner.Width()),
	)

	result := toRouteDTO(rt)
	return &result, nil
}

// GetRoute retrieves a route by ID.
func (s *RouteService) GetRoute(ctx context.Context, id uuid.UUID) (*RouteDTO, error) {
	rt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toRouteDTO(rt)
	return &result, nil
}

// GetRoutePoints returns the ordered points of a route.
func (s *RouteService) GetRoutePoints(ctx context.Context, id uuid.UUID) ([]routeDomain.Location, error) {
	rt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rt.Locations(), nil
}

// ListRoutes returns the routes planned by ownerID.
func (s *RouteService) ListRoutes(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[RouteDTO], error) {
	routes, total, err := s.repo.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]RouteDTO, len(routes))
	for i, rt := range routes {
		dtos[i] = toRouteDTO(rt)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

func coordinateLocation(c Coordinate, label string) (routeDomain.Location, error) {
	if c.Lat == nil || c.Lng == nil {
		return routeDomain.Location{}, domain.NewValidationError("coordinates are required for " + label)
	}
	if err := geo.ValidateCoordinates(*c.Lat, *c.Lng); err != nil {
		return routeDomain.Location{}, domain.NewValidationError(err.Error())
	}
	return routeDomain.NewLocation(*c.Lat, *c.Lng, label), nil
}

func hazardLocation(h *hazardDomain.Hazard) routeDomain.Location {
	id := h.ID()
	lat, lng := h.Latitude(), h.Longitude()
	adv := h.Advisory()
	return routeDomain.Location{
		HazardID:            &id,
		Latitude:            &lat,
		Longitude:           &lng,
		Label:               h.Label(),
		Icon:                h.Icon(),
		Precaution:          adv.Precaution,
		RecommendedSpeedKmh: adv.RecommendedSpeedKmh,
		Consequence:         adv.Consequence,
	}
}

func toRouteDTO(rt *routeDomain.Route) RouteDTO {
	locations := rt.Locations()
	hazards := 0
	for _, l := range locations {
		if l.HazardID != nil {
			hazards++
		}
	}
	return RouteDTO{
		ID:              rt.ID(),
		OwnerID:         rt.OwnerID(),
		Label:           rt.Label(),
		DepartureCity:   rt.DepartureCity(),
		DestinationCity: rt.DestinationCity(),
		Locations:       locations,
		HazardCount:     hazards,
		Recommendation:  rt.Recommendation(),
		SafetyNotes:     rt.SafetyNotes(),
		CreatedAt:       rt.CreatedAt(),
	}
}
