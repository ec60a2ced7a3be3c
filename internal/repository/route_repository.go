package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	routeDomain "github.com/roadwatch/service-navigation/internal/domain/route"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// RouteModel is the GORM model for the routes table.
type RouteModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	Label           string          `gorm:"not null;size:200"`
	DepartureCity   string          `gorm:"not null;size:100"`
	DestinationCity string          `gorm:"not null;size:100"`
	Locations       json.RawMessage `gorm:"type:jsonb;not null"`
	Recommendation  string          `gorm:"type:text"`
	SafetyNotes     string          `gorm:"type:text"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RouteModel) TableName() string {
	return "routes"
}

// GormRouteRepository is the GORM-based implementation of route.Repository.
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GormRouteRepository.
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// FindByID retrieves a route by its unique identifier.
func (r *GormRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*routeDomain.Route, error) {
	var model RouteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Route", id.String())
		}
		return nil, fmt.Errorf("failed to find route by ID: %w", err)
	}
	return toDomainRoute(&model)
}

// FindByOwnerID retrieves routes planned by a user with pagination.
func (r *GormRouteRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*routeDomain.Route, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RouteModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner routes: %w", err)
	}

	var models []RouteModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner routes: %w", err)
	}

	routes := make([]*routeDomain.Route, len(models))
	for i := range models {
		rt, err := toDomainRoute(&models[i])
		if err != nil {
			return nil, 0, err
		}
		routes[i] = rt
	}
	return routes, total, nil
}

// Save persists a new route.
func (r *GormRouteRepository) Save(ctx context.Context, rt *routeDomain.Route) error {
	model, err := toRouteModel(rt)
	if err != nil {
		return fmt.Errorf("failed to convert route to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save route: %w", err)
	}
	return nil
}

func toRouteModel(rt *routeDomain.Route) (*RouteModel, error) {
	locationsJSON, err := json.Marshal(rt.Locations())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal locations: %w", err)
	}
	return &RouteModel{
		ID:              rt.ID(),
		OwnerID:         rt.OwnerID(),
		Label:           rt.Label(),
		DepartureCity:   rt.DepartureCity(),
		DestinationCity: rt.DestinationCity(),
		Locations:       locationsJSON,
		Recommendation:  rt.Recommendation(),
		SafetyNotes:     rt.SafetyNotes(),
		CreatedAt:       rt.CreatedAt(),
	}, nil
}

func toDomainRoute(m *RouteModel) (*routeDomain.Route, error) {
	var locations []routeDomain.Location
	if err := json.Unmarshal(m.Locations, &locations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal locations: %w", err)
	}
	return routeDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Label,
		m.DepartureCity,
		m.DestinationCity,
		locations,
		m.Recommendation,
		m.SafetyNotes,
		m.CreatedAt,
	), nil
}
