package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gorm.io/gorm"

	hazardDomain "github.com/roadwatch/service-navigation/internal/domain/hazard"
	photoDomain "github.com/roadwatch/service-navigation/internal/domain/photo"
	"github.com/roadwatch/service-navigation/internal/geo"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// HazardModel is the GORM model for the hazards table.
type HazardModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReporterID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type       string          `gorm:"not null;size:30;index"`
	Label      string          `gorm:"not null;size:200"`
	Latitude   float64         `gorm:"not null;index:idx_hazards_position,priority:1"`
	Longitude  float64         `gorm:"not null;index:idx_hazards_position,priority:2"`
	Icon       string          `gorm:"size:200"`
	Advisory   json.RawMessage `gorm:"type:jsonb;not null"`
	PhotoURL   string          `gorm:"type:text"`
	Status     string          `gorm:"not null;size:20;index"`
	StatusNote string          `gorm:"size:500"`
	Version    int64           `gorm:"not null;default:1"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HazardModel) TableName() string {
	return "hazards"
}

// GormHazardRepository is the GORM-based implementation of hazard.Repository.
type GormHazardRepository struct {
	db *gorm.DB
}

// NewGormHazardRepository creates a new GormHazardRepository.
func NewGormHazardRepository(db *gorm.DB) *GormHazardRepository {
	return &GormHazardRepository{db: db}
}

// FindByID retrieves a hazard by its unique identifier.
func (r *GormHazardRepository) FindByID(ctx context.Context, id uuid.UUID) (*hazardDomain.Hazard, error) {
	var model HazardModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Hazard", id.String())
		}
		return nil, fmt.Errorf("failed to find hazard by ID: %w", err)
	}
	return toDomainHazard(&model)
}

// List retrieves hazards matching filter with pagination, newest first.
func (r *GormHazardRepository) List(ctx context.Context, filter hazardDomain.ListFilter, page, limit int) ([]*hazardDomain.Hazard, int64, error) {
	query := r.db.WithContext(ctx).Model(&HazardModel{})
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Bound != nil {
		query = withinBound(query, *filter.Bound)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count hazards: %w", err)
	}

	var models []HazardModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list hazards: %w", err)
	}

	hazards, err := toDomainHazards(models)
	if err != nil {
		return nil, 0, err
	}
	return hazards, total, nil
}

// FindInBound retrieves every hazard inside bound whose status is in statuses.
func (r *GormHazardRepository) FindInBound(ctx context.Context, bound orb.Bound, statuses []hazardDomain.Status) ([]*hazardDomain.Hazard, error) {
	query := withinBound(r.db.WithContext(ctx).Model(&HazardModel{}), bound)
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query = query.Where("status IN ?", values)
	}

	var models []HazardModel
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find hazards in bound: %w", err)
	}
	return toDomainHazards(models)
}

// CountByStatus returns hazard counts grouped by status (admin).
func (r *GormHazardRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "status")
}

// CountByType returns hazard counts grouped by type (admin).
func (r *GormHazardRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "type")
}

func (r *GormHazardRepository) countBy(ctx context.Context, column string) (map[string]int64, error) {
	type groupCount struct {
		Key   string
		Count int64
	}
	var results []groupCount
	if err := r.db.WithContext(ctx).Model(&HazardModel{}).
		Select(column + " as key, count(*) as count").
		Group(column).
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count hazards by %s: %w", column, err)
	}

	counts := make(map[string]int64)
	for _, gc := range results {
		counts[gc.Key] = gc.Count
	}
	return counts, nil
}

// Save persists a new hazard and its optional cover photo in one transaction.
func (r *GormHazardRepository) Save(ctx context.Context, h *hazardDomain.Hazard, cover *photoDomain.HazardPhoto) error {
	model, err := toHazardModel(h)
	if err != nil {
		return fmt.Errorf("failed to convert hazard to model: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save hazard: %w", err)
		}
		if cover == nil {
			return nil
		}
		photo := toPhotoModel(cover)
		if err := tx.Create(&photo).Error; err != nil {
			return fmt.Errorf("failed to save hazard photo: %w", err)
		}
		return nil
	})
}

// Update persists changes to an existing hazard with optimistic locking.
func (r *GormHazardRepository) Update(ctx context.Context, h *hazardDomain.Hazard) error {
	model, err := toHazardModel(h)
	if err != nil {
		return fmt.Errorf("failed to convert hazard to model: %w", err)
	}

	// IncrementVersion has already been called, so the stored row holds version-1.
	expectedVersion := h.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&HazardModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"label":       model.Label,
			"advisory":    model.Advisory,
			"photo_url":   model.PhotoURL,
			"status":      model.Status,
			"status_note": model.StatusNote,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update hazard: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("hazard was modified by another transaction")
	}

	return nil
}

// withinBound restricts query to b. Bounds crossing the antimeridian match
// either longitude range.
func withinBound(query *gorm.DB, b orb.Bound) *gorm.DB {
	sql, args := boundCondition(b)
	return query.Where(sql, args...)
}

func boundCondition(b orb.Bound) (string, []interface{}) {
	parts := geo.SplitAntimeridian(b)
	lonSQL := make([]string, len(parts))
	args := []interface{}{parts[0].Min.Lat(), parts[0].Max.Lat()}
	for i, part := range parts {
		lonSQL[i] = "longitude BETWEEN ? AND ?"
		args = append(args, part.Min.Lon(), part.Max.Lon())
	}
	return "latitude BETWEEN ? AND ? AND (" + strings.Join(lonSQL, " OR ") + ")", args
}

// --- Conversion Helpers ---

func toHazardModel(h *hazardDomain.Hazard) (*HazardModel, error) {
	advisoryJSON, err := json.Marshal(h.Advisory())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal advisory: %w", err)
	}

	return &HazardModel{
		ID:         h.ID(),
		ReporterID: h.ReporterID(),
		Type:       string(h.Type()),
		Label:      h.Label(),
		Latitude:   h.Latitude(),
		Longitude:  h.Longitude(),
		Icon:       h.Icon(),
		Advisory:   advisoryJSON,
		PhotoURL:   h.PhotoURL(),
		Status:     string(h.Status()),
		StatusNote: h.StatusNote(),
		Version:    h.Version(),
		CreatedAt:  h.CreatedAt(),
		UpdatedAt:  h.UpdatedAt(),
	}, nil
}

func toDomainHazard(m *HazardModel) (*hazardDomain.Hazard, error) {
	var advisory hazardDomain.Advisory
	if len(m.Advisory) > 0 {
		if err := json.Unmarshal(m.Advisory, &advisory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal advisory: %w", err)
		}
	}

	status, err := hazardDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	hazardType, err := hazardDomain.ParseType(m.Type)
	if err != nil {
		return nil, err
	}

	return hazardDomain.Reconstruct(
		m.ID,
		m.ReporterID,
		hazardType,
		m.Label,
		m.Latitude,
		m.Longitude,
		m.Icon,
		advisory,
		m.PhotoURL,
		status,
		m.StatusNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainHazards(models []HazardModel) ([]*hazardDomain.Hazard, error) {
	hazards := make([]*hazardDomain.Hazard, len(models))
	for i := range models {
		h, err := toDomainHazard(&models[i])
		if err != nil {
			return nil, err
		}
		hazards[i] = h
	}
	return hazards, nil
}
