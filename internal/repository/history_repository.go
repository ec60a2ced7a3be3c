package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	historyDomain "github.com/roadwatch/service-navigation/internal/domain/history"
	tripDomain "github.com/roadwatch/service-navigation/internal/domain/trip"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// HistoryEntryModel is the GORM model for the history_entries table.
type HistoryEntryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_history_user_route,priority:1"`
	RouteID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_history_user_route,priority:2"`
	RouteLabel string    `gorm:"size:200"`
	Favorite   bool      `gorm:"not null;default:false"`
	ViewedAt   time.Time `gorm:"not null;index"`
}

// TableName sets the table name.
func (HistoryEntryModel) TableName() string { return "history_entries" }

// TripRecordModel is the GORM model for the trip_records table.
type TripRecordModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	RouteID   uuid.UUID       `gorm:"type:uuid;not null"`
	Summary   json.RawMessage `gorm:"type:jsonb;not null"`
	Completed bool            `gorm:"not null"`
	StartedAt time.Time       `gorm:"not null"`
	EndedAt   time.Time       `gorm:"not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName sets the table name.
func (TripRecordModel) TableName() string { return "trip_records" }

// GormHistoryRepository implements history.Repository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository.
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// RecordView upserts on (user_id, route_id), keeping the favourite flag.
func (r *GormHistoryRepository) RecordView(ctx context.Context, e *historyDomain.Entry) error {
	model := toHistoryModel(e)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "route_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"route_label", "viewed_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to record history view: %w", err)
	}
	return nil
}

// FindByUserID lists a user's entries, most recent first.
func (r *GormHistoryRepository) FindByUserID(ctx context.Context, userID uuid.UUID, favoritesOnly bool) ([]*historyDomain.Entry, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if favoritesOnly {
		query = query.Where("favorite = ?", true)
	}

	var models []HistoryEntryModel
	if err := query.Order("viewed_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find history: %w", err)
	}

	entries := make([]*historyDomain.Entry, len(models))
	for i := range models {
		entries[i] = toHistoryDomain(&models[i])
	}
	return entries, nil
}

// FindByID returns a single entry.
func (r *GormHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*historyDomain.Entry, error) {
	var model HistoryEntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("HistoryEntry", id.String())
		}
		return nil, fmt.Errorf("failed to find history entry: %w", err)
	}
	return toHistoryDomain(&model), nil
}

// Update persists the favourite flag, label and view time of an entry.
func (r *GormHistoryRepository) Update(ctx context.Context, e *historyDomain.Entry) error {
	result := r.db.WithContext(ctx).
		Model(&HistoryEntryModel{}).
		Where("id = ?", e.ID()).
		Updates(map[string]interface{}{
			"route_label": e.RouteLabel(),
			"favorite":    e.Favorite(),
			"viewed_at":   e.ViewedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update history entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("HistoryEntry", e.ID().String())
	}
	return nil
}

// Delete removes a single entry.
func (r *GormHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&HistoryEntryModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete history entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("HistoryEntry", id.String())
	}
	return nil
}

// DeleteByUserID removes every entry of a user.
func (r *GormHistoryRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&HistoryEntryModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GormTripRepository implements trip.Repository using GORM.
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GormTripRepository.
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// Save persists a finished trip.
func (r *GormTripRepository) Save(ctx context.Context, rec *tripDomain.Record) error {
	summaryJSON, err := json.Marshal(rec.Summary())
	if err != nil {
		return fmt.Errorf("failed to marshal trip summary: %w", err)
	}
	model := TripRecordModel{
		ID:        rec.ID(),
		UserID:    rec.UserID(),
		RouteID:   rec.RouteID(),
		Summary:   summaryJSON,
		Completed: rec.Completed(),
		StartedAt: rec.StartedAt(),
		EndedAt:   rec.EndedAt(),
		CreatedAt: rec.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save trip record: %w", err)
	}
	return nil
}

// FindByUserID lists a user's trips with pagination, newest first.
func (r *GormTripRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*tripDomain.Record, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TripRecordModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	var models []TripRecordModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ended_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find trips: %w", err)
	}

	records := make([]*tripDomain.Record, len(models))
	for i, m := range models {
		var summary tripDomain.Summary
		if err := json.Unmarshal(m.Summary, &summary); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal trip summary: %w", err)
		}
		records[i] = tripDomain.ReconstructRecord(m.ID, m.UserID, m.RouteID, summary, m.Completed, m.StartedAt, m.EndedAt, m.CreatedAt)
	}
	return records, total, nil
}

func toHistoryModel(e *historyDomain.Entry) HistoryEntryModel {
	return HistoryEntryModel{
		ID:         e.ID(),
		UserID:     e.UserID(),
		RouteID:    e.RouteID(),
		RouteLabel: e.RouteLabel(),
		Favorite:   e.Favorite(),
		ViewedAt:   e.ViewedAt(),
	}
}

func toHistoryDomain(m *HistoryEntryModel) *historyDomain.Entry {
	return historyDomain.Reconstruct(m.ID, m.UserID, m.RouteID, m.RouteLabel, m.Favorite, m.ViewedAt)
}
