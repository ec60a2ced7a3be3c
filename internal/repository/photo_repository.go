package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	photoDomain "github.com/roadwatch/service-navigation/internal/domain/photo"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// PhotoModel is the GORM model for the hazard_photos table.
type PhotoModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	HazardID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UploaderID  uuid.UUID `gorm:"type:uuid;not null"`
	PhotoURL    string    `gorm:"type:text;not null"`
	Caption     string    `gorm:"type:text"`
	ContentType string    `gorm:"size:50;not null"`
	SizeBytes   int64     `gorm:"not null"`
	TakenAt     time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (PhotoModel) TableName() string { return "hazard_photos" }

// GormPhotoRepository implements photo.Repository using GORM.
type GormPhotoRepository struct {
	db *gorm.DB
}

// NewGormPhotoRepository creates a new GormPhotoRepository.
func NewGormPhotoRepository(db *gorm.DB) *GormPhotoRepository {
	return &GormPhotoRepository{db: db}
}

// Save persists a new hazard photo.
func (r *GormPhotoRepository) Save(ctx context.Context, photo *photoDomain.HazardPhoto) error {
	model := toPhotoModel(photo)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save hazard photo: %w", err)
	}
	return nil
}

// FindByHazardID returns all photos for a hazard, oldest first.
func (r *GormPhotoRepository) FindByHazardID(ctx context.Context, hazardID uuid.UUID) ([]*photoDomain.HazardPhoto, error) {
	var models []PhotoModel
	if err := r.db.WithContext(ctx).Where("hazard_id = ?", hazardID).Order("taken_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find hazard photos: %w", err)
	}

	photos := make([]*photoDomain.HazardPhoto, len(models))
	for i := range models {
		photos[i] = toPhotoDomain(&models[i])
	}
	return photos, nil
}

// FindByID returns a single photo by ID.
func (r *GormPhotoRepository) FindByID(ctx context.Context, id uuid.UUID) (*photoDomain.HazardPhoto, error) {
	var model PhotoModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Photo", id.String())
		}
		return nil, fmt.Errorf("failed to find hazard photo: %w", err)
	}
	return toPhotoDomain(&model), nil
}

func toPhotoModel(p *photoDomain.HazardPhoto) PhotoModel {
	return PhotoModel{
		ID:          p.ID(),
		HazardID:    p.HazardID(),
		UploaderID:  p.UploaderID(),
		PhotoURL:    p.URL(),
		Caption:     p.Caption(),
		ContentType: p.ContentType(),
		SizeBytes:   p.SizeBytes(),
		TakenAt:     p.TakenAt(),
		CreatedAt:   p.CreatedAt(),
	}
}

func toPhotoDomain(m *PhotoModel) *photoDomain.HazardPhoto {
	return photoDomain.Reconstruct(
		m.ID,
		m.HazardID,
		m.UploaderID,
		m.PhotoURL,
		m.Caption,
		m.ContentType,
		m.SizeBytes,
		m.TakenAt,
		m.CreatedAt,
	)
}
