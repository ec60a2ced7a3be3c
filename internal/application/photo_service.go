package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	hazardDomain "github.com/roadwatch/service-navigation/internal/domain/hazard"
	photoDomain "github.com/roadwatch/service-navigation/internal/domain/photo"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
	"github.com/roadwatch/service-navigation/internal/storage"
)

// PhotoDTO is the API response representation of a hazard photo.
type PhotoDTO struct {
	ID          uuid.UUID `json:"id"`
	HazardID    uuid.UUID `json:"hazard_id"`
	UploaderID  uuid.UUID `json:"uploader_id"`
	PhotoURL    string    `json:"photo_url"`
	Caption     string    `json:"caption"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	TakenAt     time.Time `json:"taken_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// PhotoService handles hazard photo use cases.
type PhotoService struct {
	repo    photoDomain.Repository
	hazards hazardDomain.Repository
	store   PhotoStore
	logger  *zap.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(repo photoDomain.Repository, hazards hazardDomain.Repository, store PhotoStore, logger *zap.Logger) *PhotoService {
	return &PhotoService{repo: repo, hazards: hazards, store: store, logger: logger}
}

// UploadPhoto stores a new evidence photo for an existing hazard. The first
// photo of a hazard reported without one becomes its cover.
func (s *PhotoService) UploadPhoto(ctx context.Context, hazardID, uploaderID uuid.UUID, upload PhotoUpload, caption string) (*PhotoDTO, error) {
	h, err := s.hazards.FindByID(ctx, hazardID)
	if err != nil {
		return nil, err
	}
	if h.Status().IsTerminal() {
		return nil, domain.NewConflictError("cannot add photos to a " + string(h.Status()) + " hazard")
	}

	photo, key, err := storePhoto(ctx, s.store, s.logger, hazardID, uploaderID, upload, caption)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, photo); err != nil {
		discardPhoto(ctx, s.store, key, s.logger)
		return nil, fmt.Errorf("failed to save hazard photo: %w", err)
	}

	if h.PhotoURL() == "" {
		h.AttachPhoto(photo.URL())
		h.IncrementVersion()
		if err := s.hazards.Update(ctx, h); err != nil {
			// The photo is stored either way; only the cover is lost.
			s.logger.Warn("failed to set hazard cover photo",
				zap.String("hazard_id", hazardID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("photo uploaded",
		zap.String("hazard_id", hazardID.String()),
		zap.String("content_type", photo.ContentType()),
		zap.Int64("size_bytes", photo.SizeBytes()),
	)

	return toPhotoDTO(photo), nil
}

// GetHazardPhotos returns all photos for a hazard.
func (s *PhotoService) GetHazardPhotos(ctx context.Context, hazardID uuid.UUID) ([]*PhotoDTO, error) {
	photos, err := s.repo.FindByHazardID(ctx, hazardID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*PhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = toPhotoDTO(p)
	}
	return dtos, nil
}

func classifyStoreError(err error) error {
	if errors.Is(err, storage.ErrTooLarge) {
		return domain.NewValidationError("photo is too large")
	}
	return fmt.Errorf("failed to store photo: %w", err)
}

func toPhotoDTO(p *photoDomain.HazardPhoto) *PhotoDTO {
	return &PhotoDTO{
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
