package application

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"go.uber.org/zap"

	hazardDomain "github.com/roadwatch/service-navigation/internal/domain/hazard"
	photoDomain "github.com/roadwatch/service-navigation/internal/domain/photo"
	"github.com/roadwatch/service-navigation/internal/geo"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
	"github.com/roadwatch/service-navigation/internal/proto/events"
)

const (
	defaultNearbyRadiusMeters = 1000.0
	maxNearbyRadiusMeters     = 50_000.0
)

// ReportHazardRequest holds the form fields of a hazard report.
type ReportHazardRequest struct {
	Type                string   `form:"type" json:"type" binding:"required"`
	Label               string   `form:"label" json:"label"`
	Latitude            *float64 `form:"latitude" json:"latitude" binding:"required"`
	Longitude           *float64 `form:"longitude" json:"longitude" binding:"required"`
	Precaution          string   `form:"precaution" json:"precaution"`
	RecommendedSpeedKmh *int     `form:"recommended_speed" json:"recommended_speed"`
	Consequence         string   `form:"consequence" json:"consequence"`
}

// PhotoUpload is an uploaded image stream.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// PhotoStore persists photo bytes and returns their public URL.
type PhotoStore interface {
	Save(ctx context.Context, key string, r io.Reader) (url string, size int64, err error)
	Delete(ctx context.Context, key string) error
}

// HazardDTO is the response representation of a hazard.
type HazardDTO struct {
	ID                  uuid.UUID `json:"id"`
	ReporterID          uuid.UUID `json:"reporter_id"`
	Type                string    `json:"type"`
	Label               string    `json:"label"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	Icon                string    `json:"icon"`
	Precaution          string    `json:"precaution"`
	RecommendedSpeedKmh *int      `json:"recommended_speed_kmh,omitempty"`
	Consequence         string    `json:"consequence"`
	PhotoURL            string    `json:"photo_url,omitempty"`
	Status              string    `json:"status"`
	StatusNote          string    `json:"status_note,omitempty"`
	DistanceMeters      *float64  `json:"distance_meters,omitempty"`
	Version             int64     `json:"version"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// HazardStatsDTO holds aggregate hazard counts (admin).
type HazardStatsDTO struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
}

// ModerationAction is a moderator decision on a hazard.
type ModerationAction string

const (
	ActionVerify  ModerationAction = "verify"
	ActionResolve ModerationAction = "resolve"
	ActionReject  ModerationAction = "reject"
)

// HazardService is the application service for the hazard catalogue.
type HazardService struct {
	repo      hazardDomain.Repository
	store     PhotoStore
	advisory  hazardDomain.AdvisoryPolicy
	publisher publisher
	logger    *zap.Logger
}

// NewHazardService creates a new HazardService.
func NewHazardService(
	repo hazardDomain.Repository,
	store PhotoStore,
	advisory hazardDomain.AdvisoryPolicy,
	producer EventPublisher,
	logger *zap.Logger,
) *HazardService {
	return &HazardService{
		repo:      repo,
		store:     store,
		advisory:  advisory,
		publisher: publisher{producer: producer, logger: logger},
		logger:    logger,
	}
}

// ReportHazard records a new hazard, optionally with a photo.
func (s *HazardService) ReportHazard(ctx context.Context, reporterID uuid.UUID, req ReportHazardRequest, upload *PhotoUpload) (*HazardDTO, error) {
	hazardType, err := hazardDomain.ParseType(req.Type)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, domain.NewValidationError("latitude and longitude are required")
	}

	advisory := hazardDomain.Advisory{
		Precaution:          req.Precaution,
		RecommendedSpeedKmh: req.RecommendedSpeedKmh,
		Consequence:         req.Consequence,
	}.WithDefaults(s.advisory.Advise(hazardType))

	// Validate before touching storage so a bad report leaves no orphan file.
	h, err := hazardDomain.NewHazard(reporterID, hazardType, req.Label, *req.Latitude, *req.Longitude, advisory, "")
	if err != nil {
		return nil, err
	}

	var (
		photo    *photoDomain.HazardPhoto
		photoKey string
	)
	if upload != nil {
		photo, photoKey, err = storePhoto(ctx, s.store, s.logger, h.ID(), reporterID, *upload, "")
		if err != nil {
			return nil, err
		}
		h.AttachPhoto(photo.URL())
	}

	if err := s.repo.Save(ctx, h, photo); err != nil {
		if photo != nil {
			discardPhoto(ctx, s.store, photoKey, s.logger)
		}
		return nil, fmt.Errorf("failed to save hazard: %w", err)
	}

	s.logger.Info("hazard reported",
		zap.String("hazard_id", h.ID().String()),
		zap.String("type", string(h.Type())),
		zap.Bool("with_photo", photo != nil),
	)

	s.publisher.publish(ctx, events.TopicHazardEvents, events.HazardReported, h.ID().String(), events.HazardReportedEvent{
		HazardID:   h.ID(),
		ReporterID: h.ReporterID(),
		HazardType: string(h.Type()),
		Label:      h.Label(),
		Latitude:   h.Latitude(),
		Longitude:  h.Longitude(),
		PhotoURL:   h.PhotoURL(),
		OccurredAt: time.Now().UTC(),
	})

	result := toHazardDTO(h)
	return &result, nil
}

// GetHazard retrieves a hazard by ID.
func (s *HazardService) GetHazard(ctx context.Context, id uuid.UUID) (*HazardDTO, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toHazardDTO(h)
	return &result, nil
}

// ListHazards returns hazards matching filter with pagination.
func (s *HazardService) ListHazards(ctx context.Context, filter hazardDomain.ListFilter, page, limit int) (*domain.PaginatedResult[HazardDTO], error) {
	hazards, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]HazardDTO, len(hazards))
	for i, h := range hazards {
		dtos[i] = toHazardDTO(h)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// FindNearby returns active hazards within radiusMeters of a point, nearest first.
func (s *HazardService) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]HazardDTO, error) {
	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultNearbyRadiusMeters
	}
	if radiusMeters > maxNearbyRadiusMeters {
		return nil, domain.NewValidationError(fmt.Sprintf("radius must not exceed %.0f meters", maxNearbyRadiusMeters))
	}

	center := geo.Point(lat, lng)
	hazards, err := s.repo.FindInBound(ctx, geo.BoundAround(center, radiusMeters), hazardDomain.ActiveStatuses())
	if err != nil {
		return nil, err
	}

	type withDistance struct {
		h *hazardDomain.Hazard
		d float64
	}
	var near []withDistance
	for _, h := range hazards {
		if d := orbgeo.DistanceHaversine(center, h.Point()); d <= radiusMeters {
			near = append(near, withDistance{h: h, d: d})
		}
	}
	sort.Slice(near, func(i, j int) bool { return near[i].d < near[j].d })

	dtos := make([]HazardDTO, len(near))
	for i, n := range near {
		dtos[i] = toHazardDTO(n.h)
		d := n.d
		dtos[i].DistanceMeters = &d
	}
	return dtos, nil
}

// FindActiveInBound returns reported or verified hazards inside b.
func (s *HazardService) FindActiveInBound(ctx context.Context, b orb.Bound) ([]*hazardDomain.Hazard, error) {
	return s.repo.FindInBound(ctx, b, hazardDomain.ActiveStatuses())
}

// Moderate applies a moderator decision and publishes the status change.
func (s *HazardService) Moderate(ctx context.Context, hazardID uuid.UUID, action ModerationAction, note string) (*HazardDTO, error) {
	h, err := s.repo.FindByID(ctx, hazardID)
	if err != nil {
		return nil, err
	}
	from := h.Status()

	switch action {
	case ActionVerify:
		err = h.Verify(note)
	case ActionResolve:
		err = h.Resolve(note)
	case ActionReject:
		err = h.Reject(note)
	default:
		return nil, domain.NewValidationError("unknown moderation action: " + string(action))
	}
	if err != nil {
		return nil, err
	}

	h.IncrementVersion()
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}

	s.logger.Info("hazard moderated",
		zap.String("hazard_id", h.ID().String()),
		zap.String("from", string(from)),
		zap.String("to", string(h.Status())),
	)

	s.publisher.publish(ctx, events.TopicHazardEvents, events.HazardStatusChanged, h.ID().String(), events.HazardStatusChangedEvent{
		HazardID:   h.ID(),
		FromStatus: string(from),
		ToStatus:   string(h.Status()),
		Note:       note,
		OccurredAt: time.Now().UTC(),
	})

	result := toHazardDTO(h)
	return &result, nil
}

// GetHazardStats returns aggregate hazard counts (admin).
func (s *HazardService) GetHazardStats(ctx context.Context) (*HazardStatsDTO, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range byStatus {
		total += c
	}
	return &HazardStatsDTO{Total: total, ByStatus: byStatus, ByType: byType}, nil
}

// storePhoto writes the upload and returns the photo with its storage key.
func storePhoto(ctx context.Context, store PhotoStore, logger *zap.Logger, hazardID, uploaderID uuid.UUID, upload PhotoUpload, caption string) (*photoDomain.HazardPhoto, string, error) {
	ext, ok := photoDomain.ExtensionFor(upload.ContentType)
	if !ok {
		return nil, "", domain.NewValidationError("unsupported photo type: " + upload.ContentType)
	}
	key := path.Join("hazards", hazardID.String(), uuid.NewString()+ext)

	url, size, err := store.Save(ctx, key, upload.Content)
	if err != nil {
		return nil, "", classifyStoreError(err)
	}
	photo, err := photoDomain.NewHazardPhoto(hazardID, uploaderID, url, caption, upload.ContentType, size)
	if err != nil {
		discardPhoto(ctx, store, key, logger)
		return nil, "", err
	}
	return photo, key, nil
}

// discardPhoto removes a stored file whose database row was never written.
func discardPhoto(ctx context.Context, store PhotoStore, key string, logger *zap.Logger) {
	if err := store.Delete(context.WithoutCancel(ctx), key); err != nil {
		logger.Warn("failed to remove orphaned photo", zap.String("key", key), zap.Error(err))
	}
}

func toHazardDTO(h *hazardDomain.Hazard) HazardDTO {
	adv := h.Advisory()
	return HazardDTO{
		ID:                  h.ID(),
		ReporterID:          h.ReporterID(),
		Type:                string(h.Type()),
		Label:               h.Label(),
		Latitude:            h.Latitude(),
		Longitude:           h.Longitude(),
		Icon:                h.Icon(),
		Precaution:          adv.Precaution,
		RecommendedSpeedKmh: adv.RecommendedSpeedKmh,
		Consequence:         adv.Consequence,
		PhotoURL:            h.PhotoURL(),
		Status:              string(h.Status()),
		StatusNote:          h.StatusNote(),
		Version:             h.Version(),
		CreatedAt:           h.CreatedAt(),
		UpdatedAt:           h.UpdatedAt(),
	}
}
