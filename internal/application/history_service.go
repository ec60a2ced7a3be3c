package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	historyDomain "github.com/roadwatch/service-navigation/internal/domain/history"
	tripDomain "github.com/roadwatch/service-navigation/internal/domain/trip"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// HistoryEntryDTO is the response representation of a history entry.
type HistoryEntryDTO struct {
	ID         uuid.UUID `json:"id"`
	RouteID    uuid.UUID `json:"route_id"`
	RouteLabel string    `json:"route_label"`
	Favorite   bool      `json:"favorite"`
	ViewedAt   time.Time `json:"viewed_at"`
}

// TripDTO is the response representation of a finished trip.
type TripDTO struct {
	ID        uuid.UUID          `json:"id"`
	RouteID   uuid.UUID          `json:"route_id"`
	Summary   tripDomain.Summary `json:"summary"`
	Completed bool               `json:"completed"`
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at"`
}

// HistoryService manages a user's viewed routes and past trips.
type HistoryService struct {
	repo   historyDomain.Repository
	trips  tripDomain.Repository
	logger *zap.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(repo historyDomain.Repository, trips tripDomain.Repository, logger *zap.Logger) *HistoryService {
	return &HistoryService{repo: repo, trips: trips, logger: logger}
}

// RecordView notes that userID opened a route.
func (s *HistoryService) RecordView(ctx context.Context, userID, routeID uuid.UUID, routeLabel string) error {
	e, err := historyDomain.NewEntry(userID, routeID, routeLabel)
	if err != nil {
		return err
	}
	return s.repo.RecordView(ctx, e)
}

// GetHistory lists the caller's entries, optionally favourites only.
func (s *HistoryService) GetHistory(ctx context.Context, userID uuid.UUID, favoritesOnly bool) ([]HistoryEntryDTO, error) {
	entries, err := s.repo.FindByUserID(ctx, userID, favoritesOnly)
	if err != nil {
		return nil, err
	}
	dtos := make([]HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toHistoryEntryDTO(e)
	}
	return dtos, nil
}

// RemoveEntry deletes one of the caller's entries.
func (s *HistoryService) RemoveEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	if _, err := s.ownedEntry(ctx, userID, entryID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, entryID)
}

// ToggleFavorite flips the favourite flag of one of the caller's entries.
func (s *HistoryService) ToggleFavorite(ctx context.Context, userID, entryID uuid.UUID) (*HistoryEntryDTO, error) {
	e, err := s.ownedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	e.ToggleFavorite()
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	result := toHistoryEntryDTO(e)
	return &result, nil
}

// ClearHistory removes every entry of the caller.
func (s *HistoryService) ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("history cleared", zap.String("user_id", userID.String()), zap.Int64("entries", n))
	return n, nil
}

// ListTrips lists the caller's finished trips.
func (s *HistoryService) ListTrips(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[TripDTO], error) {
	records, total, err := s.trips.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]TripDTO, len(records))
	for i, r := range records {
		dtos[i] = toTripDTO(r)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// SaveTrip stores a finished trip.
func (s *HistoryService) SaveTrip(ctx context.Context, rec *tripDomain.Record) error {
	return s.trips.Save(ctx, rec)
}

func (s *HistoryService) ownedEntry(ctx context.Context, userID, entryID uuid.UUID) (*historyDomain.Entry, error) {
	e, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !e.OwnedBy(userID) {
		// Other users' entries are indistinguishable from missing ones.
		return nil, domain.NewNotFoundError("HistoryEntry", entryID.String())
	}
	return e, nil
}

func toHistoryEntryDTO(e *historyDomain.Entry) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:         e.ID(),
		RouteID:    e.RouteID(),
		RouteLabel: e.RouteLabel(),
		Favorite:   e.Favorite(),
		ViewedAt:   e.ViewedAt(),
	}
}

func toTripDTO(r *tripDomain.Record) TripDTO {
	return TripDTO{
		ID:        r.ID(),
		RouteID:   r.RouteID(),
		Summary:   r.Summary(),
		Completed: r.Completed(),
		StartedAt: r.StartedAt(),
		EndedAt:   r.EndedAt(),
	}
}
