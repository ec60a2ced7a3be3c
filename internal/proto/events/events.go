// Package events defines the topics, event types and payloads exchanged over Kafka.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicHazardEvents     = "hazard.events"
	TopicTripEvents       = "trip.events"
	TopicModerationEvents = "moderation.events"
)

// Event types produced by the navigation service.
const (
	HazardReported      = "hazard.reported"
	HazardStatusChanged = "hazard.status_changed"
	TripCompleted       = "trip.completed"
)

// Event types consumed from the moderation service.
const (
	ModerationHazardVerified = "hazard.verified"
	ModerationHazardResolved = "hazard.resolved"
	ModerationHazardRejected = "hazard.rejected"
)

// HazardReportedEvent is published when a driver reports a hazard.
type HazardReportedEvent struct {
	HazardID   uuid.UUID `json:"hazard_id"`
	ReporterID uuid.UUID `json:"reporter_id"`
	HazardType string    `json:"hazard_type"`
	Label      string    `json:"label"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// HazardStatusChangedEvent is published on every moderation transition.
type HazardStatusChangedEvent struct {
	HazardID   uuid.UUID `json:"hazard_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ModerationDecisionEvent is consumed from the moderation service.
type ModerationDecisionEvent struct {
	HazardID    uuid.UUID `json:"hazard_id"`
	ModeratorID uuid.UUID `json:"moderator_id"`
	Note        string    `json:"note,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TripCompletedEvent is published when a navigation session ends.
type TripCompletedEvent struct {
	TripID          uuid.UUID `json:"trip_id"`
	UserID          uuid.UUID `json:"user_id"`
	RouteID         uuid.UUID `json:"route_id"`
	Completed       bool      `json:"completed"`
	DurationSeconds float64   `json:"duration_seconds"`
	HazardsAvoided  int       `json:"hazards_avoided"`
	AverageSpeedKmh float64   `json:"average_speed_kmh"`
	MaxSpeedKmh     float64   `json:"max_speed_kmh"`
	OccurredAt      time.Time `json:"occurred_at"`
}
