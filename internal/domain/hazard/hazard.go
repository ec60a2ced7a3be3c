package hazard

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/roadwatch/service-navigation/internal/geo"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// Hazard is the aggregate root for a geotagged road hazard report.
type Hazard struct {
	id         uuid.UUID
	reporterID uuid.UUID
	hazardType Type
	label      string
	latitude   float64
	longitude  float64
	icon       string
	advisory   Advisory
	photoURL   string
	status     Status

	statusNote string
	version    int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewHazard creates a new Hazard with status=reported. Empty advisory fields
// are expected to have been filled by the caller's AdvisoryPolicy.
func NewHazard(
	reporterID uuid.UUID,
	hazardType Type,
	label string,
	latitude, longitude float64,
	advisory Advisory,
	photoURL string,
) (*Hazard, error) {
	if reporterID == uuid.Nil {
		return nil, domain.NewValidationError("reporter ID is required")
	}
	if !hazardType.IsValid() {
		return nil, domain.NewValidationError("invalid hazard type: " + string(hazardType))
	}
	if err := geo.ValidateCoordinates(latitude, longitude); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if advisory.RecommendedSpeedKmh != nil && *advisory.RecommendedSpeedKmh <= 0 {
		return nil, domain.NewValidationError("recommended speed must be positive")
	}

	label = strings.TrimSpace(label)
	if label == "" {
		label = hazardType.DisplayName()
	}

	now := time.Now().UTC()
	return &Hazard{
		id:         uuid.New(),
		reporterID: reporterID,
		hazardType: hazardType,
		label:      label,
		latitude:   latitude,
		longitude:  longitude,
		icon:       hazardType.Icon(),
		advisory:   advisory,
		photoURL:   photoURL,
		status:     StatusReported,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Hazard from persistence data (no validation).
func Reconstruct(
	id, reporterID uuid.UUID,
	hazardType Type,
	label string,
	latitude, longitude float64,
	icon string,
	advisory Advisory,
	photoURL string,
	status Status,
	statusNote string,
	version int64,
	createdAt, updatedAt time.Time,
) *Hazard {
	return &Hazard{
		id:         id,
		reporterID: reporterID,
		hazardType: hazardType,
		label:      label,
		latitude:   latitude,
		longitude:  longitude,
		icon:       icon,
		advisory:   advisory,
		photoURL:   photoURL,
		status:     status,
		statusNote: statusNote,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

func (h *Hazard) ID() uuid.UUID         { return h.id }
func (h *Hazard) ReporterID() uuid.UUID { return h.reporterID }
func (h *Hazard) Type() Type            { return h.hazardType }
func (h *Hazard) Label() string         { return h.label }
func (h *Hazard) Latitude() float64     { return h.latitude }
func (h *Hazard) Longitude() float64    { return h.longitude }
func (h *Hazard) Icon() string          { return h.icon }
func (h *Hazard) Advisory() Advisory    { return h.advisory }
func (h *Hazard) PhotoURL() string      { return h.photoURL }
func (h *Hazard) Status() Status        { return h.status }
func (h *Hazard) StatusNote() string    { return h.statusNote }
func (h *Hazard) Version() int64        { return h.version }
func (h *Hazard) CreatedAt() time.Time  { return h.createdAt }
func (h *Hazard) UpdatedAt() time.Time  { return h.updatedAt }

// Point returns the hazard position.
func (h *Hazard) Point() orb.Point { return geo.Point(h.latitude, h.longitude) }

// --- Behavior ---

// Verify marks the report as confirmed by a moderator.
func (h *Hazard) Verify(note string) error {
	return h.transition(StatusVerified, note)
}

// Resolve marks a verified hazard as fixed or gone.
func (h *Hazard) Resolve(note string) error {
	return h.transition(StatusResolved, note)
}

// Reject discards a report that could not be confirmed.
func (h *Hazard) Reject(note string) error {
	return h.transition(StatusRejected, note)
}

// AttachPhoto sets the cover photo if none was supplied at report time.
func (h *Hazard) AttachPhoto(url string) {
	if h.photoURL != "" || url == "" {
		return
	}
	h.photoURL = url
	h.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (h *Hazard) IncrementVersion() {
	h.version++
	h.updatedAt = time.Now().UTC()
}

func (h *Hazard) transition(target Status, note string) error {
	if !h.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(h.status), string(target))
	}
	h.status = target
	h.statusNote = note
	h.updatedAt = time.Now().UTC()
	return nil
}
