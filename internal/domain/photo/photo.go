package photo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// allowedContentTypes lists the image formats accepted as hazard evidence.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ExtensionFor returns the file extension for an accepted content type.
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// HazardPhoto is the aggregate root for photo evidence attached to a hazard.
type HazardPhoto struct {
	id          uuid.UUID
	hazardID    uuid.UUID
	uploaderID  uuid.UUID
	url         string
	caption     string
	contentType string
	sizeBytes   int64
	takenAt     time.Time
	createdAt   time.Time
}

// NewHazardPhoto creates a new hazard photo record.
func NewHazardPhoto(hazardID, uploaderID uuid.UUID, url, caption, contentType string, sizeBytes int64) (*HazardPhoto, error) {
	if hazardID == uuid.Nil {
		return nil, fmt.Errorf("hazard ID is required")
	}
	if url == "" {
		return nil, fmt.Errorf("photo URL is required")
	}
	if _, ok := ExtensionFor(contentType); !ok {
		return nil, fmt.Errorf("unsupported photo content type: %s", contentType)
	}

	now := time.Now().UTC()
	return &HazardPhoto{
		id:          uuid.New(),
		hazardID:    hazardID,
		uploaderID:  uploaderID,
		url:         url,
		caption:     caption,
		contentType: contentType,
		sizeBytes:   sizeBytes,
		takenAt:     now,
		createdAt:   now,
	}, nil
}

// Reconstruct rebuilds a HazardPhoto from persistence.
func Reconstruct(id, hazardID, uploaderID uuid.UUID, url, caption, contentType string, sizeBytes int64, takenAt, createdAt time.Time) *HazardPhoto {
	return &HazardPhoto{
		id:          id,
		hazardID:    hazardID,
		uploaderID:  uploaderID,
		url:         url,
		caption:     caption,
		contentType: contentType,
		sizeBytes:   sizeBytes,
		takenAt:     takenAt,
		createdAt:   createdAt,
	}
}

// Getters.
func (p *HazardPhoto) ID() uuid.UUID         { return p.id }
func (p *HazardPhoto) HazardID() uuid.UUID   { return p.hazardID }
func (p *HazardPhoto) UploaderID() uuid.UUID { return p.uploaderID }
func (p *HazardPhoto) URL() string           { return p.url }
func (p *HazardPhoto) Caption() string       { return p.caption }
func (p *HazardPhoto) ContentType() string   { return p.contentType }
func (p *HazardPhoto) SizeBytes() int64      { return p.sizeBytes }
func (p *HazardPhoto) TakenAt() time.Time    { return p.takenAt }
func (p *HazardPhoto) CreatedAt() time.Time  { return p.createdAt }
