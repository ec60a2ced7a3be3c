package application

import (
	"github.com/roadwatch/service-navigation/internal/config"
	"github.com/roadwatch/service-navigation/internal/domain/hazard"
	"github.com/roadwatch/service-navigation/internal/geo"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// MapCenter is where the client should center its map.
type MapCenter struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"`
}

// HazardIcon maps a hazard type to its marker icon.
type HazardIcon struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
}

// MapBootstrapDTO is what a client needs to load its map.
type MapBootstrapDTO struct {
	TileURL            string       `json:"tile_url"`
	Attribution        string       `json:"attribution"`
	DirectionsProvider string       `json:"directions_provider"`
	Zoom               int          `json:"zoom"`
	Center             MapCenter    `json:"center"`
	HazardIcons        []HazardIcon `json:"hazard_icons"`
}

// MapService answers map bootstrap requests.
type MapService struct {
	cfg config.MapConfig
}

// NewMapService creates a new MapService.
func NewMapService(cfg config.MapConfig) *MapService {
	return &MapService{cfg: cfg}
}

// Bootstrap centers on the device position when both coordinates are given,
// otherwise on the configured default.
func (s *MapService) Bootstrap(lat, lng *float64) (*MapBootstrapDTO, error) {
	center := MapCenter{Latitude: s.cfg.DefaultLat, Longitude: s.cfg.DefaultLng, Source: "default"}
	if lat != nil && lng != nil {
		if err := geo.ValidateCoordinates(*lat, *lng); err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		center = MapCenter{Latitude: *lat, Longitude: *lng, Source: "device"}
	}

	types := []hazard.Type{hazard.TypePothole, hazard.TypeSpeedBump, hazard.TypePoliceCheckpoint, hazard.TypeOther}
	icons := make([]HazardIcon, len(types))
	for i, t := range types {
		icons[i] = HazardIcon{Type: string(t), DisplayName: t.DisplayName(), Icon: t.Icon()}
	}

	return &MapBootstrapDTO{
		TileURL:            s.cfg.TileURL,
		Attribution:        s.cfg.Attribution,
		DirectionsProvider: "osrm",
		Zoom:               s.cfg.DefaultZoom,
		Center:             center,
		HazardIcons:        icons,
	}, nil
}
