package trip

import (
	"fmt"
	"time"

	"github.com/roadwatch/service-navigation/internal/domain/route"
)

// Summary is what a driver sees once a trip ends.
type Summary struct {
	DurationSeconds  float64 `json:"duration_seconds"`
	DurationText     string  `json:"duration_text"`
	DistanceMeters   float64 `json:"distance_meters,omitempty"`
	DistanceUnits    float64 `json:"distance_units"`
	DistanceText     string  `json:"distance_text"`
	HazardsAvoided   int     `json:"hazards_avoided"`
	AverageSpeedKmh  float64 `json:"average_speed_kmh"`
	MaxSpeedKmh      float64 `json:"max_speed_kmh"`
	ProgressPercent  float64 `json:"progress_percent"`
	Completed        bool    `json:"completed"`
	DistanceEstimate bool    `json:"distance_estimate"`
}

// Summarize builds a Summary from final stats. routeMeters is the rendered
// route length (0 when unknown); totalUnits is the simulator's placeholder
// distance used when no real length is available.
func Summarize(stats Stats, routeMeters, totalUnits float64, completed bool, at time.Time) Summary {
	elapsed := stats.Elapsed(at)
	fraction := stats.Progress / 100

	s := Summary{
		DurationSeconds: elapsed.Seconds(),
		DurationText:    route.FormatDuration(elapsed),
		DistanceUnits:   totalUnits * fraction,
		HazardsAvoided:  stats.HazardsAvoided,
		AverageSpeedKmh: stats.AverageSpeed,
		MaxSpeedKmh:     stats.MaxSpeed,
		ProgressPercent: stats.Progress,
		Completed:       completed,
	}
	if routeMeters > 0 {
		s.DistanceMeters = routeMeters * fraction
		s.DistanceText = route.FormatDistance(s.DistanceMeters)
	} else {
		s.DistanceEstimate = true
		s.DistanceText = fmt.Sprintf("%.0f units", s.DistanceUnits)
	}
	return s
}
