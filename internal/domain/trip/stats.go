package trip

import "time"

// Stats is the live state of a simulated trip. The simulator owns the only
// mutable copy; everything else receives snapshots.
type Stats struct {
	Progress          float64       `json:"progress"`
	CurrentSpeed      float64       `json:"current_speed_kmh"`
	AverageSpeed      float64       `json:"average_speed_kmh"`
	MaxSpeed          float64       `json:"max_speed_kmh"`
	HazardsAvoided    int           `json:"hazards_avoided"`
	RemainingDistance float64       `json:"remaining_distance"`
	RemainingTime     float64       `json:"remaining_time_hours"`
	StartedAt         time.Time     `json:"started_at"`
	PausedAt          time.Time     `json:"paused_at,omitzero"`
	EndedAt           time.Time     `json:"ended_at,omitzero"`
	PausedFor         time.Duration `json:"paused_for"`
}

// Elapsed returns driving time up to at, excluding paused time.
func (s Stats) Elapsed(at time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := at
	if !s.EndedAt.IsZero() {
		end = s.EndedAt
	}
	paused := s.PausedFor
	if !s.PausedAt.IsZero() {
		paused += end.Sub(s.PausedAt)
	}
	d := end.Sub(s.StartedAt) - paused
	if d < 0 {
		return 0
	}
	return d
}
