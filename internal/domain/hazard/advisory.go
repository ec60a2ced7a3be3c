package hazard

// Advisory is the driver guidance attached to a hazard.
type Advisory struct {
	Precaution          string `json:"precaution"`
	RecommendedSpeedKmh *int   `json:"recommended_speed_kmh,omitempty"`
	Consequence         string `json:"consequence"`
}

// AdvisoryPolicy supplies default guidance for each hazard type.
type AdvisoryPolicy interface {
	// Advise returns the default advisory for the hazard type.
	Advise(t Type) Advisory
}

// StandardAdvisoryPolicy implements the default guidance table.
type StandardAdvisoryPolicy struct{}

// NewStandardAdvisoryPolicy creates a new StandardAdvisoryPolicy.
func NewStandardAdvisoryPolicy() *StandardAdvisoryPolicy {
	return &StandardAdvisoryPolicy{}
}

// Advise returns the built-in advisory for t.
//
// Recommended speeds:
//   - pothole: 30 km/h
//   - speed bump: 20 km/h
//   - police checkpoint: 40 km/h
//   - other: no recommendation
func (p *StandardAdvisoryPolicy) Advise(t Type) Advisory {
	switch t {
	case TypePothole:
		return Advisory{
			Precaution:          "Slow down and steer around the hole if the lane is clear",
			RecommendedSpeedKmh: intPtr(30),
			Consequence:         "Tyre, rim and suspension damage",
		}
	case TypeSpeedBump:
		return Advisory{
			Precaution:          "Brake before the bump, not on it",
			RecommendedSpeedKmh: intPtr(20),
			Consequence:         "Loss of control and underbody damage",
		}
	case TypePoliceCheckpoint:
		return Advisory{
			Precaution:          "Reduce speed and have your documents ready",
			RecommendedSpeedKmh: intPtr(40),
			Consequence:         "Fines for speeding or missing papers",
		}
	default:
		return Advisory{
			Precaution:  "Drive carefully",
			Consequence: "Unknown road risk",
		}
	}
}

// WithDefaults fills every empty field of a from def.
func (a Advisory) WithDefaults(def Advisory) Advisory {
	if a.Precaution == "" {
		a.Precaution = def.Precaution
	}
	if a.RecommendedSpeedKmh == nil && def.RecommendedSpeedKmh != nil {
		v := *def.RecommendedSpeedKmh
		a.RecommendedSpeedKmh = &v
	}
	if a.Consequence == "" {
		a.Consequence = def.Consequence
	}
	return a
}

func intPtr(v int) *int { return &v }
