package hazard

import "fmt"

// Type is the kind of road hazard being reported.
type Type string

const (
	TypePothole          Type = "pothole"
	TypeSpeedBump        Type = "speed_bump"
	TypePoliceCheckpoint Type = "police_checkpoint"
	TypeOther            Type = "other"
)

// IsValid returns true if the hazard type is recognized.
func (t Type) IsValid() bool {
	switch t {
	case TypePothole, TypeSpeedBump, TypePoliceCheckpoint, TypeOther:
		return true
	}
	return false
}

// Icon returns the marker icon reference clients draw for this type.
func (t Type) Icon() string {
	switch t {
	case TypePothole:
		return "icons/pothole.png"
	case TypeSpeedBump:
		return "icons/speed-bump.png"
	case TypePoliceCheckpoint:
		return "icons/police.png"
	default:
		return "icons/warning.png"
	}
}

// DisplayName is the default label for a report that did not supply one.
func (t Type) DisplayName() string {
	switch t {
	case TypePothole:
		return "Pothole"
	case TypeSpeedBump:
		return "Speed bump"
	case TypePoliceCheckpoint:
		return "Police checkpoint"
	default:
		return "Road hazard"
	}
}

// ParseType converts a string to a Type, returning an error if invalid.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid hazard type: %s", s)
	}
	return t, nil
}
