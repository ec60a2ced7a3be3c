package hazard

import "fmt"

// Status represents the moderation state of a hazard report.
type Status string

const (
	StatusReported Status = "reported"
	StatusVerified Status = "verified"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

// validTransitions defines the moderation state machine.
var validTransitions = map[Status][]Status{
	StatusReported: {StatusVerified, StatusRejected},
	StatusVerified: {StatusResolved},
	StatusResolved: {},
	StatusRejected: {},
}

// IsValid returns true if the status is a recognized hazard status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	return !exists || len(allowed) == 0
}

// IsActive reports whether drivers should still be warned about the hazard.
func (s Status) IsActive() bool {
	return s == StatusReported || s == StatusVerified
}

func (s Status) String() string {
	return string(s)
}

// ActiveStatuses lists the statuses considered live on the road.
func ActiveStatuses() []Status {
	return []Status{StatusReported, StatusVerified}
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid hazard status: %s", s)
	}
	return status, nil
}
