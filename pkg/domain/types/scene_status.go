package types

import "fmt"

// SceneStatus represents the review status of a scene
type SceneStatus string

const (
	// SceneStatusPending is a freshly generated scene waiting for a decision
	SceneStatusPending SceneStatus = "PENDING"
	// SceneStatusAccepted is terminal for a scene index
	SceneStatusAccepted SceneStatus = "ACCEPTED"
	// SceneStatusRejected is transient while a regeneration is in flight
	SceneStatusRejected SceneStatus = "REJECTED"
	// SceneStatusRewritten is transient while a custom rewrite is in flight
	SceneStatusRewritten SceneStatus = "REWRITTEN"
)

// AllSceneStatuses returns all valid scene statuses
func AllSceneStatuses() []SceneStatus {
	return []SceneStatus{
		SceneStatusPending,
		SceneStatusAccepted,
		SceneStatusRejected,
		SceneStatusRewritten,
	}
}

// IsValid checks if the scene status is valid
func (s SceneStatus) IsValid() bool {
	switch s {
	case SceneStatusPending,
		SceneStatusAccepted,
		SceneStatusRejected,
		SceneStatusRewritten:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the scene can no longer change
func (s SceneStatus) IsTerminal() bool {
	return s == SceneStatusAccepted
}

// String returns the string representation of the scene status
func (s SceneStatus) String() string {
	return string(s)
}

// ParseSceneStatus parses a string into a SceneStatus
func ParseSceneStatus(s string) (SceneStatus, error) {
	status := SceneStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid scene status: %s", s)
	}
	return status, nil
}
