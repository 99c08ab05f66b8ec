package types

import "fmt"

// SessionPhase represents where a story session sits in the scene loop.
// Phases are the durable states of the workflow: transient work
// (regenerating, rewriting, advancing) runs inside a single step and the
// persisted phase only moves when the step fully succeeds.
type SessionPhase string

const (
	// SessionPhaseRetrieving means the next scene has not been generated yet;
	// the session is waiting for character retrieval + generation.
	SessionPhaseRetrieving SessionPhase = "RETRIEVING"
	// SessionPhaseAwaitingDecision means a pending scene is waiting for
	// accept / reject / rewrite.
	SessionPhaseAwaitingDecision SessionPhase = "AWAITING_DECISION"
	// SessionPhaseAssembling means all scenes are accepted and the final
	// document has not been produced yet.
	SessionPhaseAssembling SessionPhase = "ASSEMBLING"
	// SessionPhaseDone means the document has been assembled.
	SessionPhaseDone SessionPhase = "DONE"
)

// AllSessionPhases returns all valid session phases
func AllSessionPhases() []SessionPhase {
	return []SessionPhase{
		SessionPhaseRetrieving,
		SessionPhaseAwaitingDecision,
		SessionPhaseAssembling,
		SessionPhaseDone,
	}
}

// IsValid checks if the session phase is valid
func (p SessionPhase) IsValid() bool {
	switch p {
	case SessionPhaseRetrieving,
		SessionPhaseAwaitingDecision,
		SessionPhaseAssembling,
		SessionPhaseDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the session phase
func (p SessionPhase) String() string {
	return string(p)
}

// ParseSessionPhase parses a string into a SessionPhase
func ParseSessionPhase(s string) (SessionPhase, error) {
	phase := SessionPhase(s)
	if !phase.IsValid() {
		return "", fmt.Errorf("invalid session phase: %s", s)
	}
	return phase, nil
}
