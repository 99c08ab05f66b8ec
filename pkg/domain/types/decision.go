package types

import "fmt"

// DecisionKind represents the reviewer's choice for a pending scene
type DecisionKind string

const (
	// DecisionAccept locks the pending scene in place
	DecisionAccept DecisionKind = "ACCEPT"
	// DecisionReject discards the pending text and regenerates with the same inputs
	DecisionReject DecisionKind = "REJECT"
	// DecisionRewrite regenerates the pending scene with a custom instruction
	DecisionRewrite DecisionKind = "REWRITE"
)

// AllDecisionKinds returns all valid decision kinds
func AllDecisionKinds() []DecisionKind {
	return []DecisionKind{
		DecisionAccept,
		DecisionReject,
		DecisionRewrite,
	}
}

// IsValid checks if the decision kind is valid
func (d DecisionKind) IsValid() bool {
	switch d {
	case DecisionAccept, DecisionReject, DecisionRewrite:
		return true
	default:
		return false
	}
}

// String returns the string representation of the decision kind
func (d DecisionKind) String() string {
	return string(d)
}

// ParseDecisionKind parses a string into a DecisionKind
func ParseDecisionKind(s string) (DecisionKind, error) {
	kind := DecisionKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid decision kind: %s", s)
	}
	return kind, nil
}
