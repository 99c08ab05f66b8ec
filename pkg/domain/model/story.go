package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/storyspark-lab/storyspark/pkg/domain/types"
)

// SessionID is a UUID-based identifier for StorySession
type SessionID string

// NewSessionID generates a new UUID v7 SessionID (time-ordered)
func NewSessionID() SessionID {
	return SessionID(uuid.Must(uuid.NewV7()).String())
}

// StoryPrompt is the immutable seed of a story session
type StoryPrompt struct {
	Title   string
	Premise string
}

// Scene is one unit of generated narrative text. Index is 1-based.
// CharacterNames is a snapshot of the retrieved cast at generation time,
// not a live reference; deleting a character later does not touch scenes.
type Scene struct {
	Index          int
	Text           string
	Status         types.SceneStatus
	Instruction    string
	CharacterNames []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy of the scene
func (s *Scene) Clone() *Scene {
	copied := &Scene{
		Index:       s.Index,
		Text:        s.Text,
		Status:      s.Status,
		Instruction: s.Instruction,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.CharacterNames != nil {
		copied.CharacterNames = make([]string, len(s.CharacterNames))
		copy(copied.CharacterNames, s.CharacterNames)
	}
	return copied
}

// Decision is the reviewer's verdict on the current pending scene
type Decision struct {
	Kind        types.DecisionKind
	Instruction string
	// MoreScenes is only meaningful for accept decisions: true continues
	// the loop with the next scene, false moves the session to assembly.
	MoreScenes bool
}

// StorySession is the full mutable state of one story-in-progress. It is
// owned by the scene workflow: every step loads it, mutates a copy, and
// persists the copy only when the step fully succeeds.
type StorySession struct {
	ID           SessionID
	Prompt       StoryPrompt
	Scenes       []*Scene
	CurrentIndex int
	Phase        types.SessionPhase
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy of the session
func (s *StorySession) Clone() *StorySession {
	copied := &StorySession{
		ID:           s.ID,
		Prompt:       s.Prompt,
		CurrentIndex: s.CurrentIndex,
		Phase:        s.Phase,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Scenes != nil {
		copied.Scenes = make([]*Scene, len(s.Scenes))
		for i, scene := range s.Scenes {
			copied.Scenes[i] = scene.Clone()
		}
	}
	return copied
}

// PendingScene returns the scene at the current index if it is still
// pending, or nil. The workflow keeps at most one non-terminal scene.
func (s *StorySession) PendingScene() *Scene {
	scene := s.SceneAt(s.CurrentIndex)
	if scene == nil || scene.Status.IsTerminal() {
		return nil
	}
	return scene
}

// SceneAt returns the scene with the given 1-based index, or nil
func (s *StorySession) SceneAt(index int) *Scene {
	for _, scene := range s.Scenes {
		if scene.Index == index {
			return scene
		}
	}
	return nil
}

// AcceptedScenes returns accepted scenes in index order
func (s *StorySession) AcceptedScenes() []*Scene {
	accepted := make([]*Scene, 0, len(s.Scenes))
	for _, scene := range s.Scenes {
		if scene.Status == types.SceneStatusAccepted {
			accepted = append(accepted, scene)
		}
	}
	return accepted
}
