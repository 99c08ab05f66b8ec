package model

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimension is the dimension of character embedding vectors.
// Gemini text-embedding-004 uses 768 dimensions.
const EmbeddingDimension = 768

// CharacterID is a UUID-based identifier for Character
type CharacterID string

// NewCharacterID generates a new UUID v4 CharacterID
func NewCharacterID() CharacterID {
	return CharacterID(uuid.New().String())
}

// Character is a user-authored cast member. The embedding is derived from
// the description and recomputed whenever the description changes; it is
// never authored directly.
type Character struct {
	ID          CharacterID
	Name        string
	Description string
	Embedding   []float32
	// Seq is assigned by the repository in insertion order and breaks
	// similarity-score ties (earlier-added character wins).
	Seq       int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the character
func (c *Character) Clone() *Character {
	copied := &Character{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Seq:         c.Seq,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Embedding != nil {
		copied.Embedding = make([]float32, len(c.Embedding))
		copy(copied.Embedding, c.Embedding)
	}
	return copied
}
