package interfaces

import (
	"context"

	"github.com/storyspark-lab/storyspark/pkg/domain/model"
)

// Repository bundles the persistence backends. Implementations live in
// pkg/repository/memory and pkg/repository/firestore.
type Repository interface {
	Character() CharacterRepository
	Session() SessionRepository
	Close() error
}

// CharacterRepository persists the story cast and answers vector
// similarity queries over character embeddings.
type CharacterRepository interface {
	Create(ctx context.Context, character *model.Character) error
	Get(ctx context.Context, id model.CharacterID) (*model.Character, error)
	List(ctx context.Context) ([]*model.Character, error)
	Update(ctx context.Context, character *model.Character) error
	Delete(ctx context.Context, id model.CharacterID) error

	// FindSimilar returns up to limit characters ranked by cosine
	// similarity to the given embedding, most similar first. Ties are
	// broken by insertion order (smaller Seq first).
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]*model.Character, error)
}

// SessionRepository persists story sessions. Update replaces the whole
// session document so a step either lands completely or not at all.
type SessionRepository interface {
	Create(ctx context.Context, session *model.StorySession) error
	Get(ctx context.Context, id model.SessionID) (*model.StorySession, error)
	Update(ctx context.Context, session *model.StorySession) error
	Delete(ctx context.Context, id model.SessionID) error
}
