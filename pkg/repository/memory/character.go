package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
)

type characterRepository struct {
	mu         sync.RWMutex
	characters map[model.CharacterID]*model.Character
	nextSeq    int64
}

func newCharacterRepository() *characterRepository {
	return &characterRepository{
		characters: make(map[model.CharacterID]*model.Character),
	}
}

func (r *characterRepository) Create(ctx context.Context, character *model.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[character.ID]; exists {
		return goerr.Wrap(ErrAlreadyExists, "character already exists", goerr.V("id", character.ID))
	}

	r.nextSeq++
	created := character.Clone()
	created.Seq = r.nextSeq
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.characters[created.ID] = created

	// Write the assigned fields back so the caller sees the stored state
	character.Seq = created.Seq
	character.CreatedAt = created.CreatedAt
	character.UpdatedAt = created.UpdatedAt
	return nil
}

func (r *characterRepository) Get(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	character, exists := r.characters[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "character not found", goerr.V("id", id))
	}
	return character.Clone(), nil
}

func (r *characterRepository) List(ctx context.Context) ([]*model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Character, 0, len(r.characters))
	for _, c := range r.characters {
		result = append(result, c.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})

	return result, nil
}

func (r *characterRepository) Update(ctx context.Context, character *model.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.characters[character.ID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "character not found", goerr.V("id", character.ID))
	}

	updated := character.Clone()
	updated.Seq = current.Seq
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.characters[updated.ID] = updated
	character.Seq = updated.Seq
	character.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *characterRepository) Delete(ctx context.Context, id model.CharacterID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[id]; !exists {
		return goerr.Wrap(ErrNotFound, "character not found", goerr.V("id", id))
	}

	delete(r.characters, id)
	return nil
}

func (r *characterRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]*model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		character *model.Character
		score     float64
	}

	var candidates []scored
	for _, c := range r.characters {
		if len(c.Embedding) == 0 {
			continue
		}
		s := cosineSimilarity(embedding, c.Embedding)
		candidates = append(candidates, scored{character: c.Clone(), score: s})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].character.Seq < candidates[j].character.Seq
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}

	result := make([]*model.Character, limit)
	for i := 0; i < limit; i++ {
		result[i] = candidates[i].character
	}

	return result, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
