package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/storyspark-lab/storyspark/pkg/domain/interfaces"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
)

// CharacterUseCase manages the story cast: CRUD plus embedding-based
// similarity retrieval. Descriptions are embedded on every write so the
// stored vector always matches the stored text.
type CharacterUseCase struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
}

func NewCharacterUseCase(repo interfaces.Repository, llmClient gollem.LLMClient) *CharacterUseCase {
	return &CharacterUseCase{
		repo:      repo,
		llmClient: llmClient,
	}
}

func (uc *CharacterUseCase) Create(ctx context.Context, name, description string) (*model.Character, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidArgument, "character name is required")
	}
	if description == "" {
		return nil, goerr.Wrap(ErrInvalidArgument, "character description is required", goerr.V("name", name))
	}

	embedding, err := uc.embed(ctx, description)
	if err != nil {
		return nil, err
	}

	character := &model.Character{
		ID:          model.NewCharacterID(),
		Name:        name,
		Description: description,
		Embedding:   embedding,
	}

	if err := uc.repo.Character().Create(ctx, character); err != nil {
		return nil, goerr.Wrap(err, "failed to store character", goerr.V(CharacterIDKey, character.ID))
	}

	return character, nil
}

func (uc *CharacterUseCase) Update(ctx context.Context, id model.CharacterID, name, description string) (*model.Character, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidArgument, "character name is required")
	}
	if description == "" {
		return nil, goerr.Wrap(ErrInvalidArgument, "character description is required", goerr.V("name", name))
	}

	character, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	character.Name = name
	if description != character.Description {
		embedding, err := uc.embed(ctx, description)
		if err != nil {
			return nil, err
		}
		character.Description = description
		character.Embedding = embedding
	}

	if err := uc.repo.Character().Update(ctx, character); err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrCharacterNotFound, "character was deleted concurrently", goerr.V(CharacterIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to update character", goerr.V(CharacterIDKey, id))
	}

	return character, nil
}

func (uc *CharacterUseCase) Delete(ctx context.Context, id model.CharacterID) error {
	if err := uc.repo.Character().Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrCharacterNotFound, "cannot delete unknown character", goerr.V(CharacterIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete character", goerr.V(CharacterIDKey, id))
	}
	return nil
}

func (uc *CharacterUseCase) Get(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	character, err := uc.repo.Character().Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrCharacterNotFound, "no such character", goerr.V(CharacterIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get character", goerr.V(CharacterIDKey, id))
	}
	return character, nil
}

func (uc *CharacterUseCase) List(ctx context.Context) ([]*model.Character, error) {
	characters, err := uc.repo.Character().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list characters")
	}
	return characters, nil
}

// FindSimilar embeds the query text and returns up to topK characters
// ranked by cosine similarity, ties broken by insertion order.
func (uc *CharacterUseCase) FindSimilar(ctx context.Context, query string, topK int) ([]*model.Character, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, goerr.Wrap(ErrInvalidArgument, "search query is required")
	}
	if topK <= 0 {
		return nil, goerr.Wrap(ErrInvalidArgument, "topK must be positive", goerr.V("topK", topK))
	}

	embedding, err := uc.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	characters, err := uc.repo.Character().FindSimilar(ctx, embedding, topK)
	if err != nil {
		return nil, goerr.Wrap(err, "similarity search failed", goerr.V("topK", topK))
	}

	return characters, nil
}

// RetrieveForPrompt returns the cast for a scene generation step. An
// empty store yields an empty slice, not an error.
func (uc *CharacterUseCase) RetrieveForPrompt(ctx context.Context, premise string, topK int) ([]*model.Character, error) {
	return uc.FindSimilar(ctx, premise, topK)
}

func (uc *CharacterUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := uc.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned")
	}

	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result, nil
}
