package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/storyspark-lab/storyspark/pkg/repository/memory"
	"github.com/storyspark-lab/storyspark/pkg/service/scenegen"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
)

func newCharacterUseCases(t *testing.T, llm *mockLLMClient) *usecase.UseCases {
	t.Helper()

	sceneSvc, err := scenegen.New(llm)
	gt.NoError(t, err).Required()

	return usecase.New(memory.New(), llm, sceneSvc)
}

func TestCharacterCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates character with embedding", func(t *testing.T) {
		llm := &mockLLMClient{}
		uc := newCharacterUseCases(t, llm)

		character, err := uc.Character.Create(ctx, "Bheem", "a brave village boy")
		gt.NoError(t, err).Required()
		gt.Value(t, character.Name).Equal("Bheem")
		gt.Value(t, character.Description).Equal("a brave village boy")
		gt.Number(t, len(character.Embedding)).Greater(0)
		gt.Value(t, llm.embedCalls).Equal(1)

		stored, err := uc.Character.Get(ctx, character.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Name).Equal("Bheem")
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		uc := newCharacterUseCases(t, &mockLLMClient{})

		_, err := uc.Character.Create(ctx, "  ", "a description")
		gt.Error(t, err).Is(usecase.ErrInvalidArgument)
	})

	t.Run("empty description is rejected", func(t *testing.T) {
		uc := newCharacterUseCases(t, &mockLLMClient{})

		_, err := uc.Character.Create(ctx, "Bheem", "")
		gt.Error(t, err).Is(usecase.ErrInvalidArgument)
	})
}

func TestCharacterUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("re-embeds only when description changes", func(t *testing.T) {
		llm := &mockLLMClient{}
		uc := newCharacterUseCases(t, llm)

		character, err := uc.Character.Create(ctx, "Bheem", "a brave village boy")
		gt.NoError(t, err).Required()
		gt.Value(t, llm.embedCalls).Equal(1)

		// Name-only change keeps the embedding
		updated, err := uc.Character.Update(ctx, character.ID, "Bheem the Brave", "a brave village boy")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("Bheem the Brave")
		gt.Value(t, llm.embedCalls).Equal(1)

		// Description change triggers a new embedding
		_, err = uc.Character.Update(ctx, character.ID, "Bheem the Brave", "a fearless village boy")
		gt.NoError(t, err).Required()
		gt.Value(t, llm.embedCalls).Equal(2)
	})

	t.Run("unknown character fails with not found", func(t *testing.T) {
		uc := newCharacterUseCases(t, &mockLLMClient{})

		_, err := uc.Character.Update(ctx, "no-such-id", "Name", "description")
		gt.Error(t, err).Is(usecase.ErrCharacterNotFound)
	})
}

func TestCharacterDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("delete is not idempotent", func(t *testing.T) {
		uc := newCharacterUseCases(t, &mockLLMClient{})

		character, err := uc.Character.Create(ctx, "Kalia", "a bully")
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.Character.Delete(ctx, character.ID))
		gt.Error(t, uc.Character.Delete(ctx, character.ID)).Is(usecase.ErrCharacterNotFound)
	})

	t.Run("deleted character never appears in search", func(t *testing.T) {
		uc := newCharacterUseCases(t, &mockLLMClient{})

		keep, err := uc.Character.Create(ctx, "Bheem", "a brave village boy")
		gt.NoError(t, err).Required()
		gone, err := uc.Character.Create(ctx, "Chutki", "a kind village girl")
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.Character.Delete(ctx, gone.ID))

		results, err := uc.Character.FindSimilar(ctx, "village story", 10)
		gt.NoError(t, err).Required()
		for _, c := range results {
			gt.Value(t, c.ID).NotEqual(gone.ID)
		}
		gt.Array(t, results).Length(1)
		gt.Value(t, results[0].ID).Equal(keep.ID)
	})
}

func TestCharacterFindSimilar(t *testing.T) {
	ctx := context.Background()

	t.Run("non-positive topK is rejected", func(t *testing.T) {
		uc := newCharacterUseCases(t, &mockLLMClient{})

		_, err := uc.Character.FindSimilar(ctx, "query", 0)
		gt.Error(t, err).Is(usecase.ErrInvalidArgument)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		uc := newCharacterUseCases(t, &mockLLMClient{})

		_, err := uc.Character.FindSimilar(ctx, " ", 3)
		gt.Error(t, err).Is(usecase.ErrInvalidArgument)
	})

	t.Run("equal scores fall back to insertion order", func(t *testing.T) {
		// All texts embed to the same vector: every similarity ties
		llm := &mockLLMClient{
			embedFn: func(text string) []float64 {
				return []float64{1, 0, 0}
			},
		}
		uc := newCharacterUseCases(t, llm)

		bheem, err := uc.Character.Create(ctx, "Bheem", "a brave village boy")
		gt.NoError(t, err).Required()
		chutki, err := uc.Character.Create(ctx, "Chutki", "a kind village girl")
		gt.NoError(t, err).Required()

		results, err := uc.Character.FindSimilar(ctx, "village story", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(2)
		gt.Value(t, results[0].ID).Equal(bheem.ID)
		gt.Value(t, results[1].ID).Equal(chutki.ID)
	})

	t.Run("empty store retrieves empty cast without error", func(t *testing.T) {
		uc := newCharacterUseCases(t, &mockLLMClient{})

		results, err := uc.Character.RetrieveForPrompt(ctx, "a village threatened by a flood", 3)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(0)
	})
}
