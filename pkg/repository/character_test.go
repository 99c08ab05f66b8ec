package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/storyspark-lab/storyspark/pkg/domain/interfaces"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/repository/firestore"
	"github.com/storyspark-lab/storyspark/pkg/repository/memory"
)

func newCharacter(name, description string, embedding []float32) *model.Character {
	return &model.Character{
		ID:          model.NewCharacterID(),
		Name:        name,
		Description: description,
		Embedding:   embedding,
	}
}

func runCharacterRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns sequence and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		character := newCharacter("Bheem", "a brave village boy", []float32{0.1, 0.2, 0.3})
		if err := repo.Character().Create(ctx, character); err != nil {
			t.Fatalf("failed to create character: %v", err)
		}

		if character.Seq == 0 {
			t.Error("expected non-zero Seq")
		}
		if character.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}

		retrieved, err := repo.Character().Get(ctx, character.ID)
		if err != nil {
			t.Fatalf("failed to get character: %v", err)
		}
		if retrieved.Name != "Bheem" {
			t.Errorf("expected Name=Bheem, got %s", retrieved.Name)
		}
		if retrieved.Description != "a brave village boy" {
			t.Errorf("unexpected Description: %s", retrieved.Description)
		}
		if len(retrieved.Embedding) != 3 {
			t.Errorf("expected Embedding length=3, got %d", len(retrieved.Embedding))
		}
	})

	t.Run("Create rejects duplicate ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		character := newCharacter("Raju", "a curious boy", []float32{0.5, 0.5, 0.5})
		if err := repo.Character().Create(ctx, character); err != nil {
			t.Fatalf("failed to create character: %v", err)
		}

		dup := newCharacter("Raju", "duplicate", nil)
		dup.ID = character.ID
		err := repo.Character().Create(ctx, dup)
		if !errors.Is(err, memory.ErrAlreadyExists) && !errors.Is(err, firestore.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("Get unknown ID returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Character().Get(ctx, model.NewCharacterID())
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List returns characters in insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		names := []string{"Bheem", "Chutki", "Jaggu"}
		created := make(map[model.CharacterID]string, len(names))
		var order []model.CharacterID
		for _, name := range names {
			c := newCharacter(name, name+" description", []float32{0.1, 0.2, 0.3})
			if err := repo.Character().Create(ctx, c); err != nil {
				t.Fatalf("failed to create character %s: %v", name, err)
			}
			created[c.ID] = name
			order = append(order, c.ID)
		}

		listed, err := repo.Character().List(ctx)
		if err != nil {
			t.Fatalf("failed to list characters: %v", err)
		}

		// A shared backend may hold other test data, so only check the
		// relative order of what this test created.
		var got []model.CharacterID
		for _, c := range listed {
			if _, ok := created[c.ID]; ok {
				got = append(got, c.ID)
			}
		}
		if len(got) != len(order) {
			t.Fatalf("expected %d created characters in list, got %d", len(order), len(got))
		}
		for i, id := range order {
			if got[i] != id {
				t.Errorf("expected %s at position %d, got %s", created[id], i, created[got[i]])
			}
		}
	})

	t.Run("Update replaces fields and keeps Seq", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		character := newCharacter("Kalia", "a bully", []float32{0.9, 0.1, 0.0})
		if err := repo.Character().Create(ctx, character); err != nil {
			t.Fatalf("failed to create character: %v", err)
		}
		originalSeq := character.Seq

		character.Description = "a reformed bully"
		character.Embedding = []float32{0.8, 0.2, 0.0}
		if err := repo.Character().Update(ctx, character); err != nil {
			t.Fatalf("failed to update character: %v", err)
		}

		retrieved, err := repo.Character().Get(ctx, character.ID)
		if err != nil {
			t.Fatalf("failed to get character: %v", err)
		}
		if retrieved.Description != "a reformed bully" {
			t.Errorf("unexpected Description: %s", retrieved.Description)
		}
		if retrieved.Seq != originalSeq {
			t.Errorf("expected Seq=%d, got %d", originalSeq, retrieved.Seq)
		}
		if retrieved.Embedding[0] != 0.8 {
			t.Errorf("expected updated embedding, got %v", retrieved.Embedding)
		}
	})

	t.Run("Update unknown ID returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		character := newCharacter("Ghost", "never created", nil)
		err := repo.Character().Update(ctx, character)
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete removes the character", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		character := newCharacter("Dholu", "one of the twins", []float32{0.3, 0.3, 0.3})
		if err := repo.Character().Create(ctx, character); err != nil {
			t.Fatalf("failed to create character: %v", err)
		}

		if err := repo.Character().Delete(ctx, character.ID); err != nil {
			t.Fatalf("failed to delete character: %v", err)
		}

		_, err := repo.Character().Get(ctx, character.ID)
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		err = repo.Character().Delete(ctx, character.ID)
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("FindSimilar ranks by cosine similarity", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		near := newCharacter("Near", "almost the query", []float32{1.0, 0.1, 0.0})
		far := newCharacter("Far", "orthogonal to the query", []float32{0.0, 1.0, 0.0})
		for _, c := range []*model.Character{near, far} {
			if err := repo.Character().Create(ctx, c); err != nil {
				t.Fatalf("failed to create character: %v", err)
			}
		}

		results, err := repo.Character().FindSimilar(ctx, []float32{1.0, 0.0, 0.0}, 50)
		if err != nil {
			t.Fatalf("failed to find similar characters: %v", err)
		}

		// Restrict to this test's characters so shared backends don't
		// interfere with the expected order.
		var got []model.CharacterID
		for _, c := range results {
			if c.ID == near.ID || c.ID == far.ID {
				got = append(got, c.ID)
			}
		}
		if len(got) != 2 {
			t.Fatalf("expected both created characters in results, got %d", len(got))
		}
		if got[0] != near.ID {
			t.Error("expected the nearer character to rank first")
		}
	})

	t.Run("FindSimilar breaks score ties by insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		// Identical embeddings: identical similarity to any query
		embedding := []float32{0.5, 0.5, 0.0}
		first := newCharacter("Bheem", "a brave village boy", embedding)
		second := newCharacter("Chutki", "a kind village girl", embedding)
		if err := repo.Character().Create(ctx, first); err != nil {
			t.Fatalf("failed to create character: %v", err)
		}
		if err := repo.Character().Create(ctx, second); err != nil {
			t.Fatalf("failed to create character: %v", err)
		}

		results, err := repo.Character().FindSimilar(ctx, embedding, 50)
		if err != nil {
			t.Fatalf("failed to find similar characters: %v", err)
		}

		var got []model.CharacterID
		for _, c := range results {
			if c.ID == first.ID || c.ID == second.ID {
				got = append(got, c.ID)
			}
		}
		if len(got) != 2 {
			t.Fatalf("expected both created characters in results, got %d", len(got))
		}
		if got[0] != first.ID || got[1] != second.ID {
			t.Error("expected the earlier-created character to rank first on a tie")
		}
	})

	t.Run("FindSimilar limit caps results", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			c := newCharacter(fmt.Sprintf("extra-%d", i), "filler", []float32{0.1, 0.2, float32(i) * 0.1})
			if err := repo.Character().Create(ctx, c); err != nil {
				t.Fatalf("failed to create character: %v", err)
			}
		}

		results, err := repo.Character().FindSimilar(ctx, []float32{0.1, 0.2, 0.3}, 3)
		if err != nil {
			t.Fatalf("failed to find similar characters: %v", err)
		}
		if len(results) > 3 {
			t.Errorf("expected at most 3 results, got %d", len(results))
		}
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	// Use standard collection names (no prefix) so the existing vector
	// index applies. Isolation comes from random IDs in test data.
	repo, err := firestore.New(ctx, projectID, databaseID)
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func TestMemoryCharacterRepository(t *testing.T) {
	runCharacterRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreCharacterRepository(t *testing.T) {
	runCharacterRepositoryTest(t, newFirestoreRepository)
}
