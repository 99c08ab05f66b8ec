package firestore

import (
	"context"
	"math"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// characterDoc is the Firestore document representation of model.Character.
// Embedding is stored as firestore.Vector32 so that FindNearest vector search works.
type characterDoc struct {
	ID          model.CharacterID  `firestore:"ID"`
	Name        string             `firestore:"Name"`
	Description string             `firestore:"Description"`
	Embedding   firestore.Vector32 `firestore:"Embedding,omitempty"`
	Seq         int64              `firestore:"Seq"`
	CreatedAt   time.Time          `firestore:"CreatedAt"`
	UpdatedAt   time.Time          `firestore:"UpdatedAt"`
}

func toCharacterDoc(c *model.Character) *characterDoc {
	doc := &characterDoc{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Seq:         c.Seq,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if len(c.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(c.Embedding)
	}
	return doc
}

func fromCharacterDoc(d *characterDoc) *model.Character {
	c := &model.Character{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Seq:         d.Seq,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.Embedding) > 0 {
		c.Embedding = []float32(d.Embedding)
	}
	return c
}

func docToCharacter(doc *firestore.DocumentSnapshot) (*model.Character, error) {
	var d characterDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromCharacterDoc(&d), nil
}

type characterRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCharacterRepository(client *firestore.Client) *characterRepository {
	return &characterRepository{
		client: client,
	}
}

func (r *characterRepository) charactersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_characters"
	}
	return "characters"
}

func (r *characterRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *characterRepository) characterCounterDoc() string {
	return "character_counter"
}

// nextSeq allocates the next insertion-order sequence number via a
// transactional counter document.
func (r *characterRepository) nextSeq(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.characterCounterDoc())

	var seq int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				seq = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": seq,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		seq = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: seq},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to allocate sequence number")
	}

	return seq, nil
}

func (r *characterRepository) Create(ctx context.Context, character *model.Character) error {
	docRef := r.client.Collection(r.charactersCollection()).Doc(string(character.ID))

	if _, err := docRef.Get(ctx); err == nil {
		return goerr.Wrap(ErrAlreadyExists, "character already exists", goerr.V("id", character.ID))
	} else if status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to check character existence", goerr.V("id", character.ID))
	}

	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	character.Seq = seq
	character.CreatedAt = now
	character.UpdatedAt = now

	if _, err := docRef.Set(ctx, toCharacterDoc(character)); err != nil {
		return goerr.Wrap(err, "failed to create character", goerr.V("id", character.ID))
	}

	return nil
}

func (r *characterRepository) Get(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	doc, err := r.client.Collection(r.charactersCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "character not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get character", goerr.V("id", id))
	}

	c, err := docToCharacter(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal character", goerr.V("id", id))
	}

	return c, nil
}

func (r *characterRepository) List(ctx context.Context) ([]*model.Character, error) {
	iter := r.client.Collection(r.charactersCollection()).
		OrderBy("Seq", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	characters := make([]*model.Character, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate characters")
		}

		c, err := docToCharacter(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal character")
		}

		characters = append(characters, c)
	}

	return characters, nil
}

func (r *characterRepository) Update(ctx context.Context, character *model.Character) error {
	docRef := r.client.Collection(r.charactersCollection()).Doc(string(character.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "character not found", goerr.V("id", character.ID))
		}
		return goerr.Wrap(err, "failed to get character", goerr.V("id", character.ID))
	}

	current, err := docToCharacter(doc)
	if err != nil {
		return goerr.Wrap(err, "failed to unmarshal character", goerr.V("id", character.ID))
	}

	character.Seq = current.Seq
	character.CreatedAt = current.CreatedAt
	character.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, toCharacterDoc(character)); err != nil {
		return goerr.Wrap(err, "failed to update character", goerr.V("id", character.ID))
	}

	return nil
}

func (r *characterRepository) Delete(ctx context.Context, id model.CharacterID) error {
	docRef := r.client.Collection(r.charactersCollection()).Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "character not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get character", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete character", goerr.V("id", id))
	}

	return nil
}

func (r *characterRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]*model.Character, error) {
	vq := r.client.Collection(r.charactersCollection()).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	type scored struct {
		character *model.Character
		score     float64
	}

	candidates := make([]scored, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		c, err := docToCharacter(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal character from vector search")
		}

		candidates = append(candidates, scored{character: c, score: cosineSimilarity(embedding, c.Embedding)})
	}

	// FindNearest order is unspecified for equal distances, so re-rank
	// locally with insertion order as the tie-break.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].character.Seq < candidates[j].character.Seq
	})

	characters := make([]*model.Character, 0, len(candidates))
	for _, cand := range candidates {
		characters = append(characters, cand.character)
	}

	return characters, nil
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
