package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// sceneDoc embeds scenes inside the session document. A session is small
// (a handful of scenes) and every step rewrites the whole thing, which
// keeps step persistence a single document write.
type sceneDoc struct {
	Index          int       `firestore:"Index"`
	Text           string    `firestore:"Text"`
	Status         string    `firestore:"Status"`
	Instruction    string    `firestore:"Instruction"`
	CharacterNames []string  `firestore:"CharacterNames"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
	UpdatedAt      time.Time `firestore:"UpdatedAt"`
}

type sessionDoc struct {
	ID           model.SessionID `firestore:"ID"`
	Title        string          `firestore:"Title"`
	Premise      string          `firestore:"Premise"`
	Scenes       []sceneDoc      `firestore:"Scenes"`
	CurrentIndex int             `firestore:"CurrentIndex"`
	Phase        string          `firestore:"Phase"`
	CreatedAt    time.Time       `firestore:"CreatedAt"`
	UpdatedAt    time.Time       `firestore:"UpdatedAt"`
}

func toSessionDoc(s *model.StorySession) *sessionDoc {
	doc := &sessionDoc{
		ID:           s.ID,
		Title:        s.Prompt.Title,
		Premise:      s.Prompt.Premise,
		CurrentIndex: s.CurrentIndex,
		Phase:        s.Phase.String(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	doc.Scenes = make([]sceneDoc, 0, len(s.Scenes))
	for _, scene := range s.Scenes {
		doc.Scenes = append(doc.Scenes, sceneDoc{
			Index:          scene.Index,
			Text:           scene.Text,
			Status:         scene.Status.String(),
			Instruction:    scene.Instruction,
			CharacterNames: scene.CharacterNames,
			CreatedAt:      scene.CreatedAt,
			UpdatedAt:      scene.UpdatedAt,
		})
	}
	return doc
}

func fromSessionDoc(d *sessionDoc) (*model.StorySession, error) {
	phase, err := types.ParseSessionPhase(d.Phase)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid session phase in document", goerr.V("id", d.ID))
	}

	s := &model.StorySession{
		ID: d.ID,
		Prompt: model.StoryPrompt{
			Title:   d.Title,
			Premise: d.Premise,
		},
		CurrentIndex: d.CurrentIndex,
		Phase:        phase,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}

	s.Scenes = make([]*model.Scene, 0, len(d.Scenes))
	for _, sd := range d.Scenes {
		sceneStatus, err := types.ParseSceneStatus(sd.Status)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid scene status in document",
				goerr.V("id", d.ID), goerr.V("scene_index", sd.Index))
		}
		s.Scenes = append(s.Scenes, &model.Scene{
			Index:          sd.Index,
			Text:           sd.Text,
			Status:         sceneStatus,
			Instruction:    sd.Instruction,
			CharacterNames: sd.CharacterNames,
			CreatedAt:      sd.CreatedAt,
			UpdatedAt:      sd.UpdatedAt,
		})
	}

	return s, nil
}

func docToSession(doc *firestore.DocumentSnapshot) (*model.StorySession, error) {
	var d sessionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromSessionDoc(&d)
}

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{
		client: client,
	}
}

func (r *sessionRepository) sessionsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_sessions"
	}
	return "sessions"
}

func (r *sessionRepository) Create(ctx context.Context, session *model.StorySession) error {
	docRef := r.client.Collection(r.sessionsCollection()).Doc(string(session.ID))

	if _, err := docRef.Get(ctx); err == nil {
		return goerr.Wrap(ErrAlreadyExists, "session already exists", goerr.V("id", session.ID))
	} else if status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to check session existence", goerr.V("id", session.ID))
	}

	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := docRef.Set(ctx, toSessionDoc(session)); err != nil {
		return goerr.Wrap(err, "failed to create session", goerr.V("id", session.ID))
	}

	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.StorySession, error) {
	doc, err := r.client.Collection(r.sessionsCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("id", id))
	}

	s, err := docToSession(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("id", id))
	}

	return s, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.StorySession) error {
	docRef := r.client.Collection(r.sessionsCollection()).Doc(string(session.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", session.ID))
		}
		return goerr.Wrap(err, "failed to get session", goerr.V("id", session.ID))
	}

	current, err := docToSession(doc)
	if err != nil {
		return goerr.Wrap(err, "failed to unmarshal session", goerr.V("id", session.ID))
	}

	session.CreatedAt = current.CreatedAt
	session.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, toSessionDoc(session)); err != nil {
		return goerr.Wrap(err, "failed to update session", goerr.V("id", session.ID))
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id model.SessionID) error {
	docRef := r.client.Collection(r.sessionsCollection()).Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get session", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.V("id", id))
	}

	return nil
}
