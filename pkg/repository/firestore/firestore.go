package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/interfaces"
)

type Firestore struct {
	client    *firestore.Client
	character *characterRepository
	session   *sessionRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used by integration
// tests to isolate runs against a shared project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.character.collectionPrefix = prefix
		f.session.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:    client,
		character: newCharacterRepository(client),
		session:   newSessionRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Character() interfaces.CharacterRepository {
	return f.character
}

func (f *Firestore) Session() interfaces.SessionRepository {
	return f.session
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
