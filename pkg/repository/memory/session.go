package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*model.StorySession
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[model.SessionID]*model.StorySession),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.StorySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return goerr.Wrap(ErrAlreadyExists, "session already exists", goerr.V("id", session.ID))
	}

	created := session.Clone()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.sessions[created.ID] = created
	session.CreatedAt = created.CreatedAt
	session.UpdatedAt = created.UpdatedAt
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.StorySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
	}
	return session.Clone(), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.StorySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.sessions[session.ID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", session.ID))
	}

	updated := session.Clone()
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.sessions[updated.ID] = updated
	session.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id model.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
	}

	delete(r.sessions, id)
	return nil
}
