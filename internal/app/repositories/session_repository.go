package repositories

import (
	"context"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

// SessionRepository reads sessions
type SessionRepository struct {
	store docstore.Store
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(store docstore.Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// SessionPath is the document path of a session.
func SessionPath(id string) string {
	return docstore.Join(CollectionSessions, id)
}

// AllQuery matches every session. Ordering is applied by the caller.
func (r *SessionRepository) AllQuery() docstore.Query {
	return docstore.Collection(CollectionSessions)
}

// GetByID retrieves a session.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return getOne(ctx, r.store, SessionPath(id), MapSession, apperrors.ErrSessionNotFound)
}

// List returns every session with a valid schedule.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	return fetchAll(ctx, r.store, r.AllQuery(), MapSession)
}
