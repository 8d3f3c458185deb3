package repositories

import (
	"context"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

// UserRepository reads profiles and testimonials
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// UserPath is the document path of a profile.
func UserPath(uid string) string {
	return docstore.Join(CollectionUsers, uid)
}

// TestimonialsCollection is the testimonials collection path.
func TestimonialsCollection() string {
	return CollectionTestimonials
}

// AllQuery matches every profile.
func (r *UserRepository) AllQuery() docstore.Query {
	return docstore.Collection(CollectionUsers)
}

// TestimonialsQuery returns the newest limit testimonials.
func (r *UserRepository) TestimonialsQuery(limit int) docstore.Query {
	return docstore.Collection(CollectionTestimonials).OrderBy("createdAt", docstore.Desc).LimitTo(limit)
}

// GetByID retrieves a profile. A missing profile yields apperrors.ErrUserNotFound.
func (r *UserRepository) GetByID(ctx context.Context, uid string) (*models.UserProfile, error) {
	return getOne(ctx, r.store, UserPath(uid), MapUser, apperrors.ErrUserNotFound)
}

// List returns every profile.
func (r *UserRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	return fetchAll(ctx, r.store, r.AllQuery(), MapUser)
}
