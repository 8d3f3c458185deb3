package repositories

import (
	"context"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

// NotificationRepository reads notifications
type NotificationRepository struct {
	store docstore.Store
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(store docstore.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// NotificationPath is the document path of a notification.
func NotificationPath(id string) string {
	return docstore.Join(CollectionNotifications, id)
}

// ForUserQuery returns the notifications addressed to uid, newest first.
func (r *NotificationRepository) ForUserQuery(uid string) docstore.Query {
	return docstore.Collection(CollectionNotifications).
		Where("userId", docstore.OpEqual, uid).
		OrderBy("createdAt", docstore.Desc)
}

// ListForUser returns the notifications addressed to uid.
func (r *NotificationRepository) ListForUser(ctx context.Context, uid string) ([]models.Notification, error) {
	return fetchAll(ctx, r.store, r.ForUserQuery(uid), MapNotification)
}

// ListUnread returns the unread notifications of uid.
func (r *NotificationRepository) ListUnread(ctx context.Context, uid string) ([]models.Notification, error) {
	q := r.ForUserQuery(uid).Where("isRead", docstore.OpEqual, false)
	return fetchAll(ctx, r.store, q, MapNotification)
}
