package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/events"
)

// NotificationService defines the notification commands
type NotificationService interface {
	MarkAllRead(ctx context.Context, uid string) (int, error)
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	repos     *repositories.Repositories
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repos *repositories.Repositories, publisher events.Publisher, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		repos:     repos,
		publisher: publisher,
		logger:    logger,
	}
}

// MarkAllRead flags every unread notification of the caller as read in one
// batch and returns how many were unread. The caller's watermark is left alone.
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, uid string) (int, error) {
	var count int
	err := observe("mark_notifications_read", uid, func() error {
		unread, err := s.repos.Notifications.ListUnread(ctx, uid)
		if err != nil {
			return err
		}

		batch := s.repos.Store.Batch()
		for _, n := range unread {
			batch.Update(repositories.NotificationPath(n.ID), map[string]any{"isRead": true})
		}
		if err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("error marking notifications read: %w", err)
		}

		count = len(unread)
		s.logger.Debug().Str("uid", uid).Int("count", count).Msg("Notifications marked read")
		emit(ctx, s.publisher, s.logger, events.New(events.NotificationsRead, uid, uid))
		return nil
	})
	return count, err
}
