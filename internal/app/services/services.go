// Package services holds the command handlers. Every handler needs an acting
// uid; without one it returns apperrors.ErrUnauthorized and writes nothing.
// Reads of the results happen through live subscriptions, not return values.
package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/events"
	"github.com/campusconnect/campusconnect/internal/pkg/metrics"
	"github.com/campusconnect/campusconnect/internal/pkg/suggest"
	"github.com/campusconnect/campusconnect/internal/pkg/videoroom"
)

// Services groups the command handlers
type Services struct {
	Profiles      ProfileService
	Sessions      SessionService
	Communities   CommunityService
	Chats         ChatService
	Notifications NotificationService
}

// NewServices wires every handler over the same repositories and publisher
func NewServices(
	repos *repositories.Repositories,
	publisher events.Publisher,
	suggester suggest.Suggester,
	rooms *videoroom.Builder,
	logger zerolog.Logger,
) *Services {
	return &Services{
		Profiles:      NewProfileService(repos, publisher, suggester, logger.With().Str("service", "profile").Logger()),
		Sessions:      NewSessionService(repos, publisher, rooms, logger.With().Str("service", "session").Logger()),
		Communities:   NewCommunityService(repos, publisher, logger.With().Str("service", "community").Logger()),
		Chats:         NewChatService(repos, publisher, logger.With().Str("service", "chat").Logger()),
		Notifications: NewNotificationService(repos, publisher, logger.With().Str("service", "notification").Logger()),
	}
}

// observe runs a command and records its outcome.
func observe(command, actor string, fn func() error) error {
	var err error
	if actor == "" {
		err = apperrors.ErrUnauthorized
	} else {
		err = fn()
	}
	metrics.ObserveCommand(command, err)
	return err
}

// emit publishes an event. Delivery failures are logged and never fail the command.
func emit(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Msg("Failed to publish event")
	}
}
