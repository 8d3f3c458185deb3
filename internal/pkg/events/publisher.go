// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/pkg/metrics"
)

// Routing keys
const (
	ProfileSaved      = "profile.saved"
	UserBlockToggled  = "user.block_toggled"
	SessionCreated    = "session.created"
	SessionJoined     = "session.joined"
	SessionLeft       = "session.left"
	SessionEnded      = "session.ended"
	TestimonialAdded  = "testimonial.added"
	CommunityCreated  = "community.created"
	CommunityUpdated  = "community.updated"
	CommunityFollowed = "community.follow_toggled"
	CommunityAdmins   = "community.admins_changed"
	PostCreated       = "post.created"
	PostUpdated       = "post.updated"
	PostDeleted       = "post.deleted"
	PostLikeToggled   = "post.like_toggled"
	CommentAdded      = "comment.added"
	CommentDeleted    = "comment.deleted"
	ChatOpened        = "chat.opened"
	ChatMessageSent   = "chat.message_sent"
	NotificationsRead = "notifications.read"
)

// Event is the envelope of every published message.
type Event struct {
	Type       string         `json:"type"`
	ActorID    string         `json:"actorId"`
	Subject    string         `json:"subject,omitempty"`
	Recipients int            `json:"recipients,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// New builds an event of type key.
func New(key, actorID, subject string) Event {
	return Event{Type: key, ActorID: actorID, Subject: subject, OccurredAt: time.Now().UTC()}
}

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NewPublisher builds a RabbitMQ publisher, or a noop publisher when AMQP is
// disabled or unreachable.
func NewPublisher(amqpURL, exchange string, logger zerolog.Logger) Publisher {
	if amqpURL == "" {
		logger.Info().Msg("event publishing disabled, using noop: empty amqp url")
		return NoopPublisher{logger: logger}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		logger.Warn().Err(err).Msg("event publishing disabled, using noop")
		return NoopPublisher{logger: logger}
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn().Err(err).Msg("event publishing disabled, using noop")
		_ = conn.Close()
		return NoopPublisher{logger: logger}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		logger.Warn().Err(err).Msg("event publishing disabled, using noop")
		_ = ch.Close()
		_ = conn.Close()
		return NoopPublisher{logger: logger}
	}

	logger.Info().Str("exchange", exchange).Msg("rabbitmq connected")
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange, logger: logger}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

func (p *amqpPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Headers:      amqp.Table{"actor": event.ActorID},
		Body:         body,
	})
	if err != nil {
		metrics.IncEventPublishError()
		p.logger.Error().Err(err).Str("routing_key", event.Type).Msg("event publish failed")
	}
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher logs events instead of sending them.
type NoopPublisher struct {
	logger zerolog.Logger
}

func (p NoopPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debug().Str("routing_key", event.Type).Str("actor", event.ActorID).Str("subject", event.Subject).Msg("noop publish")
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

// Mode reports the publisher mode for logging.
func Mode(p Publisher) string {
	switch p.(type) {
	case *amqpPublisher:
		return "amqp"
	case NoopPublisher, *NoopPublisher:
		return "noop"
	default:
		return "unknown"
	}
}
