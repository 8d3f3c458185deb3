package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/derive"
	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/events"
)

// ChatService defines the direct message commands
type ChatService interface {
	OpenChat(ctx context.Context, uid, other string) (string, error)
	SendMessage(ctx context.Context, uid, chatID, text string) error
	MarkRead(ctx context.Context, uid, chatID string) error
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	repos     *repositories.Repositories
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(repos *repositories.Repositories, publisher events.Publisher, logger zerolog.Logger) ChatService {
	return &chatServiceImpl{
		repos:     repos,
		publisher: publisher,
		logger:    logger,
	}
}

// OpenChat returns the conversation id of the caller and other, creating the
// conversation on first contact. A user who blocked the caller cannot be reached.
func (s *chatServiceImpl) OpenChat(ctx context.Context, uid, other string) (string, error) {
	chatID := models.ChatID(uid, other)
	err := observe("open_chat", uid, func() error {
		if other == "" || other == uid {
			return apperrors.ErrSelfChat
		}
		me, err := s.repos.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}
		them, err := s.repos.Users.GetByID(ctx, other)
		if err != nil {
			return err
		}
		if derive.ChatAccessTo(me, them) == derive.ChatBlockedByOther {
			return apperrors.ErrChatBlocked
		}

		_, err = s.repos.Store.Get(ctx, repositories.ChatPath(chatID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("error reading conversation: %w", err)
		}

		pair := models.ChatParticipants(uid, other)
		if err := s.repos.Store.Set(ctx, repositories.ChatPath(chatID), map[string]any{
			"participants": pair,
			"createdAt":    docstore.ServerTimestamp(),
			"unreadCount":  map[string]any{pair[0]: 0, pair[1]: 0},
		}, false); err != nil {
			return fmt.Errorf("error creating conversation: %w", err)
		}

		s.logger.Info().Str("uid", uid).Str("chatID", chatID).Msg("Conversation created")
		emit(ctx, s.publisher, s.logger, events.New(events.ChatOpened, uid, chatID))
		return nil
	})
	if err != nil {
		return "", err
	}
	return chatID, nil
}

// SendMessage appends a message and updates the conversation summary and the
// partner's unread counter in one batch. Blank text is ignored.
func (s *chatServiceImpl) SendMessage(ctx context.Context, uid, chatID, text string) error {
	return observe("send_message", uid, func() error {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		conv, err := s.repos.Chats.GetByID(ctx, chatID)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(uid) {
			return apperrors.NewForbiddenError("You are not part of this conversation")
		}
		other := conv.Partner(uid)

		me, err := s.repos.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}
		them, err := s.repos.Users.GetByID(ctx, other)
		if err != nil {
			return err
		}
		if derive.ChatAccessTo(me, them) != derive.ChatAllowed {
			return apperrors.ErrChatBlocked
		}

		err = s.repos.Store.Batch().
			Set(docstore.Join(repositories.MessagesCollection(chatID), docstore.NewID()), map[string]any{
				"text":      text,
				"senderId":  uid,
				"createdAt": docstore.ServerTimestamp(),
			}, false).
			Update(repositories.ChatPath(chatID), map[string]any{
				"lastMessage": map[string]any{
					"text":      text,
					"senderId":  uid,
					"createdAt": docstore.ServerTimestamp(),
				},
				"unreadCount." + other: docstore.Increment(1),
			}).
			Commit(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("uid", uid).Str("chatID", chatID).Msg("Failed to send message")
			return fmt.Errorf("error sending message: %w", err)
		}

		emit(ctx, s.publisher, s.logger, events.New(events.ChatMessageSent, uid, chatID))
		return nil
	})
}

// MarkRead resets the caller's unread counter of a conversation.
func (s *chatServiceImpl) MarkRead(ctx context.Context, uid, chatID string) error {
	return observe("mark_chat_read", uid, func() error {
		if err := s.repos.Store.Update(ctx, repositories.ChatPath(chatID), map[string]any{
			"unreadCount." + uid: 0,
		}); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				return apperrors.NewResourceNotFoundError("conversation not found")
			}
			return fmt.Errorf("error marking conversation read: %w", err)
		}
		return nil
	})
}
