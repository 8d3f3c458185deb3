package repositories

import (
	"context"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

// ChatRepository reads conversations and their messages
type ChatRepository struct {
	store docstore.Store
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(store docstore.Store) *ChatRepository {
	return &ChatRepository{store: store}
}

// ChatPath is the document path of a conversation.
func ChatPath(chatID string) string {
	return docstore.Join(CollectionChats, chatID)
}

// MessagesCollection is the messages collection of a conversation.
func MessagesCollection(chatID string) string {
	return docstore.Join(ChatPath(chatID), CollectionMessages)
}

// ForUserQuery matches the conversations uid takes part in.
func (r *ChatRepository) ForUserQuery(uid string) docstore.Query {
	return docstore.Collection(CollectionChats).Where("participants", docstore.OpArrayContains, uid)
}

// MessagesQuery returns the messages of a conversation, oldest first.
func (r *ChatRepository) MessagesQuery(chatID string) docstore.Query {
	return docstore.Collection(MessagesCollection(chatID)).OrderBy("createdAt", docstore.Asc)
}

// GetByID retrieves a conversation.
func (r *ChatRepository) GetByID(ctx context.Context, chatID string) (*models.ChatConversation, error) {
	return getOne(ctx, r.store, ChatPath(chatID), MapChat, apperrors.NewResourceNotFoundError("conversation not found"))
}

// ListForUser returns the conversations of uid.
func (r *ChatRepository) ListForUser(ctx context.Context, uid string) ([]models.ChatConversation, error) {
	return fetchAll(ctx, r.store, r.ForUserQuery(uid), MapChat)
}
