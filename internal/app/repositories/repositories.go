package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

// Collection names shared with every client of the store
const (
	CollectionUsers         = "users"
	CollectionSessions      = "sessions"
	CollectionTestimonials  = "testimonials"
	CollectionCommunities   = "communities"
	CollectionPosts         = "posts"
	CollectionComments      = "comments"
	CollectionNotifications = "notifications"
	CollectionChats         = "chats"
	CollectionMessages      = "messages"
)

// Repositories holds all the repository instances
type Repositories struct {
	Store         docstore.Store
	Users         *UserRepository
	Sessions      *SessionRepository
	Communities   *CommunityRepository
	Notifications *NotificationRepository
	Chats         *ChatRepository
}

// NewRepositories initializes all repositories over one store
func NewRepositories(store docstore.Store) *Repositories {
	return &Repositories{
		Store:         store,
		Users:         NewUserRepository(store),
		Sessions:      NewSessionRepository(store),
		Communities:   NewCommunityRepository(store),
		Notifications: NewNotificationRepository(store),
		Chats:         NewChatRepository(store),
	}
}

// getOne reads one document and maps it, translating a missing document into notFound.
func getOne[T any](ctx context.Context, store docstore.Store, path string, mapper Mapper[T], notFound error) (*T, error) {
	doc, err := store.Get(ctx, path)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	v, err := mapper(doc)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return &v, nil
}

// fetchAll runs q once and maps every document, skipping the ones the mapper rejects.
func fetchAll[T any](ctx context.Context, store docstore.Store, q docstore.Query, mapper Mapper[T]) ([]T, error) {
	docs, err := docstore.Fetch(ctx, store, q)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", q.Collection, err)
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := mapper(d)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
