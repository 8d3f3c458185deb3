package repositories

import (
	"context"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

// CommunityRepository reads communities, their posts and the comments on posts
type CommunityRepository struct {
	store docstore.Store
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(store docstore.Store) *CommunityRepository {
	return &CommunityRepository{store: store}
}

// CommunityPath is the document path of a community.
func CommunityPath(id string) string {
	return docstore.Join(CollectionCommunities, id)
}

// PostsCollection is the posts collection of a community.
func PostsCollection(communityID string) string {
	return docstore.Join(CollectionCommunities, communityID, CollectionPosts)
}

// PostPath is the document path of a post.
func PostPath(communityID, postID string) string {
	return docstore.Join(PostsCollection(communityID), postID)
}

// CommentsCollection is the comments collection of a post.
func CommentsCollection(communityID, postID string) string {
	return docstore.Join(PostPath(communityID, postID), CollectionComments)
}

// CommentPath is the document path of a comment.
func CommentPath(communityID, postID, commentID string) string {
	return docstore.Join(CommentsCollection(communityID, postID), commentID)
}

// AllQuery matches every community.
func (r *CommunityRepository) AllQuery() docstore.Query {
	return docstore.Collection(CollectionCommunities)
}

// PostsQuery returns the posts of one community, newest first.
func (r *CommunityRepository) PostsQuery(communityID string) docstore.Query {
	return docstore.Collection(PostsCollection(communityID)).OrderBy("createdAt", docstore.Desc)
}

// AllPostsQuery returns the posts of every community, newest first.
func (r *CommunityRepository) AllPostsQuery() docstore.Query {
	return docstore.CollectionGroup(CollectionPosts).OrderBy("createdAt", docstore.Desc)
}

// CommentsQuery returns the comments of a post, oldest first.
func (r *CommunityRepository) CommentsQuery(communityID, postID string) docstore.Query {
	return docstore.Collection(CommentsCollection(communityID, postID)).OrderBy("createdAt", docstore.Asc)
}

// GetByID retrieves a community.
func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	return getOne(ctx, r.store, CommunityPath(id), MapCommunity, apperrors.ErrCommunityNotFound)
}

// GetPost retrieves a post.
func (r *CommunityRepository) GetPost(ctx context.Context, communityID, postID string) (*models.CommunityPost, error) {
	return getOne(ctx, r.store, PostPath(communityID, postID), MapPost, apperrors.ErrPostNotFound)
}

// GetComment retrieves a comment.
func (r *CommunityRepository) GetComment(ctx context.Context, communityID, postID, commentID string) (*models.Comment, error) {
	return getOne(ctx, r.store, CommentPath(communityID, postID, commentID), MapComment,
		apperrors.NewResourceNotFoundError("comment not found"))
}
