package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/derive"
	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/events"
	"github.com/campusconnect/campusconnect/internal/pkg/richtext"
)

// CommunityService defines the community, post and comment commands
type CommunityService interface {
	CreateCommunity(ctx context.Context, uid string, req *dto.CreateCommunityRequest) (string, error)
	UpdateCommunity(ctx context.Context, uid, communityID string, req *dto.UpdateCommunityRequest) error
	ToggleFollow(ctx context.Context, uid, communityID string) (bool, error)
	AddAdmin(ctx context.Context, uid, communityID, target string) error
	RemoveAdmin(ctx context.Context, uid, communityID, target string) error

	CreatePost(ctx context.Context, uid, communityID string, req *dto.PostRequest) (string, error)
	UpdatePost(ctx context.Context, uid, communityID, postID string, req *dto.PostRequest) error
	DeletePost(ctx context.Context, uid, communityID, postID string) error
	ToggleLike(ctx context.Context, uid, communityID, postID string) (bool, error)

	AddComment(ctx context.Context, uid, communityID, postID string, req *dto.CommentRequest) (string, error)
	DeleteComment(ctx context.Context, uid, communityID, postID, commentID string) error
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	repos     *repositories.Repositories
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(repos *repositories.Repositories, publisher events.Publisher, logger zerolog.Logger) CommunityService {
	return &communityServiceImpl{
		repos:     repos,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateCommunity makes the caller owner, admin and first follower of a new community.
func (s *communityServiceImpl) CreateCommunity(ctx context.Context, uid string, req *dto.CreateCommunityRequest) (string, error) {
	id := docstore.NewID()
	err := observe("create_community", uid, func() error {
		if _, err := s.repos.Users.GetByID(ctx, uid); err != nil {
			return err
		}

		fields := map[string]any{
			"name":        strings.TrimSpace(req.Name),
			"description": strings.TrimSpace(req.Description),
			"college":     req.College,
			"ownerId":     uid,
			"adminIds":    []string{uid},
			"followerIds": []string{uid},
			"createdAt":   docstore.ServerTimestamp(),
		}
		if req.ProfilePictureURL != "" {
			fields["profilePictureUrl"] = req.ProfilePictureURL
		}

		err := s.repos.Store.Batch().
			Set(repositories.CommunityPath(id), fields, false).
			Update(repositories.UserPath(uid), map[string]any{"followingCommunities": docstore.ArrayUnion(id)}).
			Commit(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("uid", uid).Msg("Failed to create community")
			return fmt.Errorf("error creating community: %w", err)
		}

		s.logger.Info().Str("uid", uid).Str("communityID", id).Msg("Community created")
		emit(ctx, s.publisher, s.logger, events.New(events.CommunityCreated, uid, id))
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateCommunity edits name, description and picture. Admins only.
func (s *communityServiceImpl) UpdateCommunity(ctx context.Context, uid, communityID string, req *dto.UpdateCommunityRequest) error {
	return observe("update_community", uid, func() error {
		if _, err := s.requireAdmin(ctx, uid, communityID); err != nil {
			return err
		}
		if err := s.repos.Store.Update(ctx, repositories.CommunityPath(communityID), map[string]any{
			"name":              strings.TrimSpace(req.Name),
			"description":       strings.TrimSpace(req.Description),
			"profilePictureUrl": req.ProfilePictureURL,
		}); err != nil {
			return fmt.Errorf("error updating community: %w", err)
		}
		emit(ctx, s.publisher, s.logger, events.New(events.CommunityUpdated, uid, communityID))
		return nil
	})
}

// ToggleFollow follows or unfollows a community. The community's follower
// list and the caller's following list change in one batch.
func (s *communityServiceImpl) ToggleFollow(ctx context.Context, uid, communityID string) (bool, error) {
	var following bool
	err := observe("toggle_follow", uid, func() error {
		community, err := s.repos.Communities.GetByID(ctx, communityID)
		if err != nil {
			return err
		}

		following = !community.HasFollower(uid)
		followers, mine := docstore.ArrayUnion(uid), docstore.ArrayUnion(communityID)
		if !following {
			followers, mine = docstore.ArrayRemove(uid), docstore.ArrayRemove(communityID)
		}
		err = s.repos.Store.Batch().
			Update(repositories.CommunityPath(communityID), map[string]any{"followerIds": followers}).
			Update(repositories.UserPath(uid), map[string]any{"followingCommunities": mine}).
			Commit(ctx)
		if err != nil {
			return fmt.Errorf("error toggling follow: %w", err)
		}

		emit(ctx, s.publisher, s.logger, events.New(events.CommunityFollowed, uid, communityID))
		return nil
	})
	return following, err
}

// AddAdmin promotes target. Admins only.
func (s *communityServiceImpl) AddAdmin(ctx context.Context, uid, communityID, target string) error {
	return observe("add_admin", uid, func() error {
		if _, err := s.requireAdmin(ctx, uid, communityID); err != nil {
			return err
		}
		if _, err := s.repos.Users.GetByID(ctx, target); err != nil {
			return err
		}
		if err := s.repos.Store.Update(ctx, repositories.CommunityPath(communityID), map[string]any{
			"adminIds": docstore.ArrayUnion(target),
		}); err != nil {
			return fmt.Errorf("error adding admin: %w", err)
		}
		emit(ctx, s.publisher, s.logger, events.New(events.CommunityAdmins, uid, communityID))
		return nil
	})
}

// RemoveAdmin demotes target. The owner always stays an admin.
func (s *communityServiceImpl) RemoveAdmin(ctx context.Context, uid, communityID, target string) error {
	return observe("remove_admin", uid, func() error {
		community, err := s.requireAdmin(ctx, uid, communityID)
		if err != nil {
			return err
		}
		if target == community.OwnerID {
			return apperrors.ErrOwnerProtected
		}
		if err := s.repos.Store.Update(ctx, repositories.CommunityPath(communityID), map[string]any{
			"adminIds": docstore.ArrayRemove(target),
		}); err != nil {
			return fmt.Errorf("error removing admin: %w", err)
		}
		emit(ctx, s.publisher, s.logger, events.New(events.CommunityAdmins, uid, communityID))
		return nil
	})
}

// CreatePost publishes a post and notifies every follower except the author
// in the same batch. Admins only.
func (s *communityServiceImpl) CreatePost(ctx context.Context, uid, communityID string, req *dto.PostRequest) (string, error) {
	postID := docstore.NewID()
	err := observe("create_post", uid, func() error {
		community, err := s.requireAdmin(ctx, uid, communityID)
		if err != nil {
			return err
		}
		images, err := cleanPost(req)
		if err != nil {
			return err
		}
		author, err := s.repos.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}

		batch := s.repos.Store.Batch().Set(repositories.PostPath(communityID, postID), map[string]any{
			"communityId":      communityID,
			"authorId":         uid,
			"authorName":       author.Name,
			"authorAvatarName": author.Name,
			"text":             req.Text,
			"imageUrls":        images,
			"likes":            []string{},
			"createdAt":        docstore.ServerTimestamp(),
		}, false)
		audience := derive.PostAudience(community, uid)
		for _, recipient := range audience {
			n := models.NewPostNotification(recipient, community, postID, author.Name)
			n["createdAt"] = docstore.ServerTimestamp()
			batch.Set(repositories.NotificationPath(docstore.NewID()), n, false)
		}
		if err := batch.Commit(ctx); err != nil {
			s.logger.Error().Err(err).Str("uid", uid).Str("communityID", communityID).Msg("Failed to create post")
			return fmt.Errorf("error creating post: %w", err)
		}

		s.logger.Info().
			Str("uid", uid).
			Str("communityID", communityID).
			Str("postID", postID).
			Int("notified", len(audience)).
			Msg("Post created")
		e := events.New(events.PostCreated, uid, repositories.PostPath(communityID, postID))
		e.Recipients = len(audience)
		emit(ctx, s.publisher, s.logger, e)
		return nil
	})
	if err != nil {
		return "", err
	}
	return postID, nil
}

// UpdatePost replaces the body and images of a post and stamps editedAt.
// The author and the community admins may edit.
func (s *communityServiceImpl) UpdatePost(ctx context.Context, uid, communityID, postID string, req *dto.PostRequest) error {
	return observe("update_post", uid, func() error {
		if _, err := s.requireModerator(ctx, uid, communityID, postID); err != nil {
			return err
		}
		images, err := cleanPost(req)
		if err != nil {
			return err
		}
		if err := s.repos.Store.Update(ctx, repositories.PostPath(communityID, postID), map[string]any{
			"text":      req.Text,
			"imageUrls": images,
			"editedAt":  docstore.ServerTimestamp(),
		}); err != nil {
			return fmt.Errorf("error updating post: %w", err)
		}
		emit(ctx, s.publisher, s.logger, events.New(events.PostUpdated, uid, repositories.PostPath(communityID, postID)))
		return nil
	})
}

// DeletePost removes a post. The author and the community admins may delete.
func (s *communityServiceImpl) DeletePost(ctx context.Context, uid, communityID, postID string) error {
	return observe("delete_post", uid, func() error {
		if _, err := s.requireModerator(ctx, uid, communityID, postID); err != nil {
			return err
		}
		if err := s.repos.Store.Delete(ctx, repositories.PostPath(communityID, postID)); err != nil {
			return fmt.Errorf("error deleting post: %w", err)
		}
		s.logger.Info().Str("uid", uid).Str("postID", postID).Msg("Post deleted")
		emit(ctx, s.publisher, s.logger, events.New(events.PostDeleted, uid, repositories.PostPath(communityID, postID)))
		return nil
	})
}

// ToggleLike likes or unlikes a post and returns whether it is liked afterwards.
// Likes are a set, so repeating a like keeps a single entry.
func (s *communityServiceImpl) ToggleLike(ctx context.Context, uid, communityID, postID string) (bool, error) {
	var liked bool
	err := observe("toggle_like", uid, func() error {
		post, err := s.repos.Communities.GetPost(ctx, communityID, postID)
		if err != nil {
			return err
		}

		liked = !post.LikedBy(uid)
		op := docstore.ArrayUnion(uid)
		if !liked {
			op = docstore.ArrayRemove(uid)
		}
		if err := s.repos.Store.Update(ctx, repositories.PostPath(communityID, postID), map[string]any{"likes": op}); err != nil {
			return fmt.Errorf("error toggling like: %w", err)
		}
		emit(ctx, s.publisher, s.logger, events.New(events.PostLikeToggled, uid, repositories.PostPath(communityID, postID)))
		return nil
	})
	return liked, err
}

// AddComment appends a comment to a post.
func (s *communityServiceImpl) AddComment(ctx context.Context, uid, communityID, postID string, req *dto.CommentRequest) (string, error) {
	var id string
	err := observe("add_comment", uid, func() error {
		text := strings.TrimSpace(req.Text)
		if text == "" {
			return apperrors.NewBadRequestError("Comment cannot be empty")
		}
		if _, err := s.repos.Communities.GetPost(ctx, communityID, postID); err != nil {
			return err
		}
		author, err := s.repos.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}

		id, err = s.repos.Store.Add(ctx, repositories.CommentsCollection(communityID, postID), map[string]any{
			"postId":           postID,
			"communityId":      communityID,
			"authorId":         uid,
			"authorName":       author.Name,
			"authorAvatarName": author.Name,
			"text":             text,
			"createdAt":        docstore.ServerTimestamp(),
		})
		if err != nil {
			return fmt.Errorf("error adding comment: %w", err)
		}
		emit(ctx, s.publisher, s.logger, events.New(events.CommentAdded, uid, repositories.CommentPath(communityID, postID, id)))
		return nil
	})
	return id, err
}

// DeleteComment removes a comment. Its author and the community admins may delete it.
func (s *communityServiceImpl) DeleteComment(ctx context.Context, uid, communityID, postID, commentID string) error {
	return observe("delete_comment", uid, func() error {
		comment, err := s.repos.Communities.GetComment(ctx, communityID, postID, commentID)
		if err != nil {
			return err
		}
		if comment.AuthorID != uid {
			community, err := s.repos.Communities.GetByID(ctx, communityID)
			if err != nil {
				return err
			}
			if !community.IsAdmin(uid) {
				return apperrors.NewForbiddenError("Only the author or a community admin can delete this comment")
			}
		}

		if err := s.repos.Store.Delete(ctx, repositories.CommentPath(communityID, postID, commentID)); err != nil {
			return fmt.Errorf("error deleting comment: %w", err)
		}
		emit(ctx, s.publisher, s.logger, events.New(events.CommentDeleted, uid, repositories.CommentPath(communityID, postID, commentID)))
		return nil
	})
}

func (s *communityServiceImpl) requireAdmin(ctx context.Context, uid, communityID string) (*models.Community, error) {
	community, err := s.repos.Communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !community.IsAdmin(uid) {
		return nil, apperrors.NewForbiddenError("Only community admins can do this")
	}
	return community, nil
}

// requireModerator allows the post author and the community admins.
func (s *communityServiceImpl) requireModerator(ctx context.Context, uid, communityID, postID string) (*models.CommunityPost, error) {
	post, err := s.repos.Communities.GetPost(ctx, communityID, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID == uid {
		return post, nil
	}
	if _, err := s.requireAdmin(ctx, uid, communityID); err != nil {
		return nil, err
	}
	return post, nil
}

// cleanPost checks the body and returns the trimmed, non-blank image URLs.
func cleanPost(req *dto.PostRequest) ([]string, error) {
	if richtext.IsBlank(req.Text) {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "Post content cannot be empty")
	}
	images := nonEmpty(req.ImageURLs)
	if len(images) > models.MaxPostImages {
		return nil, apperrors.ErrTooManyImages
	}
	return images, nil
}
