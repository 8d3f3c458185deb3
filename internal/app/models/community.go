package models

import "github.com/campusconnect/campusconnect/internal/pkg/timestamp"

// Community is a page that admins post to and users follow.
type Community struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	ProfilePictureURL string              `json:"profilePictureUrl,omitempty"`
	College           string              `json:"college"`
	OwnerID           string              `json:"ownerId"`
	AdminIDs          []string            `json:"adminIds"`
	FollowerIDs       []string            `json:"followerIds,omitempty"`
	CreatedAt         timestamp.Timestamp `json:"createdAt"`
}

// IsAdmin reports whether uid administers the community. The owner always does.
func (c *Community) IsAdmin(uid string) bool {
	return c != nil && (c.OwnerID == uid || contains(c.AdminIDs, uid))
}

// HasFollower reports whether uid follows the community.
func (c *Community) HasFollower(uid string) bool {
	return c != nil && contains(c.FollowerIDs, uid)
}

// CommunityPost lives under communities/{communityId}/posts.
type CommunityPost struct {
	ID               string               `json:"id"`
	CommunityID      string               `json:"communityId"`
	AuthorID         string               `json:"authorId"`
	AuthorName       string               `json:"authorName"`
	AuthorAvatarName string               `json:"authorAvatarName"`
	Text             string               `json:"text"`
	ImageURLs        []string             `json:"imageUrls,omitempty"`
	Likes            []string             `json:"likes,omitempty"`
	CreatedAt        timestamp.Timestamp  `json:"createdAt"`
	EditedAt         *timestamp.Timestamp `json:"editedAt,omitempty"`
}

// LikedBy reports whether uid liked the post.
func (p *CommunityPost) LikedBy(uid string) bool {
	return contains(p.Likes, uid)
}

// Comment lives under communities/{communityId}/posts/{postId}/comments.
type Comment struct {
	ID               string              `json:"id"`
	PostID           string              `json:"postId"`
	CommunityID      string              `json:"communityId"`
	AuthorID         string              `json:"authorId"`
	AuthorName       string              `json:"authorName"`
	AuthorAvatarName string              `json:"authorAvatarName"`
	Text             string              `json:"text"`
	CreatedAt        timestamp.Timestamp `json:"createdAt"`
}
