package models

import "github.com/campusconnect/campusconnect/internal/pkg/timestamp"

// UserProfile is a document of the users collection. UID is the document id.
type UserProfile struct {
	UID                      string               `json:"uid"`
	Name                     string               `json:"name"`
	Email                    string               `json:"email"`
	Mobile                   string               `json:"mobile"`
	College                  string               `json:"college"`
	Year                     string               `json:"year"`
	Interests                string               `json:"interests"`
	Skills                   []string             `json:"skills"`
	FollowingCommunities     []string             `json:"followingCommunities,omitempty"`
	BlockedUsers             []string             `json:"blockedUsers,omitempty"`
	LastCheckedNotifications *timestamp.Timestamp `json:"lastCheckedNotifications,omitempty"`
	ProfilePictureURL        string               `json:"profilePictureUrl,omitempty"`
}

// HasBlocked reports whether u blocked uid.
func (u *UserProfile) HasBlocked(uid string) bool {
	return u != nil && contains(u.BlockedUsers, uid)
}

// Follows reports whether u follows the community.
func (u *UserProfile) Follows(communityID string) bool {
	return u != nil && contains(u.FollowingCommunities, communityID)
}

// Testimonial is an immutable quote shown on the landing view.
type Testimonial struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	UserName    string              `json:"userName"`
	UserCollege string              `json:"userCollege"`
	Quote       string              `json:"quote"`
	CreatedAt   timestamp.Timestamp `json:"createdAt"`
}
