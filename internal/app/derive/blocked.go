package derive

import (
	"github.com/campusconnect/campusconnect/internal/app/models"
)

// WithoutBlocked drops the items whose author the viewer blocked. Content by
// someone who blocked the viewer stays visible.
func WithoutBlocked[T any](viewer *models.UserProfile, items []T, author func(*T) string) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if viewer.HasBlocked(author(&items[i])) {
			continue
		}
		out = append(out, items[i])
	}
	return out
}

// VisibleSessions hides sessions hosted by blocked users.
func VisibleSessions(viewer *models.UserProfile, sessions []models.Session) []models.Session {
	return WithoutBlocked(viewer, sessions, func(s *models.Session) string { return s.CreatorID })
}

// VisiblePosts hides posts by blocked users.
func VisiblePosts(viewer *models.UserProfile, posts []models.CommunityPost) []models.CommunityPost {
	return WithoutBlocked(viewer, posts, func(p *models.CommunityPost) string { return p.AuthorID })
}

// VisibleComments hides comments by blocked users.
func VisibleComments(viewer *models.UserProfile, comments []models.Comment) []models.Comment {
	return WithoutBlocked(viewer, comments, func(c *models.Comment) string { return c.AuthorID })
}

// VisibleUsers hides blocked users and the viewer.
func VisibleUsers(viewer *models.UserProfile, users []models.UserProfile) []models.UserProfile {
	out := WithoutBlocked(viewer, users, func(u *models.UserProfile) string { return u.UID })
	if viewer == nil {
		return out
	}
	filtered := out[:0]
	for _, u := range out {
		if u.UID != viewer.UID {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

// ChatAccess says whether the viewer may message a user.
type ChatAccess int

const (
	ChatAllowed ChatAccess = iota
	// ChatBlockedByViewer: the viewer blocked the other user and may unblock.
	ChatBlockedByViewer
	// ChatBlockedByOther: the other user blocked the viewer; starting a chat is redirected.
	ChatBlockedByOther
)

// ChatAccessTo evaluates both block directions between viewer and other.
func ChatAccessTo(viewer, other *models.UserProfile) ChatAccess {
	switch {
	case viewer.HasBlocked(other.UID):
		return ChatBlockedByViewer
	case other.HasBlocked(viewer.UID):
		return ChatBlockedByOther
	}
	return ChatAllowed
}
