package models

import "github.com/campusconnect/campusconnect/internal/pkg/timestamp"

// Notification is addressed to UserID. Type selects which payload fields are set;
// only IsRead ever changes after creation.
type Notification struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Type      NotificationType    `json:"type"`
	CreatedAt timestamp.Timestamp `json:"createdAt"`
	IsRead    bool                `json:"isRead"`

	// NEW_SESSION
	SessionID          string `json:"sessionId,omitempty"`
	SessionTopic       string `json:"sessionTopic,omitempty"`
	SessionCreatorName string `json:"sessionCreatorName,omitempty"`

	// NEW_COMMUNITY_POST
	CommunityID    string `json:"communityId,omitempty"`
	CommunityName  string `json:"communityName,omitempty"`
	PostID         string `json:"postId,omitempty"`
	PostAuthorName string `json:"postAuthorName,omitempty"`
}

// NewSessionNotification builds the fan-out payload for a created session.
func NewSessionNotification(recipient string, s *Session) map[string]any {
	return map[string]any{
		"userId":             recipient,
		"type":               string(NotificationNewSession),
		"isRead":             false,
		"sessionId":          s.ID,
		"sessionTopic":       s.Topic,
		"sessionCreatorName": s.Creator,
	}
}

// NewPostNotification builds the fan-out payload for a created community post.
func NewPostNotification(recipient string, c *Community, postID, authorName string) map[string]any {
	return map[string]any{
		"userId":         recipient,
		"type":           string(NotificationNewCommunityPost),
		"isRead":         false,
		"communityId":    c.ID,
		"communityName":  c.Name,
		"postId":         postID,
		"postAuthorName": authorName,
	}
}
