package derive

import (
	"time"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/timestamp"
)

// AudienceMatches applies the targeting rule: both the college and the year
// must match, where "All" matches anything.
func AudienceMatches(u *models.UserProfile, s *models.Session) bool {
	return s.TargetsCollege(u.College) && s.TargetsYear(u.Year)
}

// IsNotificationRelevant reports whether s should be shown to viewer as new:
// it is still ahead, hosted by someone else, created after the viewer last
// checked and aimed at the viewer's college and year.
func IsNotificationRelevant(viewer *models.UserProfile, s *models.Session, now time.Time) bool {
	if viewer == nil || s == nil {
		return false
	}
	if !s.ScheduledAt.After(timestamp.FromTime(now)) {
		return false
	}
	if s.CreatorID == viewer.UID {
		return false
	}
	if viewer.LastCheckedNotifications != nil && !s.CreatedAt.After(*viewer.LastCheckedNotifications) {
		return false
	}
	return AudienceMatches(viewer, s)
}

// RelevantSessions filters sessions with IsNotificationRelevant, keeping order.
func RelevantSessions(viewer *models.UserProfile, sessions []models.Session, now time.Time) []models.Session {
	var out []models.Session
	for i := range sessions {
		if IsNotificationRelevant(viewer, &sessions[i], now) {
			out = append(out, sessions[i])
		}
	}
	return out
}

// SessionAudience lists the users a new session is announced to: everyone the
// session targets except its creator.
func SessionAudience(users []models.UserProfile, s *models.Session) []string {
	var out []string
	for i := range users {
		if users[i].UID == s.CreatorID {
			continue
		}
		if AudienceMatches(&users[i], s) {
			out = append(out, users[i].UID)
		}
	}
	return out
}

// PostAudience lists the followers a new post is announced to, without its author.
func PostAudience(c *models.Community, authorID string) []string {
	var out []string
	seen := make(map[string]bool, len(c.FollowerIDs))
	for _, id := range c.FollowerIDs {
		if id == authorID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// UnreadNotifications counts the notifications not yet read.
func UnreadNotifications(ns []models.Notification) int {
	n := 0
	for _, x := range ns {
		if !x.IsRead {
			n++
		}
	}
	return n
}

// UnreadChats sums the viewer's unread counters over every conversation.
func UnreadChats(convs []models.ChatConversation, uid string) int {
	n := 0
	for i := range convs {
		n += convs[i].Unread(uid)
	}
	return n
}
