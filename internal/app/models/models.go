package models

// SessionType is the kind of a session
type SessionType string

const (
	SessionTypeLecture       SessionType = "Lecture"
	SessionTypeSkillExchange SessionType = "Skill Exchange"
)

// SessionStatus is the lifecycle state of a session. It only moves from
// scheduled to completed.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
)

// AudienceAll in a target list matches every college or year.
const AudienceAll = "All"

// NotificationType discriminates the notification payload
type NotificationType string

const (
	NotificationNewSession       NotificationType = "NEW_SESSION"
	NotificationNewCommunityPost NotificationType = "NEW_COMMUNITY_POST"
)

// MaxPostImages is the number of image URLs a post may carry.
const MaxPostImages = 4

// contains reports whether v is in list.
func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
