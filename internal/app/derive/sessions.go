// Package derive holds the pure projections the views are built from. Every
// function returns a new slice and leaves its inputs untouched.
package derive

import (
	"sort"
	"strings"
	"time"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/timestamp"
)

// SortSessions orders the global session list: scheduled sessions first by
// scheduled time descending, then completed sessions by completion time
// descending. A completed session without a completion time sorts as time zero.
func SortSessions(sessions []models.Session) []models.Session {
	out := append([]models.Session(nil), sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		return compareSessions(&out[i], &out[j]) < 0
	})
	return out
}

func compareSessions(a, b *models.Session) int {
	ac, bc := a.IsCompleted(), b.IsCompleted()
	switch {
	case ac && !bc:
		return 1
	case !ac && bc:
		return -1
	case ac && bc:
		return completedAt(b).Compare(completedAt(a))
	}
	return b.ScheduledAt.Compare(a.ScheduledAt)
}

func completedAt(s *models.Session) timestamp.Timestamp {
	if s.CompletedAt == nil {
		return timestamp.Timestamp{}
	}
	return *s.CompletedAt
}

// SessionFilter narrows the sessions offered for joining.
type SessionFilter struct {
	// Term matches topic or description, case-insensitively.
	Term string
	// Type is a models.SessionType, or empty / "All" for any.
	Type string
}

// AvailableSessions lists the sessions the viewer can join: still scheduled,
// hosted by someone else and matching the filter, soonest first.
func AvailableSessions(sessions []models.Session, viewer *models.UserProfile, filter SessionFilter) []models.Session {
	term := strings.ToLower(strings.TrimSpace(filter.Term))
	var out []models.Session
	for _, s := range sessions {
		if s.IsCompleted() || viewer == nil || s.CreatorID == viewer.UID {
			continue
		}
		if filter.Type != "" && filter.Type != models.AudienceAll && string(s.SessionType) != filter.Type {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(s.Topic), term) &&
			!strings.Contains(strings.ToLower(s.Description), term) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

// HostedSessions lists the sessions uid created, in global order.
func HostedSessions(sessions []models.Session, uid string) []models.Session {
	var out []models.Session
	for _, s := range sessions {
		if s.CreatorID == uid {
			out = append(out, s)
		}
	}
	return SortSessions(out)
}

// JoinedSessions lists the sessions uid joined without hosting them, in global order.
func JoinedSessions(sessions []models.Session, uid string) []models.Session {
	var out []models.Session
	for _, s := range sessions {
		if s.CreatorID != uid && s.HasParticipant(uid) {
			out = append(out, s)
		}
	}
	return SortSessions(out)
}

// Host start window around the scheduled time.
const (
	HostEarlyStart = 15 * time.Minute
	SessionWindow  = 2 * time.Hour
)

// HostCanStart reports whether the host may open the room at now: from
// HostEarlyStart before the scheduled time until SessionWindow after it.
func HostCanStart(s *models.Session, now time.Time) bool {
	if s.IsCompleted() || s.ScheduledAt.IsZero() {
		return false
	}
	at := s.ScheduledAt.Time()
	return !now.Before(at.Add(-HostEarlyStart)) && now.Before(at.Add(SessionWindow))
}

// CanJoin reports whether a session still accepts participants.
func CanJoin(s *models.Session) bool {
	return s != nil && !s.IsCompleted()
}

// SessionRoster lists the profiles of a session with the creator first.
// Participants without a loaded profile are left out.
func SessionRoster(s *models.Session, users map[string]models.UserProfile) []models.UserProfile {
	var out []models.UserProfile
	if u, ok := users[s.CreatorID]; ok {
		out = append(out, u)
	}
	for _, id := range s.ParticipantIDs {
		if id == s.CreatorID {
			continue
		}
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}

// UsersByID indexes profiles by uid.
func UsersByID(users []models.UserProfile) map[string]models.UserProfile {
	m := make(map[string]models.UserProfile, len(users))
	for _, u := range users {
		m[u.UID] = u
	}
	return m
}
