package models

import "github.com/campusconnect/campusconnect/internal/pkg/timestamp"

// Session is a scheduled lecture or skill exchange held over video.
type Session struct {
	ID             string               `json:"id"`
	Topic          string               `json:"topic"`
	Description    string               `json:"description"`
	Creator        string               `json:"creator"`
	CreatorID      string               `json:"creatorId"`
	ParticipantIDs []string             `json:"participantIds"`
	CreatedAt      timestamp.Timestamp  `json:"createdAt"`
	SessionType    SessionType          `json:"sessionType"`
	ScheduledAt    timestamp.Timestamp  `json:"scheduledAt"`
	TargetColleges []string             `json:"targetColleges"`
	TargetYears    []string             `json:"targetYears"`
	SkillsToOffer  []string             `json:"skillsToOffer,omitempty"`
	SkillsSought   []string             `json:"skillsSought,omitempty"`
	Status         SessionStatus        `json:"status"`
	CompletedAt    *timestamp.Timestamp `json:"completedAt,omitempty"`
}

// IsCompleted reports whether the session has ended.
func (s *Session) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}

// HasParticipant reports whether uid joined the session.
func (s *Session) HasParticipant(uid string) bool {
	return contains(s.ParticipantIDs, uid)
}

// TargetsCollege applies the audience rule to one college.
func (s *Session) TargetsCollege(college string) bool {
	return contains(s.TargetColleges, AudienceAll) || contains(s.TargetColleges, college)
}

// TargetsYear applies the audience rule to one year.
func (s *Session) TargetsYear(year string) bool {
	return contains(s.TargetYears, AudienceAll) || contains(s.TargetYears, year)
}
