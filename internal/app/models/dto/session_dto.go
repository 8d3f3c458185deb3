package dto

import "time"

// CreateSessionRequest schedules a lecture or skill exchange
type CreateSessionRequest struct {
	Topic          string    `json:"topic" binding:"required,notblank,max=200"`
	Description    string    `json:"description" binding:"max=4000"`
	SessionType    string    `json:"sessionType" binding:"required,oneof=Lecture 'Skill Exchange'"`
	ScheduledAt    time.Time `json:"scheduledAt" binding:"required"`
	TargetColleges []string  `json:"targetColleges" binding:"required,min=1"`
	TargetYears    []string  `json:"targetYears" binding:"required,min=1"`
	SkillsToOffer  []string  `json:"skillsToOffer"`
	SkillsSought   []string  `json:"skillsSought"`
}

// VideoRoomResponse is the embed URL of a session room
type VideoRoomResponse struct {
	URL    string `json:"url"`
	RoomID string `json:"roomId"`
}
