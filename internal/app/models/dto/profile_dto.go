package dto

// SaveProfileRequest creates or edits the caller's profile
type SaveProfileRequest struct {
	Name              string   `json:"name" binding:"required,notblank,min=2,max=100"`
	Mobile            string   `json:"mobile" binding:"omitempty,phone"`
	College           string   `json:"college" binding:"required"`
	Year              string   `json:"year" binding:"required"`
	Interests         string   `json:"interests" binding:"max=2000"`
	Skills            []string `json:"skills" binding:"dive,min=1,max=64"`
	ProfilePictureURL string   `json:"profilePictureUrl" binding:"omitempty,url"`
}

// SuggestSkillsRequest asks for skills matching free-text interests
type SuggestSkillsRequest struct {
	Interests string   `json:"interests" binding:"required"`
	Skills    []string `json:"skills"`
}

// SuggestSkillsResponse holds the suggestions merged into the current skills
type SuggestSkillsResponse struct {
	Suggested []string `json:"suggested"`
	Skills    []string `json:"skills"`
}

// TestimonialRequest submits a landing page quote
type TestimonialRequest struct {
	Quote string `json:"quote" binding:"required,max=500"`
}
