package dto

// CreateCommunityRequest represents community creation data
type CreateCommunityRequest struct {
	Name              string `json:"name" binding:"required,notblank,max=100"`
	Description       string `json:"description" binding:"max=2000"`
	College           string `json:"college" binding:"required"`
	ProfilePictureURL string `json:"profilePictureUrl" binding:"omitempty,url"`
}

// UpdateCommunityRequest represents community edit data
type UpdateCommunityRequest struct {
	Name              string `json:"name" binding:"required,notblank,max=100"`
	Description       string `json:"description" binding:"max=2000"`
	ProfilePictureURL string `json:"profilePictureUrl" binding:"omitempty,url"`
}

// AdminRequest names the user to promote
type AdminRequest struct {
	UID string `json:"uid" binding:"required"`
}

// PostRequest creates or edits a community post. Text is a serialized rich-text document.
type PostRequest struct {
	Text      string   `json:"text"`
	ImageURLs []string `json:"imageUrls" binding:"max=4,dive,url"`
}

// CommentRequest adds a comment to a post
type CommentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}
