package dto

// OpenChatRequest opens (or creates) the conversation with another user
type OpenChatRequest struct {
	UID string `json:"uid" binding:"required"`
}

// SendMessageRequest appends a message to a conversation
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

// OpenChatResponse carries the deterministic conversation id
type OpenChatResponse struct {
	ChatID string `json:"chatId"`
}
