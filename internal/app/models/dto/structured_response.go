package dto

import "time"

// APIResponse is the envelope of every successful REST response
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewSuccessResponse wraps data in the success envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// IDResponse carries the id of a created document
type IDResponse struct {
	ID string `json:"id"`
}

// ToggleResponse reports the state after a toggle command
type ToggleResponse struct {
	Active bool `json:"active"`
}
