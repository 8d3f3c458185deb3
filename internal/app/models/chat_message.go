package models

import (
	"sort"
	"strings"

	"github.com/campusconnect/campusconnect/internal/pkg/timestamp"
)

// ChatConversation is a two-party conversation. Its id is ChatID of the pair.
type ChatConversation struct {
	ID           string         `json:"id"`
	Participants []string       `json:"participants"`
	LastMessage  *LastMessage   `json:"lastMessage,omitempty"`
	UnreadCount  map[string]int `json:"unreadCount,omitempty"`
}

// LastMessage is the snapshot of the newest message kept on the conversation.
type LastMessage struct {
	Text      string              `json:"text"`
	SenderID  string              `json:"senderId"`
	CreatedAt timestamp.Timestamp `json:"createdAt"`
}

// Partner returns the participant that is not uid.
func (c *ChatConversation) Partner(uid string) string {
	for _, p := range c.Participants {
		if p != uid {
			return p
		}
	}
	return ""
}

// HasParticipant reports whether uid takes part in the conversation.
func (c *ChatConversation) HasParticipant(uid string) bool {
	return contains(c.Participants, uid)
}

// Unread returns the unread counter of uid.
func (c *ChatConversation) Unread(uid string) int {
	return c.UnreadCount[uid]
}

// ChatMessage lives under chats/{chatId}/messages and is append only.
type ChatMessage struct {
	ID        string              `json:"id"`
	Text      string              `json:"text"`
	SenderID  string              `json:"senderId"`
	CreatedAt timestamp.Timestamp `json:"createdAt"`
}

// ChatID is the conversation id of two users: both ids sorted and joined by "_".
func ChatID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// ChatParticipants returns the sorted participant pair.
func ChatParticipants(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}
