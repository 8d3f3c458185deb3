package coordinator

import (
	"encoding/json"

	"github.com/campusconnect/campusconnect/internal/app/router"
)

// Frame types sent to a connection
const (
	FrameView  = "view"
	FrameAlert = "alert"
)

// Frame is one outbound message. View frames carry the current view and the
// data derived for it; alert frames carry a message for the user.
type Frame struct {
	Type    string          `json:"type"`
	View    json.RawMessage `json:"view,omitempty"`
	Data    any             `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Sink receives the frames of one connection. Send must not block.
type Sink interface {
	Send(Frame)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Frame)

// Send implements Sink.
func (f SinkFunc) Send(fr Frame) { f(fr) }

// IntentType names an inbound request
type IntentType string

// Inbound intents
const (
	IntentNavigate         IntentType = "navigate"
	IntentBack             IntentType = "back"
	IntentJoinSession      IntentType = "joinSession"
	IntentLeaveSession     IntentType = "leaveSession"
	IntentEndSession       IntentType = "endSession"
	IntentOpenChat         IntentType = "openChat"
	IntentOpenPost         IntentType = "openPost"
	IntentOpenNotification IntentType = "openNotification"
	IntentToggleFollow     IntentType = "toggleFollow"
	IntentFilter           IntentType = "filter"
	IntentSignOut          IntentType = "signOut"
)

// Intent is an inbound request from the client. Which ids are read depends on Type.
type Intent struct {
	Type           IntentType  `json:"type"`
	View           router.Name `json:"view,omitempty"`
	UID            string      `json:"uid,omitempty"`
	SessionID      string      `json:"sessionId,omitempty"`
	CommunityID    string      `json:"communityId,omitempty"`
	PostID         string      `json:"postId,omitempty"`
	NotificationID string      `json:"notificationId,omitempty"`

	// filter
	Term        string `json:"term,omitempty"`
	College     string `json:"college,omitempty"`
	Year        string `json:"year,omitempty"`
	SessionType string `json:"sessionType,omitempty"`
}

// Filter is the search input shared by the list views.
type Filter struct {
	Term        string `json:"term"`
	College     string `json:"college"`
	Year        string `json:"year"`
	SessionType string `json:"sessionType"`
}

// Alert messages
const (
	AlertPostDeleted      = "This post has been deleted."
	AlertSessionGone      = "This session is no longer available."
	AlertCommunityGone    = "This community no longer exists."
	AlertUserGone         = "This user could not be found."
	AlertChatBlocked      = "You can't message this user."
	AlertSignedOut        = "Your session ended. Please sign in again."
	AlertUnknownIntent    = "That action is not supported."
	AlertNotificationGone = "This notification is no longer available."
)
