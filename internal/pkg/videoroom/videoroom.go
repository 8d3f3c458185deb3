// Package videoroom builds the embed URL of a session's conference room.
package videoroom

import (
	"encoding/json"
	"net/url"
	"strings"
)

var commonButtons = []string{
	"microphone", "camera", "closedcaptions", "desktop", "embedmeeting", "fullscreen",
	"fodeviceselection", "profile", "chat", "settings", "raisehand", "videoquality",
	"filmstrip", "invite", "feedback", "stats", "shortcuts", "tileview", "videobackgroundblur",
	"help",
}

var hostButtons = []string{
	"recording", "livestreaming", "etherpad", "sharedvideo", "mute-everyone", "security",
}

// Builder creates room URLs on one conferencing host.
type Builder struct {
	baseURL string
	prefix  string
}

// NewBuilder returns a Builder. baseURL gets a trailing slash when missing.
func NewBuilder(baseURL, roomPrefix string) *Builder {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Builder{baseURL: baseURL, prefix: roomPrefix}
}

// RoomID is the stable room name of a session.
func (b *Builder) RoomID(sessionID string) string {
	return b.prefix + sessionID
}

// Toolbar returns the toolbar buttons; host controls are added for the host.
// Neither list carries hangup, so participants leave through the app.
func Toolbar(isHost bool) []string {
	buttons := append([]string(nil), commonButtons...)
	if isHost {
		buttons = append(buttons, hostButtons...)
	}
	return buttons
}

// URL returns the embed URL for displayName joining sessionID.
func (b *Builder) URL(sessionID, displayName string, isHost bool) string {
	toolbar, _ := json.Marshal(Toolbar(isHost))
	var sb strings.Builder
	sb.WriteString(b.baseURL)
	sb.WriteString(b.RoomID(sessionID))
	sb.WriteString(`#userInfo.displayName="`)
	sb.WriteString(encodeURIComponent(displayName))
	sb.WriteString(`"&config.toolbarButtons=`)
	sb.Write(toolbar)
	sb.WriteString("&interfaceConfig.SHOW_JITSI_WATERMARK=false&interfaceConfig.SHOW_WATERMARK_FOR_GUESTS=false")
	return sb.String()
}

// encodeURIComponent escapes like the browser function of the same name:
// spaces become %20 and the marks !'()* stay literal.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	r := strings.NewReplacer("%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*", "%7E", "~")
	return r.Replace(escaped)
}
