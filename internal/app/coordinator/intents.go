package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusconnect/campusconnect/internal/app/derive"
	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/app/router"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
)

// ErrUnknownIntent is returned for an intent type the coordinator does not handle.
var ErrUnknownIntent = errors.New("unknown intent")

// Handle executes one intent. Failures are reported to the user as an alert
// frame and returned.
func (c *Coordinator) Handle(ctx context.Context, in Intent) error {
	err := c.handle(ctx, in)
	if err == nil {
		return nil
	}
	c.alert(alertText(err))
	c.logger.Debug().Err(err).Str("intent", string(in.Type)).Str("uid", c.currentUID()).Msg("intent failed")
	return err
}

func (c *Coordinator) handle(ctx context.Context, in Intent) error {
	if in.Type == IntentSignOut {
		c.identity.SignOut()
		return nil
	}
	if in.Type == IntentFilter {
		c.mu.Lock()
		c.filter = Filter{Term: in.Term, College: in.College, Year: in.Year, SessionType: in.SessionType}
		c.mu.Unlock()
		c.render()
		return nil
	}
	if in.Type == IntentBack {
		return c.back(ctx)
	}

	uid := c.currentUID()
	if uid == "" {
		return c.navigateSignedOut(in)
	}

	switch in.Type {
	case IntentNavigate:
		return c.navigate(ctx, router.Target{
			Name:        in.View,
			UID:         in.UID,
			SessionID:   in.SessionID,
			CommunityID: in.CommunityID,
			PostID:      in.PostID,
		})
	case IntentJoinSession:
		return c.joinSession(ctx, uid, in.SessionID)
	case IntentLeaveSession:
		if err := c.deps.Services.Sessions.LeaveSession(ctx, uid, in.SessionID); err != nil {
			return err
		}
		c.setView(router.Home{})
		return nil
	case IntentEndSession:
		return c.deps.Services.Sessions.EndSession(ctx, uid, in.SessionID)
	case IntentOpenChat:
		return c.openChat(ctx, uid, in.UID)
	case IntentOpenPost:
		return c.openPost(ctx, in.CommunityID, in.PostID)
	case IntentOpenNotification:
		return c.openNotification(ctx, in.NotificationID)
	case IntentToggleFollow:
		return c.toggleFollow(ctx, uid, in.CommunityID)
	}
	return fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
}

// navigateSignedOut lets an anonymous connection move between the public views.
func (c *Coordinator) navigateSignedOut(in Intent) error {
	if in.Type != IntentNavigate || (in.View != router.NameLanding && in.View != router.NameAuth) {
		return apperrors.ErrUnauthorized
	}
	v, _ := router.Simple(in.View)
	c.setView(v)
	return nil
}

// navigate resolves a target against the state and switches to it.
func (c *Coordinator) navigate(ctx context.Context, t router.Target) error {
	if err := t.Validate(); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}
	if v, ok := router.Simple(t.Name); ok {
		c.setView(v)
		if t.Name == router.NameNotifications {
			c.markNotificationsRead(ctx)
		}
		return nil
	}

	switch t.Name {
	case router.NameChat:
		return c.openChat(ctx, c.currentUID(), t.UID)
	case router.NameCommunityPostDetail:
		return c.openPost(ctx, t.CommunityID, t.PostID)
	case router.NameVideoSession:
		return c.joinSession(ctx, c.currentUID(), t.SessionID)
	}

	c.mu.Lock()
	var (
		v       router.View
		missing string
	)
	switch t.Name {
	case router.NameProfileDetail:
		if u := c.findUser(t.UID); u != nil {
			v = router.ProfileDetail{User: *u}
		} else {
			missing = AlertUserGone
		}
	case router.NameCommunityPage, router.NameCommunityAdmin:
		cm := c.findCommunity(t.CommunityID)
		switch {
		case cm == nil:
			missing = AlertCommunityGone
		case t.Name == router.NameCommunityPage:
			v = router.CommunityPage{Community: *cm}
		default:
			v = router.CommunityAdmin{Community: *cm}
		}
	}
	c.mu.Unlock()

	if v == nil {
		return apperrors.NewResourceNotFoundError(missing)
	}
	c.setView(v)
	return nil
}

// back returns to the parent view. Backing out of a video room records the
// leave first.
func (c *Coordinator) back(ctx context.Context) error {
	if v, ok := c.View().(router.VideoSession); ok {
		if uid := c.currentUID(); uid != "" {
			err := c.deps.Services.Sessions.LeaveSession(ctx, uid, v.Session.ID)
			if err != nil && !apperrors.Is(err, apperrors.ErrSessionNotFound) {
				return err
			}
			c.setView(router.Home{})
			return nil
		}
	}
	c.setView(router.Back(c.View()))
	return nil
}

// joinSession performs the join write and then opens the room.
func (c *Coordinator) joinSession(ctx context.Context, uid, sessionID string) error {
	session, err := c.deps.Services.Sessions.JoinSession(ctx, uid, sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return apperrors.NewResourceNotFoundError(AlertSessionGone)
		}
		return err
	}
	c.setView(router.VideoSession{Session: *session})
	return nil
}

// openChat opens the conversation with other. Someone who blocked the viewer
// cannot be reached and the view stays where it is.
func (c *Coordinator) openChat(ctx context.Context, uid, other string) error {
	c.mu.Lock()
	me, them := c.st.me, c.findUser(other)
	c.mu.Unlock()
	if them == nil {
		return apperrors.NewResourceNotFoundError(AlertUserGone)
	}
	if me != nil && derive.ChatAccessTo(me, them) == derive.ChatBlockedByOther {
		return apperrors.NewCustomError(apperrors.ErrChatBlocked, AlertChatBlocked)
	}

	chatID, err := c.deps.Services.Chats.OpenChat(ctx, uid, other)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrChatBlocked) {
			return apperrors.NewCustomError(apperrors.ErrChatBlocked, AlertChatBlocked)
		}
		return err
	}
	c.setView(router.Chat{ChatID: chatID, OtherUser: *them})
	if err := c.deps.Services.Chats.MarkRead(ctx, uid, chatID); err != nil {
		c.logger.Warn().Err(err).Str("chatID", chatID).Msg("failed to reset unread counter")
	}
	return nil
}

// openPost reads the post once and shows its detail view; the view then
// follows the post document.
func (c *Coordinator) openPost(ctx context.Context, communityID, postID string) error {
	c.mu.Lock()
	cm := c.findCommunity(communityID)
	c.mu.Unlock()
	if cm == nil {
		return apperrors.NewResourceNotFoundError(AlertCommunityGone)
	}
	post, err := c.deps.Repos.Communities.GetPost(ctx, communityID, postID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrPostNotFound) {
			return apperrors.NewResourceNotFoundError(AlertPostDeleted)
		}
		return err
	}
	c.setView(router.CommunityPostDetail{Post: *post, Community: *cm})
	return nil
}

// openNotification follows a notification to what it announces. A session
// announcement leads to the session list; a post announcement to the post.
func (c *Coordinator) openNotification(ctx context.Context, id string) error {
	c.mu.Lock()
	n := c.findNotification(id)
	var session *models.Session
	if n != nil && n.Type == models.NotificationNewSession {
		session = c.findSession(n.SessionID)
	}
	c.mu.Unlock()

	if n == nil {
		return apperrors.NewResourceNotFoundError(AlertNotificationGone)
	}
	switch n.Type {
	case models.NotificationNewSession:
		if session == nil {
			c.setView(router.Notifications{})
			return apperrors.NewResourceNotFoundError(AlertSessionGone)
		}
		c.setView(router.SkillSharing{})
		return nil
	case models.NotificationNewCommunityPost:
		if err := c.openPost(ctx, n.CommunityID, n.PostID); err != nil {
			c.setView(router.Notifications{})
			return err
		}
		return nil
	}
	return apperrors.NewBadRequestError(fmt.Sprintf("unknown notification type %q", n.Type))
}

// toggleFollow shows the new follow state at once and keeps it until the
// next community snapshot replaces it.
func (c *Coordinator) toggleFollow(ctx context.Context, uid, communityID string) error {
	c.mu.Lock()
	cm := c.findCommunity(communityID)
	if cm == nil {
		c.mu.Unlock()
		return apperrors.NewResourceNotFoundError(AlertCommunityGone)
	}
	shown := c.overlay.Resolve(communityID, c.communityVersion, derive.CommunityFollowState(cm, uid))
	c.overlay = &derive.FollowOverlay{Key: communityID, Version: c.communityVersion, State: shown.Toggle()}
	c.mu.Unlock()
	c.render()

	if _, err := c.deps.Services.Communities.ToggleFollow(ctx, uid, communityID); err != nil {
		c.mu.Lock()
		c.overlay = nil
		c.mu.Unlock()
		c.render()
		return err
	}
	return nil
}

func (c *Coordinator) markNotificationsRead(ctx context.Context) {
	if _, err := c.deps.Services.Notifications.MarkAllRead(ctx, c.currentUID()); err != nil {
		c.logger.Warn().Err(err).Msg("failed to mark notifications read")
	}
}

// alertText turns a command error into a message for the user.
func alertText(err error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "Please sign in first."
	case errors.Is(err, apperrors.ErrSessionCompleted):
		return "This session has already ended."
	case errors.Is(err, apperrors.ErrNotSessionHost):
		return "Only the host can end this session."
	case errors.Is(err, apperrors.ErrChatBlocked):
		return AlertChatBlocked
	case errors.Is(err, ErrUnknownIntent):
		return AlertUnknownIntent
	}
	return "Something went wrong. Please try again."
}
