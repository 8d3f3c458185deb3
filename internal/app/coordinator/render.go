package coordinator

import (
	"time"

	"github.com/campusconnect/campusconnect/internal/app/derive"
	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/app/router"
	"github.com/campusconnect/campusconnect/internal/pkg/richtext"
)

// LandingData is rendered with LANDING.
type LandingData struct {
	Testimonials []models.Testimonial `json:"testimonials"`
}

// ProfileData is rendered with EDIT_PROFILE and CREATE_SESSION.
type ProfileData struct {
	Me *models.UserProfile `json:"me"`
}

// HomeData is rendered with HOME.
type HomeData struct {
	Me                  *models.UserProfile   `json:"me"`
	Discover            []derive.DiscoverItem `json:"discover"`
	Feed                []FeedPost            `json:"feed"`
	UnreadNotifications int                   `json:"unreadNotifications"`
	UnreadChats         int                   `json:"unreadChats"`
}

// FeedPost is a feed entry with its body rendered as plain text.
type FeedPost struct {
	derive.FeedItem
	Body string `json:"body"`
}

// ProfileDetailData is rendered with PROFILE_DETAIL.
type ProfileDetailData struct {
	User       models.UserProfile `json:"user"`
	ChatAccess derive.ChatAccess  `json:"chatAccess"`
}

// InboxData is rendered with CHAT_INBOX.
type InboxData struct {
	Entries     []derive.InboxEntry `json:"entries"`
	UnreadChats int                 `json:"unreadChats"`
}

// ChatData is rendered with CHAT.
type ChatData struct {
	OtherUser  models.UserProfile   `json:"otherUser"`
	Messages   []models.ChatMessage `json:"messages"`
	ChatAccess derive.ChatAccess    `json:"chatAccess"`
}

// NotificationsData is rendered with NOTIFICATIONS. Upcoming lists the
// sessions announced since the last visit that still lie ahead.
type NotificationsData struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
	Upcoming      []models.Session      `json:"upcoming"`
}

// MySessionsData is rendered with MY_SESSIONS.
type MySessionsData struct {
	Hosted []models.Session `json:"hosted"`
	Joined []models.Session `json:"joined"`
}

// SessionsData is rendered with SKILL_SHARING.
type SessionsData struct {
	Sessions []models.Session `json:"sessions"`
	Filter   Filter           `json:"filter"`
}

// PeersData is rendered with DISCOVER_PEERS.
type PeersData struct {
	Peers  []models.UserProfile `json:"peers"`
	Filter Filter               `json:"filter"`
}

// VideoSessionData is rendered with VIDEO_SESSION.
type VideoSessionData struct {
	Session  models.Session       `json:"session"`
	Roster   []models.UserProfile `json:"roster"`
	RoomURL  string               `json:"roomUrl"`
	IsHost   bool                 `json:"isHost"`
	CanStart bool                 `json:"canStart"`
	Ended    bool                 `json:"ended"`
}

// DirectoryData is rendered with COMMUNITY_AUTH.
type DirectoryData struct {
	Communities []models.Community `json:"communities"`
	Filter      Filter             `json:"filter"`
}

// CommunityPageData is rendered with COMMUNITY_PAGE.
type CommunityPageData struct {
	Community models.Community       `json:"community"`
	Posts     []models.CommunityPost `json:"posts"`
	Follow    derive.FollowState     `json:"follow"`
	IsAdmin   bool                   `json:"isAdmin"`
}

// CommunityAdminData is rendered with COMMUNITY_ADMIN.
type CommunityAdminData struct {
	Community  models.Community     `json:"community"`
	Admins     []models.UserProfile `json:"admins"`
	Candidates []models.UserProfile `json:"candidates"`
	Filter     Filter               `json:"filter"`
}

// PostDetailData is rendered with COMMUNITY_POST_DETAIL.
type PostDetailData struct {
	Post        models.CommunityPost `json:"post"`
	Body        string               `json:"body"`
	Community   models.Community     `json:"community"`
	Comments    []models.Comment     `json:"comments"`
	Liked       bool                 `json:"liked"`
	CanModerate bool                 `json:"canModerate"`
}

// render sends the current view with its data. Renders are serialized so
// frames leave in the order the state changed.
func (c *Coordinator) render() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	view := c.view
	b := &dataBuilder{c: c, now: c.deps.Now()}
	view.Accept(b)
	c.mu.Unlock()

	raw, err := router.Marshal(view)
	if err != nil {
		c.logger.Error().Err(err).Str("view", string(view.Name())).Msg("failed to encode view")
		return
	}
	c.sink.Send(Frame{Type: FrameView, View: raw, Data: b.data})
}

// dataBuilder derives the data of a view from the state. It runs with c.mu held.
type dataBuilder struct {
	c    *Coordinator
	now  time.Time
	data any
}

func (b *dataBuilder) me() *models.UserProfile { return b.c.st.me }

func (b *dataBuilder) VisitLoading(router.Loading) {}

func (b *dataBuilder) VisitLanding(router.Landing) {
	b.data = LandingData{Testimonials: b.c.st.testimonials}
}

func (b *dataBuilder) VisitAuth(router.Auth) {}

func (b *dataBuilder) VisitCreateProfile(router.CreateProfile) {}

func (b *dataBuilder) VisitEditProfile(router.EditProfile) {
	b.data = ProfileData{Me: b.me()}
}

func (b *dataBuilder) VisitHome(router.Home) {
	st := &b.c.st
	items := derive.CommunityFeed(st.me, st.posts, derive.CommunitiesByID(st.communities), b.c.deps.FeedSize)
	feed := make([]FeedPost, 0, len(items))
	for _, it := range items {
		feed = append(feed, FeedPost{FeedItem: it, Body: richtext.PlainText(it.Post.Text)})
	}
	var unreadChats int
	if st.me != nil {
		unreadChats = derive.UnreadChats(st.chats, st.me.UID)
	}
	b.data = HomeData{
		Me:                  st.me,
		Discover:            derive.DiscoverItems(b.c.deps.Rand, st.me, st.users, st.sessions, b.c.deps.DiscoverSize),
		Feed:                feed,
		UnreadNotifications: derive.UnreadNotifications(st.notifications),
		UnreadChats:         unreadChats,
	}
}

func (b *dataBuilder) VisitProfileDetail(v router.ProfileDetail) {
	user := v.User
	if latest := b.c.findUser(user.UID); latest != nil {
		user = *latest
	}
	d := ProfileDetailData{User: user}
	if me := b.me(); me != nil {
		d.ChatAccess = derive.ChatAccessTo(me, &user)
	}
	b.data = d
}

func (b *dataBuilder) VisitChatInbox(router.ChatInbox) {
	st := &b.c.st
	entries := derive.InboxEntries(st.me, st.chats, derive.UsersByID(st.users))
	d := InboxData{Entries: entries}
	for _, e := range entries {
		d.UnreadChats += e.Unread
	}
	b.data = d
}

func (b *dataBuilder) VisitChat(v router.Chat) {
	other := v.OtherUser
	if latest := b.c.findUser(other.UID); latest != nil {
		other = *latest
	}
	d := ChatData{OtherUser: other, Messages: b.c.st.messages}
	if me := b.me(); me != nil {
		d.ChatAccess = derive.ChatAccessTo(me, &other)
	}
	b.data = d
}

func (b *dataBuilder) VisitNotifications(router.Notifications) {
	st := &b.c.st
	b.data = NotificationsData{
		Notifications: st.notifications,
		Unread:        derive.UnreadNotifications(st.notifications),
		Upcoming:      derive.RelevantSessions(st.me, st.sessions, b.now),
	}
}

func (b *dataBuilder) VisitCreateSession(router.CreateSession) {
	b.data = ProfileData{Me: b.me()}
}

func (b *dataBuilder) VisitMySessions(router.MySessions) {
	me := b.me()
	if me == nil {
		return
	}
	b.data = MySessionsData{
		Hosted: derive.HostedSessions(b.c.st.sessions, me.UID),
		Joined: derive.JoinedSessions(b.c.st.sessions, me.UID),
	}
}

func (b *dataBuilder) VisitSkillSharing(router.SkillSharing) {
	f := b.c.filter
	me := b.me()
	available := derive.AvailableSessions(derive.VisibleSessions(me, b.c.st.sessions), me,
		derive.SessionFilter{Term: f.Term, Type: f.SessionType})
	b.data = SessionsData{Sessions: available, Filter: f}
}

func (b *dataBuilder) VisitDiscoverPeers(router.DiscoverPeers) {
	f := b.c.filter
	b.data = PeersData{
		Peers:  derive.SearchPeers(b.me(), b.c.st.users, derive.PeerFilter{Term: f.Term, College: f.College, Year: f.Year}),
		Filter: f,
	}
}

func (b *dataBuilder) VisitVideoSession(v router.VideoSession) {
	session := v.Session
	if latest := b.c.findSession(session.ID); latest != nil {
		session = *latest
	}
	d := VideoSessionData{
		Session:  session,
		Roster:   derive.SessionRoster(&session, derive.UsersByID(b.c.st.users)),
		Ended:    session.IsCompleted(),
		CanStart: derive.HostCanStart(&session, b.now),
	}
	if me := b.me(); me != nil {
		d.IsHost = session.CreatorID == me.UID
		if b.c.deps.Rooms != nil && !d.Ended {
			d.RoomURL = b.c.deps.Rooms.URL(session.ID, me.Name, d.IsHost)
		}
	}
	b.data = d
}

func (b *dataBuilder) VisitCommunityAuth(router.CommunityAuth) {
	f := b.c.filter
	b.data = DirectoryData{Communities: derive.SearchCommunities(b.c.st.communities, f.Term), Filter: f}
}

func (b *dataBuilder) VisitCreateCommunity(router.CreateCommunity) {}

func (b *dataBuilder) VisitCommunityPage(v router.CommunityPage) {
	community := b.community(v.Community)
	d := CommunityPageData{
		Community: community,
		Posts:     derive.VisiblePosts(b.me(), b.c.st.posts),
	}
	if me := b.me(); me != nil {
		actual := derive.CommunityFollowState(&community, me.UID)
		d.Follow = b.c.overlay.Resolve(community.ID, b.c.communityVersion, actual)
		d.IsAdmin = community.IsAdmin(me.UID)
	}
	b.data = d
}

func (b *dataBuilder) VisitMyCommunities(router.MyCommunities) {
	b.data = derive.MyCommunities(b.c.deps.Rand, b.me(), b.c.st.communities)
}

func (b *dataBuilder) VisitCommunityAdmin(v router.CommunityAdmin) {
	community := b.community(v.Community)
	f := b.c.filter
	b.data = CommunityAdminData{
		Community:  community,
		Admins:     derive.Admins(&community, derive.UsersByID(b.c.st.users)),
		Candidates: derive.AdminCandidates(&community, b.c.st.users, f.Term),
		Filter:     f,
	}
}

func (b *dataBuilder) VisitCommunityPostDetail(v router.CommunityPostDetail) {
	post := v.Post
	if b.c.st.post != nil {
		post = *b.c.st.post
	}
	community := b.community(v.Community)
	d := PostDetailData{
		Post:      post,
		Body:      richtext.PlainText(post.Text),
		Community: community,
		Comments:  derive.VisibleComments(b.me(), b.c.st.comments),
	}
	if me := b.me(); me != nil {
		d.Liked = post.LikedBy(me.UID)
		d.CanModerate = post.AuthorID == me.UID || community.IsAdmin(me.UID)
	}
	b.data = d
}

// community returns the latest snapshot of fallback.
func (b *dataBuilder) community(fallback models.Community) models.Community {
	if latest := b.c.findCommunity(fallback.ID); latest != nil {
		return *latest
	}
	return fallback
}
