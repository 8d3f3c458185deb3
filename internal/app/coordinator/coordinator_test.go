package coordinator_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/campusconnect/campusconnect/internal/app/coordinator"
	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/app/router"
	"github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/identity"
	"github.com/campusconnect/campusconnect/internal/pkg/richtext"
	"github.com/campusconnect/campusconnect/internal/pkg/videoroom"
)

type recorder struct {
	mu     sync.Mutex
	frames []coordinator.Frame
}

func (r *recorder) Send(f coordinator.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) snapshot() []coordinator.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]coordinator.Frame(nil), r.frames...)
}

func (r *recorder) alerts() []string {
	var out []string
	for _, f := range r.snapshot() {
		if f.Type == coordinator.FrameAlert {
			out = append(out, f.Message)
		}
	}
	return out
}

func (r *recorder) lastView() (coordinator.Frame, bool) {
	frames := r.snapshot()
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Type == coordinator.FrameView {
			return frames[i], true
		}
	}
	return coordinator.Frame{}, false
}

type CoordinatorSuite struct {
	suite.Suite
	ctx      context.Context
	store    *docstore.MemoryStore
	repos    *repositories.Repositories
	svc      *services.Services
	identity *identity.Session
	rec      *recorder
	coord    *coordinator.Coordinator
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = docstore.NewMemoryStore()
	s.repos = repositories.NewRepositories(s.store)
	rooms := videoroom.NewBuilder("https://meet.example.org", "campus")
	s.svc = services.NewServices(s.repos, nil, nil, rooms, zerolog.Nop())

	s.user("host", "Hana", "MIT", "2")
	s.user("ada", "Ada", "MIT", "1")
	s.user("bob", "Bob", "MIT", "3")
	s.user("cy", "Cy", "Stanford", "1")

	s.identity = identity.NewSession()
	s.rec = &recorder{}
	s.coord = coordinator.New(coordinator.Deps{
		Repos:    s.repos,
		Services: s.svc,
		Rooms:    rooms,
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Logger:   zerolog.Nop(),
	}, s.identity, s.rec)
}

func (s *CoordinatorSuite) TearDownTest() {
	s.coord.Close()
}

func (s *CoordinatorSuite) user(uid, name, college, year string) {
	require.NoError(s.T(), s.store.Set(s.ctx, repositories.UserPath(uid), map[string]any{
		"name":    name,
		"email":   uid + "@campus.edu",
		"college": college,
		"year":    year,
		"skills":  []string{},
	}, false))
}

func (s *CoordinatorSuite) signIn(uid string) {
	s.identity.SignIn(identity.Identity{UID: uid, Email: uid + "@campus.edu"})
	s.coord.Start(s.ctx)
}

func (s *CoordinatorSuite) view() router.View {
	f, ok := s.rec.lastView()
	s.Require().True(ok, "no view frame sent")
	v, err := router.Unmarshal(f.View)
	s.Require().NoError(err)
	return v
}

func (s *CoordinatorSuite) data() any {
	f, ok := s.rec.lastView()
	s.Require().True(ok, "no view frame sent")
	return f.Data
}

func (s *CoordinatorSuite) handle(in coordinator.Intent) error {
	return s.coord.Handle(s.ctx, in)
}

func (s *CoordinatorSuite) community() string {
	id, err := s.svc.Communities.CreateCommunity(s.ctx, "host", &dto.CreateCommunityRequest{Name: "Robotics", College: "MIT"})
	s.Require().NoError(err)
	return id
}

func (s *CoordinatorSuite) post(communityID, text string) string {
	id, err := s.svc.Communities.CreatePost(s.ctx, "host", communityID, &dto.PostRequest{Text: richtext.FromPlainText(text)})
	s.Require().NoError(err)
	return id
}

func (s *CoordinatorSuite) session() string {
	id, err := s.svc.Sessions.CreateSession(s.ctx, "host", &dto.CreateSessionRequest{
		Topic:          "Intro to Go",
		SessionType:    string(models.SessionTypeLecture),
		ScheduledAt:    time.Now().Add(time.Hour),
		TargetColleges: []string{models.AudienceAll},
		TargetYears:    []string{models.AudienceAll},
	})
	s.Require().NoError(err)
	return id
}

func (s *CoordinatorSuite) TestSignedOutShowsLandingWithTestimonials() {
	for i := 0; i < 8; i++ {
		_, err := s.svc.Profiles.AddTestimonial(s.ctx, "ada", &dto.TestimonialRequest{Quote: "Great place to learn"})
		s.Require().NoError(err)
	}
	s.coord.Start(s.ctx)

	s.Equal(router.Landing{}, s.view())
	landing, ok := s.data().(coordinator.LandingData)
	s.Require().True(ok)
	s.Len(landing.Testimonials, coordinator.TestimonialLimit)
}

func (s *CoordinatorSuite) TestSignedOutOnlyReachesPublicViews() {
	s.coord.Start(s.ctx)

	s.NoError(s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameAuth}))
	s.Equal(router.Auth{}, s.view())

	err := s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameHome})
	s.ErrorIs(err, apperrors.ErrUnauthorized)
	s.Equal(router.Auth{}, s.view())

	s.NoError(s.handle(coordinator.Intent{Type: coordinator.IntentBack}))
	s.Equal(router.Landing{}, s.view())
}

func (s *CoordinatorSuite) TestSignInWithProfileGoesHomeAndStampsWatermark() {
	s.signIn("ada")

	s.Equal(router.Home{}, s.view())
	home, ok := s.data().(coordinator.HomeData)
	s.Require().True(ok)
	s.Require().NotNil(home.Me)
	s.Equal("Ada", home.Me.Name)

	ada, err := s.repos.Users.GetByID(s.ctx, "ada")
	s.Require().NoError(err)
	s.NotNil(ada.LastCheckedNotifications)
}

func (s *CoordinatorSuite) TestNewIdentityCreatesProfileThenGoesHome() {
	s.signIn("newt")
	s.Equal(router.CreateProfile{UID: "newt", Email: "newt@campus.edu"}, s.view())

	err := s.svc.Profiles.SaveProfile(s.ctx, "newt", "newt@campus.edu", &dto.SaveProfileRequest{
		Name:    "Newt",
		College: "MIT",
		Year:    "1",
	})
	s.Require().NoError(err)

	s.Equal(router.Home{}, s.view())
	newt, err := s.repos.Users.GetByID(s.ctx, "newt")
	s.Require().NoError(err)
	s.NotNil(newt.LastCheckedNotifications)
}

func (s *CoordinatorSuite) TestSignOutReturnsToLanding() {
	s.signIn("ada")
	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentSignOut}))

	s.Equal(router.Landing{}, s.view())
	err := s.handle(coordinator.Intent{Type: coordinator.IntentJoinSession, SessionID: "x"})
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *CoordinatorSuite) TestNavigateToMissingEntityAlerts() {
	s.signIn("ada")

	err := s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameCommunityPage, CommunityID: "gone"})
	s.ErrorIs(err, apperrors.ErrResourceNotFound)
	s.Equal([]string{coordinator.AlertCommunityGone}, s.rec.alerts())
	s.Equal(router.Home{}, s.view())

	err = s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameCommunityPage})
	s.ErrorIs(err, apperrors.ErrBadRequest)
}

func (s *CoordinatorSuite) TestNavigateAndBack() {
	communityID := s.community()
	s.signIn("ada")

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameCommunityPage, CommunityID: communityID}))
	page, ok := s.view().(router.CommunityPage)
	s.Require().True(ok)
	s.Equal("Robotics", page.Community.Name)

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentBack}))
	s.Equal(router.MyCommunities{}, s.view())
	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentBack}))
	s.Equal(router.Home{}, s.view())
	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentBack}))
	s.Equal(router.Home{}, s.view())
}

func (s *CoordinatorSuite) TestUnknownIntentAlerts() {
	s.signIn("ada")
	err := s.handle(coordinator.Intent{Type: "teleport"})
	s.ErrorIs(err, coordinator.ErrUnknownIntent)
	s.Equal([]string{coordinator.AlertUnknownIntent}, s.rec.alerts())
}

func (s *CoordinatorSuite) TestJoinAndLeaveSession() {
	sessionID := s.session()
	s.signIn("ada")

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentJoinSession, SessionID: sessionID}))
	_, ok := s.view().(router.VideoSession)
	s.Require().True(ok)
	room, ok := s.data().(coordinator.VideoSessionData)
	s.Require().True(ok)
	s.False(room.IsHost)
	s.False(room.Ended)
	s.Len(room.Roster, 2)
	s.Contains(room.RoomURL, "https://meet.example.org/")

	err := s.handle(coordinator.Intent{Type: coordinator.IntentEndSession, SessionID: sessionID})
	s.ErrorIs(err, apperrors.ErrNotSessionHost)

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentLeaveSession, SessionID: sessionID}))
	s.Equal(router.Home{}, s.view())
	session, err := s.repos.Sessions.GetByID(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal([]string{"host"}, session.ParticipantIDs)
}

func (s *CoordinatorSuite) TestBackFromVideoSessionLeaves() {
	sessionID := s.session()
	s.signIn("ada")
	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentJoinSession, SessionID: sessionID}))

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentBack}))
	s.Equal(router.Home{}, s.view())
	session, err := s.repos.Sessions.GetByID(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal([]string{"host"}, session.ParticipantIDs)
}

func (s *CoordinatorSuite) TestNavigateToVideoSessionJoins() {
	sessionID := s.session()
	s.signIn("ada")

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameVideoSession, SessionID: sessionID}))
	room, ok := s.view().(router.VideoSession)
	s.Require().True(ok)
	s.Equal(sessionID, room.Session.ID)
	session, err := s.repos.Sessions.GetByID(s.ctx, sessionID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"host", "ada"}, session.ParticipantIDs)
}

func (s *CoordinatorSuite) TestNavigateToEndedSessionStaysOut() {
	sessionID := s.session()
	s.Require().NoError(s.svc.Sessions.EndSession(s.ctx, "host", sessionID))
	s.signIn("ada")

	err := s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameVideoSession, SessionID: sessionID})
	s.ErrorIs(err, apperrors.ErrSessionCompleted)
	s.Equal(router.Home{}, s.view())
	session, err := s.repos.Sessions.GetByID(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal([]string{"host"}, session.ParticipantIDs)

	err = s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameVideoSession, SessionID: "missing"})
	s.ErrorIs(err, apperrors.ErrResourceNotFound)
	s.Contains(s.rec.alerts(), coordinator.AlertSessionGone)
}

func (s *CoordinatorSuite) TestVideoViewFollowsEnd() {
	sessionID := s.session()
	s.signIn("ada")
	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentJoinSession, SessionID: sessionID}))

	s.Require().NoError(s.svc.Sessions.EndSession(s.ctx, "host", sessionID))
	room, ok := s.data().(coordinator.VideoSessionData)
	s.Require().True(ok)
	s.True(room.Ended)
	s.Empty(room.RoomURL)

	err := s.handle(coordinator.Intent{Type: coordinator.IntentJoinSession, SessionID: sessionID})
	s.ErrorIs(err, apperrors.ErrSessionCompleted)

	err = s.handle(coordinator.Intent{Type: coordinator.IntentJoinSession, SessionID: "missing"})
	s.ErrorIs(err, apperrors.ErrResourceNotFound)
	s.Contains(s.rec.alerts(), coordinator.AlertSessionGone)
}

func (s *CoordinatorSuite) TestOpenChatResetsUnread() {
	chatID, err := s.svc.Chats.OpenChat(s.ctx, "bob", "ada")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Chats.SendMessage(s.ctx, "bob", chatID, "hi"))
	s.signIn("ada")

	home, ok := s.data().(coordinator.HomeData)
	s.Require().True(ok)
	s.Equal(1, home.UnreadChats)

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentOpenChat, UID: "bob"}))
	chat, ok := s.view().(router.Chat)
	s.Require().True(ok)
	s.Equal(chatID, chat.ChatID)
	data, ok := s.data().(coordinator.ChatData)
	s.Require().True(ok)
	s.Len(data.Messages, 1)

	conv, err := s.repos.Chats.GetByID(s.ctx, chatID)
	s.Require().NoError(err)
	s.Equal(0, conv.Unread("ada"))
}

func (s *CoordinatorSuite) TestOpenChatBlockedByOtherStays() {
	_, err := s.svc.Profiles.ToggleBlock(s.ctx, "bob", "ada")
	s.Require().NoError(err)
	s.signIn("ada")

	err = s.handle(coordinator.Intent{Type: coordinator.IntentOpenChat, UID: "bob"})
	s.ErrorIs(err, apperrors.ErrChatBlocked)
	s.Equal([]string{coordinator.AlertChatBlocked}, s.rec.alerts())
	s.Equal(router.Home{}, s.view())

	_, err = s.repos.Chats.GetByID(s.ctx, models.ChatID("ada", "bob"))
	s.Error(err)
}

func (s *CoordinatorSuite) TestDeletedPostLeavesDetail() {
	communityID := s.community()
	postID := s.post(communityID, "Kickoff")
	s.signIn("ada")

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentOpenPost, CommunityID: communityID, PostID: postID}))
	_, ok := s.view().(router.CommunityPostDetail)
	s.Require().True(ok)
	detail, ok := s.data().(coordinator.PostDetailData)
	s.Require().True(ok)
	s.Equal("Kickoff", detail.Body)
	s.False(detail.CanModerate)

	s.Require().NoError(s.svc.Communities.DeletePost(s.ctx, "host", communityID, postID))

	page, ok := s.view().(router.CommunityPage)
	s.Require().True(ok)
	s.Equal(communityID, page.Community.ID)
	s.Equal([]string{coordinator.AlertPostDeleted}, s.rec.alerts())
}

func (s *CoordinatorSuite) TestPostNotificationForDeletedPost() {
	communityID := s.community()
	_, err := s.svc.Communities.ToggleFollow(s.ctx, "ada", communityID)
	s.Require().NoError(err)
	postID := s.post(communityID, "Kickoff")
	s.signIn("ada")

	ns, err := s.repos.Notifications.ListForUser(s.ctx, "ada")
	s.Require().NoError(err)
	s.Require().Len(ns, 1)

	s.Require().NoError(s.svc.Communities.DeletePost(s.ctx, "host", communityID, postID))
	err = s.handle(coordinator.Intent{Type: coordinator.IntentOpenNotification, NotificationID: ns[0].ID})
	s.ErrorIs(err, apperrors.ErrResourceNotFound)
	s.Equal(router.Notifications{}, s.view())
	s.Equal([]string{coordinator.AlertPostDeleted}, s.rec.alerts())
}

func (s *CoordinatorSuite) TestSessionNotificationOpensSkillSharing() {
	s.session()
	s.signIn("ada")

	ns, err := s.repos.Notifications.ListForUser(s.ctx, "ada")
	s.Require().NoError(err)
	s.Require().Len(ns, 1)

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentOpenNotification, NotificationID: ns[0].ID}))
	s.Equal(router.SkillSharing{}, s.view())
	sessions, ok := s.data().(coordinator.SessionsData)
	s.Require().True(ok)
	s.Len(sessions.Sessions, 1)
}

func (s *CoordinatorSuite) TestNotificationsViewMarksAllRead() {
	s.session()
	s.signIn("ada")
	home, ok := s.data().(coordinator.HomeData)
	s.Require().True(ok)
	s.Equal(1, home.UnreadNotifications)

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameNotifications}))
	data, ok := s.data().(coordinator.NotificationsData)
	s.Require().True(ok)
	s.Equal(0, data.Unread)
	s.Len(data.Notifications, 1)
}

func (s *CoordinatorSuite) TestNotificationsViewKeepsUpcoming() {
	s.signIn("ada")
	time.Sleep(5 * time.Millisecond)
	s.session()

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameNotifications}))
	data, ok := s.data().(coordinator.NotificationsData)
	s.Require().True(ok)
	s.Equal(0, data.Unread)
	s.Len(data.Upcoming, 1)
}

func (s *CoordinatorSuite) TestUnreadableProfileSignsOut() {
	s.signIn("ada")
	s.Require().Equal(router.Home{}, s.view())

	s.Require().NoError(s.store.Set(s.ctx, repositories.UserPath("ada"), map[string]any{"skills": 5}, true))
	s.Equal(router.Landing{}, s.view())
	s.Contains(s.rec.alerts(), coordinator.AlertSignedOut)
}

func (s *CoordinatorSuite) TestToggleFollowShowsNewStateAtOnce() {
	communityID := s.community()
	s.signIn("ada")
	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameCommunityPage, CommunityID: communityID}))
	before := len(s.rec.snapshot())

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentToggleFollow, CommunityID: communityID}))

	frames := s.rec.snapshot()[before:]
	s.Require().NotEmpty(frames)
	for _, f := range frames {
		if page, ok := f.Data.(coordinator.CommunityPageData); ok {
			s.True(page.Follow.Following)
			s.Equal(2, page.Follow.Followers)
		}
	}

	c, err := s.repos.Communities.GetByID(s.ctx, communityID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"host", "ada"}, c.FollowerIDs)
}

func (s *CoordinatorSuite) TestFilterNarrowsPeers() {
	s.signIn("ada")
	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentNavigate, View: router.NameDiscoverPeers}))
	peers, ok := s.data().(coordinator.PeersData)
	s.Require().True(ok)
	s.Len(peers.Peers, 3)

	s.Require().NoError(s.handle(coordinator.Intent{Type: coordinator.IntentFilter, College: "Stanford"}))
	peers, ok = s.data().(coordinator.PeersData)
	s.Require().True(ok)
	s.Require().Len(peers.Peers, 1)
	s.Equal("cy", peers.Peers[0].UID)
	s.Equal("Stanford", peers.Filter.College)
}

func (s *CoordinatorSuite) TestCloseStopsFrames() {
	s.signIn("ada")
	s.coord.Close()
	before := len(s.rec.snapshot())

	s.session()
	s.Len(s.rec.snapshot(), before)
}
