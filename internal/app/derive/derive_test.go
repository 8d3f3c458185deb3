package derive_test

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/internal/app/derive"
	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/timestamp"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ts(offset time.Duration) timestamp.Timestamp {
	return timestamp.FromTime(base.Add(offset))
}

func tsPtr(offset time.Duration) *timestamp.Timestamp {
	t := ts(offset)
	return &t
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func sessionID(s models.Session) string    { return s.ID }
func userID(u models.UserProfile) string    { return u.UID }
func postID(it derive.FeedItem) string      { return it.Post.ID }
func communityID(c models.Community) string { return c.ID }

func TestSortSessions(t *testing.T) {
	sessions := []models.Session{
		{ID: "done-old", Status: models.SessionStatusCompleted, ScheduledAt: ts(5 * time.Hour), CompletedAt: tsPtr(time.Hour)},
		{ID: "early", Status: models.SessionStatusScheduled, ScheduledAt: ts(time.Hour)},
		{ID: "done-nil", Status: models.SessionStatusCompleted, ScheduledAt: ts(9 * time.Hour)},
		{ID: "late", Status: models.SessionStatusScheduled, ScheduledAt: ts(3 * time.Hour)},
		{ID: "done-new", Status: models.SessionStatusCompleted, ScheduledAt: ts(0), CompletedAt: tsPtr(2 * time.Hour)},
	}

	sorted := derive.SortSessions(sessions)

	assert.Equal(t, []string{"late", "early", "done-new", "done-old", "done-nil"}, ids(sorted, sessionID))
	assert.Equal(t, "done-old", sessions[0].ID, "input must not be reordered")
}

func TestAvailableSessions(t *testing.T) {
	viewer := &models.UserProfile{UID: "me"}
	sessions := []models.Session{
		{ID: "mine", CreatorID: "me", Topic: "Go", ScheduledAt: ts(time.Hour), SessionType: models.SessionTypeLecture},
		{ID: "later", CreatorID: "a", Topic: "Advanced Go", ScheduledAt: ts(3 * time.Hour), SessionType: models.SessionTypeLecture},
		{ID: "sooner", CreatorID: "b", Topic: "Cooking", Description: "go easy on salt", ScheduledAt: ts(2 * time.Hour), SessionType: models.SessionTypeSkillExchange},
		{ID: "done", CreatorID: "c", Topic: "Go", ScheduledAt: ts(time.Hour), Status: models.SessionStatusCompleted},
		{ID: "other", CreatorID: "d", Topic: "Piano", ScheduledAt: ts(time.Hour), SessionType: models.SessionTypeLecture},
	}

	t.Run("term matches topic or description, soonest first", func(t *testing.T) {
		got := derive.AvailableSessions(sessions, viewer, derive.SessionFilter{Term: "GO", Type: models.AudienceAll})
		assert.Equal(t, []string{"sooner", "later"}, ids(got, sessionID))
	})

	t.Run("type filter", func(t *testing.T) {
		got := derive.AvailableSessions(sessions, viewer, derive.SessionFilter{Type: string(models.SessionTypeLecture)})
		assert.Equal(t, []string{"other", "later"}, ids(got, sessionID))
	})

	t.Run("no viewer", func(t *testing.T) {
		assert.Empty(t, derive.AvailableSessions(sessions, nil, derive.SessionFilter{}))
	})
}

func TestHostedAndJoinedSessions(t *testing.T) {
	sessions := []models.Session{
		{ID: "h1", CreatorID: "me", ParticipantIDs: []string{"me"}, ScheduledAt: ts(time.Hour)},
		{ID: "j1", CreatorID: "x", ParticipantIDs: []string{"x", "me"}, ScheduledAt: ts(2 * time.Hour)},
		{ID: "n1", CreatorID: "x", ParticipantIDs: []string{"x"}, ScheduledAt: ts(3 * time.Hour)},
	}
	assert.Equal(t, []string{"h1"}, ids(derive.HostedSessions(sessions, "me"), sessionID))
	assert.Equal(t, []string{"j1"}, ids(derive.JoinedSessions(sessions, "me"), sessionID))
}

func TestHostCanStart(t *testing.T) {
	s := &models.Session{ScheduledAt: ts(0)}

	assert.False(t, derive.HostCanStart(s, base.Add(-16*time.Minute)))
	assert.True(t, derive.HostCanStart(s, base.Add(-15*time.Minute)))
	assert.True(t, derive.HostCanStart(s, base.Add(time.Hour)))
	assert.False(t, derive.HostCanStart(s, base.Add(2*time.Hour)))

	s.Status = models.SessionStatusCompleted
	assert.False(t, derive.HostCanStart(s, base))
}

func TestSessionRosterPutsCreatorFirst(t *testing.T) {
	users := derive.UsersByID([]models.UserProfile{{UID: "a"}, {UID: "host"}, {UID: "b"}})
	s := &models.Session{CreatorID: "host", ParticipantIDs: []string{"a", "host", "ghost", "b"}}

	assert.Equal(t, []string{"host", "a", "b"}, ids(derive.SessionRoster(s, users), userID))
}

func TestIsNotificationRelevant(t *testing.T) {
	now := base
	viewer := &models.UserProfile{UID: "me", College: "MIT", Year: "2nd", LastCheckedNotifications: tsPtr(-time.Hour)}
	session := func() *models.Session {
		return &models.Session{
			CreatorID:      "host",
			CreatedAt:      ts(-time.Minute),
			ScheduledAt:    ts(time.Hour),
			TargetColleges: []string{"MIT"},
			TargetYears:    []string{"2nd"},
		}
	}

	assert.True(t, derive.IsNotificationRelevant(viewer, session(), now))

	cases := map[string]func(*models.Session){
		"college only matches": func(s *models.Session) { s.TargetYears = []string{"4th"} },
		"year only matches":    func(s *models.Session) { s.TargetColleges = []string{"Stanford"} },
		"already started":      func(s *models.Session) { s.ScheduledAt = ts(0) },
		"own session":          func(s *models.Session) { s.CreatorID = "me" },
		"seen before":          func(s *models.Session) { s.CreatedAt = ts(-time.Hour) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := session()
			mutate(s)
			assert.False(t, derive.IsNotificationRelevant(viewer, s, now))
		})
	}

	t.Run("All matches any audience", func(t *testing.T) {
		s := session()
		s.TargetColleges = []string{models.AudienceAll}
		s.TargetYears = []string{models.AudienceAll}
		assert.True(t, derive.IsNotificationRelevant(viewer, s, now))
	})

	t.Run("never checked", func(t *testing.T) {
		fresh := *viewer
		fresh.LastCheckedNotifications = nil
		s := session()
		s.CreatedAt = ts(-48 * time.Hour)
		assert.True(t, derive.IsNotificationRelevant(&fresh, s, now))
	})
}

func TestAudiences(t *testing.T) {
	users := []models.UserProfile{
		{UID: "host", College: "MIT", Year: "1st"},
		{UID: "a", College: "MIT", Year: "1st"},
		{UID: "b", College: "MIT", Year: "2nd"},
		{UID: "c", College: "CMU", Year: "1st"},
	}
	s := &models.Session{CreatorID: "host", TargetColleges: []string{"MIT"}, TargetYears: []string{"1st"}}
	assert.Equal(t, []string{"a"}, derive.SessionAudience(users, s))

	c := &models.Community{FollowerIDs: []string{"a", "author", "b", "a"}}
	assert.Equal(t, []string{"a", "b"}, derive.PostAudience(c, "author"))
}

func TestUnreadCounters(t *testing.T) {
	ns := []models.Notification{{IsRead: true}, {}, {}}
	assert.Equal(t, 2, derive.UnreadNotifications(ns))

	convs := []models.ChatConversation{
		{UnreadCount: map[string]int{"me": 2, "x": 7}},
		{UnreadCount: map[string]int{"me": 1}},
		{},
	}
	assert.Equal(t, 3, derive.UnreadChats(convs, "me"))
}

func feedFixture() (*models.UserProfile, []models.CommunityPost, map[string]models.Community) {
	viewer := &models.UserProfile{
		UID:                  "me",
		Interests:            "Robotics, music",
		FollowingCommunities: []string{"followed"},
		BlockedUsers:         []string{"troll"},
	}
	communities := derive.CommunitiesByID([]models.Community{
		{ID: "followed", Name: "Chess"},
		{ID: "robots", Name: "Robotics Club"},
		{ID: "misc", Name: "Misc", Description: "anything"},
	})
	posts := []models.CommunityPost{
		{ID: "f-old", CommunityID: "followed", AuthorID: "a", CreatedAt: ts(time.Minute)},
		{ID: "f-new", CommunityID: "followed", AuthorID: "a", CreatedAt: ts(5 * time.Minute)},
		{ID: "robot", CommunityID: "robots", AuthorID: "b", CreatedAt: ts(2 * time.Minute)},
		{ID: "music", CommunityID: "misc", AuthorID: "c", Text: "live music tonight", CreatedAt: ts(time.Second)},
		{ID: "recent", CommunityID: "misc", AuthorID: "c", CreatedAt: ts(10 * time.Minute)},
		{ID: "mine", CommunityID: "followed", AuthorID: "me", CreatedAt: ts(20 * time.Minute)},
		{ID: "blocked", CommunityID: "followed", AuthorID: "troll", CreatedAt: ts(30 * time.Minute)},
		{ID: "orphan", CommunityID: "unknown", AuthorID: "a", CreatedAt: ts(40 * time.Minute)},
		{ID: "f-new", CommunityID: "followed", AuthorID: "a", CreatedAt: ts(5 * time.Minute)},
	}
	return viewer, posts, communities
}

func TestCommunityFeedLayers(t *testing.T) {
	viewer, posts, communities := feedFixture()

	feed := derive.CommunityFeed(viewer, posts, communities, derive.DefaultFeedSize)

	// followed newest first, then interest score (name 3 beats content 2), then recency
	assert.Equal(t, []string{"f-new", "f-old", "robot", "music", "recent"}, ids(feed, postID))
}

func TestCommunityFeedProperties(t *testing.T) {
	viewer, posts, communities := feedFixture()

	for n := 0; n <= len(posts)+1; n++ {
		first := derive.CommunityFeed(viewer, posts, communities, n)
		second := derive.CommunityFeed(viewer, posts, communities, n)
		require.Equal(t, first, second, "feed must be deterministic for n=%d", n)
		assert.LessOrEqual(t, len(first), n)

		seen := map[string]bool{}
		for _, it := range first {
			assert.False(t, seen[it.Post.ID], "duplicate post %s", it.Post.ID)
			seen[it.Post.ID] = true
			assert.NotEqual(t, "me", it.Post.AuthorID)
			assert.NotEqual(t, "troll", it.Post.AuthorID)
			assert.Equal(t, it.Post.CommunityID, it.Community.ID)
		}
	}

	assert.Nil(t, derive.CommunityFeed(nil, posts, communities, 5))
}

func TestCommunityFeedWithoutInterests(t *testing.T) {
	viewer, posts, communities := feedFixture()
	viewer.Interests = "  "
	viewer.FollowingCommunities = nil

	feed := derive.CommunityFeed(viewer, posts, communities, 3)
	assert.Equal(t, []string{"recent", "f-new", "robot"}, ids(feed, postID))
}

func TestBlockedFiltering(t *testing.T) {
	me := &models.UserProfile{UID: "me", BlockedUsers: []string{"x"}}
	x := &models.UserProfile{UID: "x"}
	y := &models.UserProfile{UID: "y", BlockedUsers: []string{"me"}}

	users := []models.UserProfile{*me, *x, *y}
	assert.Equal(t, []string{"y"}, ids(derive.VisibleUsers(me, users), userID))

	sessions := []models.Session{{ID: "sx", CreatorID: "x"}, {ID: "sy", CreatorID: "y"}}
	assert.Equal(t, []string{"sy"}, ids(derive.VisibleSessions(me, sessions), sessionID))

	comments := []models.Comment{{ID: "c1", AuthorID: "x"}, {ID: "c2", AuthorID: "me"}}
	assert.Len(t, derive.VisibleComments(me, comments), 1)
	assert.Len(t, derive.VisiblePosts(me, []models.CommunityPost{{AuthorID: "x"}}), 0)

	assert.Equal(t, derive.ChatBlockedByViewer, derive.ChatAccessTo(me, x))
	assert.Equal(t, derive.ChatBlockedByOther, derive.ChatAccessTo(me, y))
	assert.Equal(t, derive.ChatAllowed, derive.ChatAccessTo(x, y))
	assert.Equal(t, derive.ChatAllowed, derive.ChatAccessTo(y, x))
}

func TestInboxEntries(t *testing.T) {
	me := &models.UserProfile{UID: "me", BlockedUsers: []string{"b"}}
	users := derive.UsersByID([]models.UserProfile{
		{UID: "a", BlockedUsers: []string{"me"}},
		{UID: "b"},
	})
	convs := []models.ChatConversation{
		{ID: "me_z", Participants: []string{"me", "z"}},
		{ID: "a_me", Participants: []string{"a", "me"}, LastMessage: &models.LastMessage{CreatedAt: ts(time.Minute)}},
		{ID: "b_me", Participants: []string{"b", "me"}, LastMessage: &models.LastMessage{CreatedAt: ts(time.Hour)}, UnreadCount: map[string]int{"me": 4}},
	}

	entries := derive.InboxEntries(me, convs, users)
	require.Len(t, entries, 3)

	assert.Equal(t, "b_me", entries[0].Conversation.ID)
	assert.True(t, entries[0].BlockedByMe)
	assert.Equal(t, 4, entries[0].Unread)

	assert.Equal(t, "a_me", entries[1].Conversation.ID)
	assert.True(t, entries[1].BlockedMe)
	assert.False(t, entries[1].BlockedByMe)

	assert.Equal(t, "me_z", entries[2].Conversation.ID)
	assert.Nil(t, entries[2].Partner)
}

func TestShuffleIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	out := derive.Shuffle(rng, items)
	require.Len(t, out, len(items))
	sorted := append([]int(nil), out...)
	sort.Ints(sorted)
	assert.Equal(t, items, sorted)
	assert.Equal(t, 0, items[0], "input must not be shuffled in place")

	assert.Len(t, derive.Sample(rng, items, 3), 3)
	assert.Len(t, derive.Sample(rng, items[:2], 3), 2)
}

func TestDiscoverItems(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	me := &models.UserProfile{UID: "me"}
	var users []models.UserProfile
	for i := 0; i < 10; i++ {
		users = append(users, models.UserProfile{UID: fmt.Sprintf("u%d", i)})
	}
	users = append(users, *me)
	sessions := []models.Session{
		{ID: "s1", CreatorID: "u1"},
		{ID: "s2", CreatorID: "u2"},
		{ID: "mine", CreatorID: "me"},
		{ID: "done", CreatorID: "u3", Status: models.SessionStatusCompleted},
	}

	items := derive.DiscoverItems(rng, me, users, sessions, 3)

	var nUsers, nSessions int
	for _, it := range items {
		switch it.Kind {
		case derive.DiscoverUser:
			nUsers++
			assert.NotEqual(t, "me", it.User.UID)
		case derive.DiscoverSession:
			nSessions++
			assert.Contains(t, []string{"s1", "s2"}, it.Session.ID)
		}
	}
	assert.Equal(t, 3, nUsers)
	assert.Equal(t, 2, nSessions)
}

func TestSearchPeers(t *testing.T) {
	me := &models.UserProfile{UID: "me", College: "MIT"}
	users := []models.UserProfile{
		*me,
		{UID: "a", Name: "Ada", College: "MIT", Year: "1st", Skills: []string{"Rust"}},
		{UID: "b", Name: "Bob", College: "CMU", Year: "1st", Interests: "rust and chess"},
		{UID: "c", Name: "Cy", College: "MIT", Year: "2nd"},
	}

	assert.Equal(t, []string{"a", "b"}, ids(derive.SearchPeers(me, users, derive.PeerFilter{Term: "rust"}), userID))
	assert.Equal(t, []string{"a", "c"}, ids(derive.SearchPeers(me, users, derive.PeerFilter{College: "MIT"}), userID))
	assert.Equal(t, []string{"a"}, ids(derive.SearchPeers(me, users, derive.PeerFilter{College: "MIT", Year: "1st"}), userID))
}

func TestCommunityDirectory(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	me := &models.UserProfile{UID: "me"}
	communities := []models.Community{
		{ID: "owned", Name: "Go Club", OwnerID: "me"},
		{ID: "admin", Name: "Chess", OwnerID: "x", AdminIDs: []string{"me"}},
		{ID: "follow", Name: "Drama", Description: "theatre and go", OwnerID: "x", FollowerIDs: []string{"me"}},
		{ID: "other", Name: "Art", OwnerID: "x"},
	}

	g := derive.MyCommunities(rng, me, communities)
	assert.Equal(t, []string{"owned", "admin"}, ids(g.Admin, communityID))
	assert.Equal(t, []string{"follow"}, ids(g.Following, communityID))
	assert.Equal(t, []string{"other"}, ids(g.Discover, communityID))

	assert.Equal(t, []string{"owned", "follow"}, ids(derive.SearchCommunities(communities, "GO"), communityID))
}

func TestAdminCandidates(t *testing.T) {
	c := &models.Community{OwnerID: "o", AdminIDs: []string{"a1"}}
	var users []models.UserProfile
	users = append(users, models.UserProfile{UID: "o", Name: "sam owner"}, models.UserProfile{UID: "a1", Name: "sam admin"})
	for i := 0; i < 8; i++ {
		users = append(users, models.UserProfile{UID: fmt.Sprintf("u%d", i), Name: "Sam", Email: fmt.Sprintf("u%d@x.io", i)})
	}

	got := derive.AdminCandidates(c, users, "sam")
	assert.Len(t, got, derive.AdminCandidateLimit)
	assert.Equal(t, "u0", got[0].UID)

	assert.Equal(t, []string{"u3"}, ids(derive.AdminCandidates(c, users, "U3@"), userID))
	assert.Empty(t, derive.AdminCandidates(c, users, " "))

	admins := derive.Admins(&models.Community{OwnerID: "o", AdminIDs: []string{"a1", "o"}}, derive.UsersByID(users))
	assert.Equal(t, []string{"o", "a1"}, ids(admins, userID))
}

func TestFollowOverlay(t *testing.T) {
	c := &models.Community{ID: "c", FollowerIDs: []string{"x"}}
	actual := derive.CommunityFollowState(c, "me")
	assert.Equal(t, derive.FollowState{Following: false, Followers: 1}, actual)

	overlay := &derive.FollowOverlay{Key: "c", Version: 3, State: actual.Toggle()}
	assert.Equal(t, derive.FollowState{Following: true, Followers: 2}, overlay.Resolve("c", 3, actual))
	assert.Equal(t, actual, overlay.Resolve("c", 4, actual), "a new snapshot resets the overlay")
	assert.Equal(t, actual, overlay.Resolve("d", 3, actual))

	var none *derive.FollowOverlay
	assert.Equal(t, actual, none.Resolve("c", 3, actual))
	assert.Equal(t, actual, actual.Toggle().Toggle())
}
