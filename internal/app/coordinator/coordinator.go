// Package coordinator owns the application state of one connection. It keeps
// the live subscriptions that follow the identity and the current view, turns
// every change into a rendered view frame and executes the client's intents
// through the command handlers.
//
// The state lock is never held while calling the store: the in-memory store
// delivers snapshots synchronously inside a write.
package coordinator

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/derive"
	"github.com/campusconnect/campusconnect/internal/app/live"
	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/app/router"
	"github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/pkg/identity"
	"github.com/campusconnect/campusconnect/internal/pkg/videoroom"
)

const (
	// TestimonialLimit is the number of quotes shown on the landing view.
	TestimonialLimit = 6
	// DefaultDiscoverSize is the number of users and of sessions on the home grid.
	DefaultDiscoverSize = 3
)

// Deps are the collaborators shared by every coordinator. Rand is only safe
// to set for a single coordinator; left nil each coordinator seeds its own.
type Deps struct {
	Repos        *repositories.Repositories
	Services     *services.Services
	Rooms        *videoroom.Builder
	Rand         derive.Rand
	Now          func() time.Time
	FeedSize     int
	DiscoverSize int
	Logger       zerolog.Logger
}

// state is the latest snapshot of every open stream.
type state struct {
	me            *models.UserProfile
	users         []models.UserProfile
	sessions      []models.Session
	communities   []models.Community
	notifications []models.Notification
	chats         []models.ChatConversation
	testimonials  []models.Testimonial
	posts         []models.CommunityPost
	comments      []models.Comment
	messages      []models.ChatMessage
	post          *models.CommunityPost
}

// Coordinator drives one connection.
type Coordinator struct {
	deps     Deps
	identity identity.Provider
	sink     Sink
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	view     router.View
	uid      string
	email    string
	resolved bool
	st       state
	filter   Filter
	overlay  *derive.FollowOverlay
	// communityVersion counts community snapshots; a follow overlay only
	// applies until the next one.
	communityVersion int64

	renderMu sync.Mutex

	// identity scoped
	profile       live.Binding
	users         live.Binding
	sessions      live.Binding
	communities   live.Binding
	notifications live.Binding
	chats         live.Binding
	// connection scoped
	testimonials live.Binding
	// view scoped
	posts    live.Binding
	comments live.Binding
	messages live.Binding
	post     live.Binding

	stopIdentity func()
	closeOnce    sync.Once
}

// New creates a coordinator that reports to sink. It does nothing until Start.
func New(deps Deps, provider identity.Provider, sink Sink) *Coordinator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if deps.FeedSize <= 0 {
		deps.FeedSize = derive.DefaultFeedSize
	}
	if deps.DiscoverSize <= 0 {
		deps.DiscoverSize = DefaultDiscoverSize
	}
	return &Coordinator{
		deps:     deps,
		identity: provider,
		sink:     sink,
		logger:   deps.Logger.With().Str("component", "coordinator").Logger(),
		view:     router.Initial(),
	}
}

// Start renders the initial view, opens the connection scoped streams and
// follows the identity provider.
func (c *Coordinator) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.render()

	bindList(c, &c.testimonials, "landing", live.Query[models.Testimonial]{
		Name:  "testimonials",
		Query: c.deps.Repos.Users.TestimonialsQuery(TestimonialLimit),
		Map:   repositories.MapTestimonial,
	}, func(s *state, t []models.Testimonial) { s.testimonials = t })

	c.stopIdentity = c.identity.OnIdentityChanged(c.onIdentity)
}

// Close disposes every subscription. Later calls are no-ops.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		if c.stopIdentity != nil {
			c.stopIdentity()
		}
		c.closeIdentityScope()
		c.testimonials.Close()
		if c.cancel != nil {
			c.cancel()
		}
		c.logger.Debug().Str("uid", c.currentUID()).Msg("coordinator closed")
	})
}

// View returns the current view.
func (c *Coordinator) View() router.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Coordinator) currentUID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid
}

func (c *Coordinator) onIdentity(id *identity.Identity) {
	if id == nil {
		c.signedOut()
		return
	}

	c.mu.Lock()
	if c.uid == id.UID {
		c.mu.Unlock()
		return
	}
	c.uid, c.email = id.UID, id.Email
	c.resolved = false
	c.view = router.Initial()
	c.st = state{testimonials: c.st.testimonials}
	c.overlay = nil
	c.mu.Unlock()

	c.logger.Info().Str("uid", id.UID).Msg("identity resolved")
	c.render()
	c.openIdentityScope(id.UID)
}

func (c *Coordinator) signedOut() {
	c.closeIdentityScope()

	c.mu.Lock()
	had := c.uid
	c.uid, c.email = "", ""
	c.resolved = false
	c.st = state{testimonials: c.st.testimonials}
	c.filter = Filter{}
	c.overlay = nil
	c.view = router.SignedOut()
	c.mu.Unlock()

	if had != "" {
		c.logger.Info().Str("uid", had).Msg("signed out")
	}
	c.render()
}

func (c *Coordinator) openIdentityScope(uid string) {
	repos := c.deps.Repos
	bindList(c, &c.users, uid, live.Query[models.UserProfile]{
		Name:  "users",
		Query: repos.Users.AllQuery(),
		Map:   repositories.MapUser,
	}, func(s *state, u []models.UserProfile) { s.users = u })

	bindList(c, &c.sessions, uid, live.Query[models.Session]{
		Name:    "sessions",
		Query:   repos.Sessions.AllQuery(),
		Map:     repositories.MapSession,
		Arrange: derive.SortSessions,
	}, func(s *state, v []models.Session) { s.sessions = v })

	bindList(c, &c.communities, uid, live.Query[models.Community]{
		Name:  "communities",
		Query: repos.Communities.AllQuery(),
		Map:   repositories.MapCommunity,
	}, func(s *state, v []models.Community) {
		s.communities = v
	})

	bindList(c, &c.notifications, uid, live.Query[models.Notification]{
		Name:  "notifications",
		Query: repos.Notifications.ForUserQuery(uid),
		Map:   repositories.MapNotification,
	}, func(s *state, v []models.Notification) { s.notifications = v })

	bindList(c, &c.chats, uid, live.Query[models.ChatConversation]{
		Name:    "chats",
		Query:   repos.Chats.ForUserQuery(uid),
		Map:     repositories.MapChat,
		Arrange: derive.SortConversations,
	}, func(s *state, v []models.ChatConversation) { s.chats = v })

	err := c.profile.Bind(uid, func() (*live.Subscription, error) {
		return live.Watch(c.ctx, repos.Store, "profile", repositories.UserPath(uid), repositories.MapUser,
			c.onProfile(uid), c.onProfileError(uid), c.logger)
	})
	if err != nil {
		c.logger.Error().Err(err).Str("uid", uid).Msg("failed to watch profile")
		c.identity.SignOut()
	}
}

func (c *Coordinator) closeIdentityScope() {
	for _, b := range []*live.Binding{
		&c.profile, &c.users, &c.sessions, &c.communities, &c.notifications, &c.chats,
		&c.posts, &c.comments, &c.messages, &c.post,
	} {
		b.Close()
	}
}

// onProfile resolves the first view after sign-in and follows later edits.
func (c *Coordinator) onProfile(uid string) func(*models.UserProfile) {
	return func(p *models.UserProfile) {
		c.mu.Lock()
		if c.uid != uid {
			c.mu.Unlock()
			return
		}
		c.st.me = p
		first := !c.resolved
		c.resolved = true
		_, creating := c.view.(router.CreateProfile)
		var next router.View
		if first || (creating && p != nil) {
			next = router.AfterSignIn(p != nil, uid, c.email)
			c.view = next
		}
		stamp := first && p != nil && p.LastCheckedNotifications == nil
		c.mu.Unlock()

		if next != nil {
			c.bindView(next)
		}
		if stamp {
			if err := c.deps.Services.Profiles.StampNotificationsChecked(c.ctx, uid); err != nil {
				c.logger.Warn().Err(err).Str("uid", uid).Msg("failed to stamp notification watermark")
			}
		}
		c.render()
	}
}

// onProfileError signs the user out: a profile that cannot be read leaves
// nothing to render.
func (c *Coordinator) onProfileError(uid string) func(error) {
	return func(err error) {
		c.logger.Error().Err(err).Str("uid", uid).Msg("profile stream failed, signing out")
		c.alert(AlertSignedOut)
		c.identity.SignOut()
	}
}

// bindList keeps a list field of the state in sync with q while b holds key.
func bindList[T any](c *Coordinator, b *live.Binding, key string, q live.Query[T], set func(*state, []T)) {
	err := b.Bind(key, func() (*live.Subscription, error) {
		return live.Subscribe(c.ctx, c.deps.Repos.Store, q, func(items []T) {
			if b.Key() != key {
				return
			}
			c.mu.Lock()
			set(&c.st, items)
			if q.Name == "communities" {
				c.communityVersion++
			}
			c.mu.Unlock()
			c.render()
		}, nil, c.logger)
	})
	if err != nil {
		c.logger.Error().Err(err).Str("query", q.Name).Msg("failed to subscribe")
	}
}

// release closes a view scoped binding and clears what it fed.
func (c *Coordinator) release(b *live.Binding, clear func(*state)) {
	if b.Key() == "" {
		return
	}
	b.Close()
	c.mu.Lock()
	clear(&c.st)
	c.mu.Unlock()
}

// bindView opens the streams the view v reads and closes the others.
func (c *Coordinator) bindView(v router.View) {
	if c.currentUID() == "" {
		return
	}
	repos := c.deps.Repos

	switch x := v.(type) {
	case router.Home:
		bindList(c, &c.posts, "all", live.Query[models.CommunityPost]{
			Name:  "posts",
			Query: repos.Communities.AllPostsQuery(),
			Map:   repositories.MapPost,
		}, func(s *state, p []models.CommunityPost) { s.posts = p })
	case router.CommunityPage:
		bindList(c, &c.posts, "community/"+x.Community.ID, live.Query[models.CommunityPost]{
			Name:  "community_posts",
			Query: repos.Communities.PostsQuery(x.Community.ID),
			Map:   repositories.MapPost,
		}, func(s *state, p []models.CommunityPost) { s.posts = p })
	default:
		c.release(&c.posts, func(s *state) { s.posts = nil })
	}

	if x, ok := v.(router.Chat); ok {
		bindList(c, &c.messages, x.ChatID, live.Query[models.ChatMessage]{
			Name:  "messages",
			Query: repos.Chats.MessagesQuery(x.ChatID),
			Map:   repositories.MapMessage,
		}, func(s *state, m []models.ChatMessage) { s.messages = m })
	} else {
		c.release(&c.messages, func(s *state) { s.messages = nil })
	}

	if x, ok := v.(router.CommunityPostDetail); ok {
		communityID, postID := x.Community.ID, x.Post.ID
		key := repositories.PostPath(communityID, postID)
		bindList(c, &c.comments, key, live.Query[models.Comment]{
			Name:  "comments",
			Query: repos.Communities.CommentsQuery(communityID, postID),
			Map:   repositories.MapComment,
		}, func(s *state, cm []models.Comment) { s.comments = cm })
		err := c.post.Bind(key, func() (*live.Subscription, error) {
			return live.Watch(c.ctx, repos.Store, "post", key, repositories.MapPost,
				c.onPost(key, communityID, postID), nil, c.logger)
		})
		if err != nil {
			c.logger.Error().Err(err).Str("post", key).Msg("failed to watch post")
		}
	} else {
		c.release(&c.comments, func(s *state) { s.comments = nil })
		c.release(&c.post, func(s *state) { s.post = nil })
	}
}

// onPost follows the post of a detail view. A deleted post sends the user
// back to its community.
func (c *Coordinator) onPost(key, communityID, postID string) func(*models.CommunityPost) {
	return func(p *models.CommunityPost) {
		if c.post.Key() != key {
			return
		}
		c.mu.Lock()
		c.st.post = p
		var to router.View
		if d, ok := c.view.(router.CommunityPostDetail); ok && p == nil &&
			d.Community.ID == communityID && d.Post.ID == postID {
			community := d.Community
			if latest := c.findCommunity(communityID); latest != nil {
				community = *latest
			}
			to = router.CommunityPage{Community: community}
			c.view = to
		}
		c.mu.Unlock()

		if to != nil {
			c.alert(AlertPostDeleted)
			c.bindView(to)
		}
		c.render()
	}
}

// setView switches to v, rebinds the view streams and renders.
func (c *Coordinator) setView(v router.View) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
	c.bindView(v)
	c.render()
}

func (c *Coordinator) alert(message string) {
	c.sink.Send(Frame{Type: FrameAlert, Message: message})
}

// The find helpers read the state and must be called with c.mu held.

func (c *Coordinator) findUser(uid string) *models.UserProfile {
	for i := range c.st.users {
		if c.st.users[i].UID == uid {
			u := c.st.users[i]
			return &u
		}
	}
	return nil
}

func (c *Coordinator) findSession(id string) *models.Session {
	for i := range c.st.sessions {
		if c.st.sessions[i].ID == id {
			s := c.st.sessions[i]
			return &s
		}
	}
	return nil
}

func (c *Coordinator) findCommunity(id string) *models.Community {
	for i := range c.st.communities {
		if c.st.communities[i].ID == id {
			cm := c.st.communities[i]
			return &cm
		}
	}
	return nil
}

func (c *Coordinator) findNotification(id string) *models.Notification {
	for i := range c.st.notifications {
		if c.st.notifications[i].ID == id {
			n := c.st.notifications[i]
			return &n
		}
	}
	return nil
}
