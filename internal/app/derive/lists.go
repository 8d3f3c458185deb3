package derive

import (
	"sort"
	"strings"

	"github.com/campusconnect/campusconnect/internal/app/models"
)

// SortConversations orders conversations by their last message, newest first.
// Conversations without a message go last.
func SortConversations(convs []models.ChatConversation) []models.ChatConversation {
	out := append([]models.ChatConversation(nil), convs...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessage, out[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}

// InboxEntry is a conversation row of the chat inbox.
type InboxEntry struct {
	Conversation models.ChatConversation `json:"conversation"`
	Partner      *models.UserProfile     `json:"partner,omitempty"`
	Unread       int                     `json:"unread"`
	BlockedByMe  bool                    `json:"blockedByMe"`
	BlockedMe    bool                    `json:"blockedMe"`
}

// InboxEntries joins the sorted conversations with the partner profiles.
// Conversations with a blocked partner stay listed and are flagged.
func InboxEntries(viewer *models.UserProfile, convs []models.ChatConversation, users map[string]models.UserProfile) []InboxEntry {
	if viewer == nil {
		return nil
	}
	sorted := SortConversations(convs)
	out := make([]InboxEntry, 0, len(sorted))
	for _, c := range sorted {
		e := InboxEntry{Conversation: c, Unread: c.Unread(viewer.UID)}
		pid := c.Partner(viewer.UID)
		if p, ok := users[pid]; ok {
			e.Partner = &p
			e.BlockedMe = p.HasBlocked(viewer.UID)
		}
		e.BlockedByMe = viewer.HasBlocked(pid)
		out = append(out, e)
	}
	return out
}

// CommunityGroups splits the community directory for the viewer.
type CommunityGroups struct {
	Admin     []models.Community `json:"admin"`
	Following []models.Community `json:"following"`
	Discover  []models.Community `json:"discover"`
}

// DiscoverCommunities is the size of the community discover sample.
const DiscoverCommunities = 6

// MyCommunities groups communities into the ones the viewer administers, the
// ones the viewer follows and a random sample of the rest.
func MyCommunities(rng Rand, viewer *models.UserProfile, communities []models.Community) CommunityGroups {
	var g CommunityGroups
	if viewer == nil {
		return g
	}
	var rest []models.Community
	for _, c := range communities {
		switch {
		case c.IsAdmin(viewer.UID):
			g.Admin = append(g.Admin, c)
		case c.HasFollower(viewer.UID) || viewer.Follows(c.ID):
			g.Following = append(g.Following, c)
		default:
			rest = append(rest, c)
		}
	}
	g.Discover = Sample(rng, rest, DiscoverCommunities)
	return g
}

// Admins lists the administrator profiles of c with the owner first.
func Admins(c *models.Community, users map[string]models.UserProfile) []models.UserProfile {
	var out []models.UserProfile
	if u, ok := users[c.OwnerID]; ok {
		out = append(out, u)
	}
	for _, id := range c.AdminIDs {
		if id == c.OwnerID {
			continue
		}
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}

// AdminCandidateLimit caps the admin search results.
const AdminCandidateLimit = 5

// AdminCandidates lists users that are not yet admins of c and whose name or
// email contains term. An empty term yields nothing.
func AdminCandidates(c *models.Community, users []models.UserProfile, term string) []models.UserProfile {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []models.UserProfile
	for _, u := range users {
		if c.IsAdmin(u.UID) {
			continue
		}
		if !strings.Contains(strings.ToLower(u.Name), term) && !strings.Contains(strings.ToLower(u.Email), term) {
			continue
		}
		out = append(out, u)
		if len(out) == AdminCandidateLimit {
			break
		}
	}
	return out
}

// FollowState is the follow button of a community or profile page.
type FollowState struct {
	Following bool `json:"following"`
	Followers int  `json:"followers"`
}

// FollowOverlay holds an optimistic follow state until the underlying
// document changes. Version is the document version the overlay was taken against.
type FollowOverlay struct {
	Key     string
	Version int64
	State   FollowState
}

// Resolve returns the overlay state while it still applies to key at version,
// and the real state otherwise.
func (o *FollowOverlay) Resolve(key string, version int64, actual FollowState) FollowState {
	if o == nil || o.Key != key || o.Version != version {
		return actual
	}
	return o.State
}

// CommunityFollowState reads the follow state of c for uid.
func CommunityFollowState(c *models.Community, uid string) FollowState {
	if c == nil {
		return FollowState{}
	}
	return FollowState{Following: c.HasFollower(uid), Followers: len(c.FollowerIDs)}
}

// Toggle flips a follow state.
func (s FollowState) Toggle() FollowState {
	if s.Following {
		s.Following = false
		if s.Followers > 0 {
			s.Followers--
		}
		return s
	}
	s.Following = true
	s.Followers++
	return s
}
