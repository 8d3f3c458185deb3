package derive

import (
	"strings"

	"github.com/campusconnect/campusconnect/internal/app/models"
)

// Rand is the random source of the shuffles. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Shuffle returns a uniformly shuffled copy of items (Fisher-Yates).
func Shuffle[T any](rng Rand, items []T) []T {
	out := append([]T(nil), items...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Sample returns at most n items of a fresh shuffle.
func Sample[T any](rng Rand, items []T, n int) []T {
	out := Shuffle(rng, items)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DiscoverKind tags a discover grid entry.
type DiscoverKind string

const (
	DiscoverUser    DiscoverKind = "user"
	DiscoverSession DiscoverKind = "session"
)

// DiscoverItem is one entry of the home discover grid.
type DiscoverItem struct {
	Kind    DiscoverKind        `json:"kind"`
	User    *models.UserProfile `json:"user,omitempty"`
	Session *models.Session     `json:"session,omitempty"`
}

// DiscoverItems samples n other users and n scheduled sessions hosted by
// someone else, then shuffles both samples together. The result changes on
// every call.
func DiscoverItems(rng Rand, viewer *models.UserProfile, users []models.UserProfile, sessions []models.Session, n int) []DiscoverItem {
	if viewer == nil {
		return nil
	}
	others := VisibleUsers(viewer, users)
	var upcoming []models.Session
	for _, s := range VisibleSessions(viewer, sessions) {
		if !s.IsCompleted() && s.CreatorID != viewer.UID {
			upcoming = append(upcoming, s)
		}
	}

	var items []DiscoverItem
	for _, u := range Sample(rng, others, n) {
		u := u
		items = append(items, DiscoverItem{Kind: DiscoverUser, User: &u})
	}
	for _, s := range Sample(rng, upcoming, n) {
		s := s
		items = append(items, DiscoverItem{Kind: DiscoverSession, Session: &s})
	}
	return Shuffle(rng, items)
}

// PeerFilter narrows the peer directory.
type PeerFilter struct {
	// Term matches name, college, interests or any skill, case-insensitively.
	Term    string
	College string
	Year    string
}

// SearchPeers lists the other, unblocked users that match filter.
func SearchPeers(viewer *models.UserProfile, users []models.UserProfile, filter PeerFilter) []models.UserProfile {
	term := strings.ToLower(strings.TrimSpace(filter.Term))
	var out []models.UserProfile
	for _, u := range VisibleUsers(viewer, users) {
		if filter.College != "" && u.College != filter.College {
			continue
		}
		if filter.Year != "" && u.Year != filter.Year {
			continue
		}
		if term != "" && !peerMatches(&u, term) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func peerMatches(u *models.UserProfile, term string) bool {
	if strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(strings.ToLower(u.College), term) ||
		strings.Contains(strings.ToLower(u.Interests), term) {
		return true
	}
	for _, s := range u.Skills {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// SearchCommunities matches name or description, case-insensitively.
func SearchCommunities(communities []models.Community, term string) []models.Community {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []models.Community
	for _, c := range communities {
		if term == "" ||
			strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Description), term) {
			out = append(out, c)
		}
	}
	return out
}
