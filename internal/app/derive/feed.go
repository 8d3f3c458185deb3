package derive

import (
	"sort"
	"strings"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/richtext"
)

// DefaultFeedSize is the number of posts on the home feed.
const DefaultFeedSize = 5

// Keyword weights of the interest match.
const (
	weightContent     = 2
	weightName        = 3
	weightDescription = 1
)

// FeedItem is a post together with the community it belongs to.
type FeedItem struct {
	Post      models.CommunityPost `json:"post"`
	Community models.Community     `json:"community"`
}

// CommunityFeed builds the viewer's home feed of at most n posts in three
// layers: posts of followed communities newest first, then posts scored by
// the viewer's interests, then the newest remaining posts. The viewer's own
// posts, posts by blocked authors and posts whose community has not been
// loaded yet are left out. No post appears twice.
func CommunityFeed(viewer *models.UserProfile, posts []models.CommunityPost, communities map[string]models.Community, n int) []FeedItem {
	if viewer == nil || n <= 0 {
		return nil
	}

	candidates := make([]FeedItem, 0, len(posts))
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		c, ok := communities[p.CommunityID]
		if !ok || p.AuthorID == viewer.UID || viewer.HasBlocked(p.AuthorID) || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		candidates = append(candidates, FeedItem{Post: p, Community: c})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return newer(&candidates[i].Post, &candidates[j].Post) })

	out := make([]FeedItem, 0, n)
	included := make(map[string]bool, n)
	take := func(it FeedItem) bool {
		if included[it.Post.ID] {
			return len(out) < n
		}
		included[it.Post.ID] = true
		out = append(out, it)
		return len(out) < n
	}

	for _, it := range candidates {
		if viewer.Follows(it.Community.ID) || it.Community.HasFollower(viewer.UID) {
			if !take(it) {
				return out
			}
		}
	}

	keywords := interestKeywords(viewer.Interests)
	if len(keywords) > 0 {
		type scored struct {
			item  FeedItem
			score int
		}
		var ranked []scored
		for _, it := range candidates {
			if included[it.Post.ID] {
				continue
			}
			if s := interestScore(keywords, &it); s > 0 {
				ranked = append(ranked, scored{item: it, score: s})
			}
		}
		// candidates are newest first, so a stable sort keeps recency as the tiebreak.
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		for _, r := range ranked {
			if !take(r.item) {
				return out
			}
		}
	}

	for _, it := range candidates {
		if len(out) >= n {
			break
		}
		if !included[it.Post.ID] {
			take(it)
		}
	}
	return out
}

// newer orders posts newest first with the id as a stable tiebreak.
func newer(a, b *models.CommunityPost) bool {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c > 0
	}
	return a.ID < b.ID
}

// interestKeywords splits free-text interests on whitespace into distinct lowercase words.
func interestKeywords(interests string) []string {
	fields := strings.Fields(strings.ToLower(interests))
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ",.;:!?")
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func interestScore(keywords []string, it *FeedItem) int {
	content := strings.ToLower(richtext.PlainText(it.Post.Text))
	name := strings.ToLower(it.Community.Name)
	desc := strings.ToLower(it.Community.Description)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			score += weightContent
		}
		if strings.Contains(name, kw) {
			score += weightName
		}
		if strings.Contains(desc, kw) {
			score += weightDescription
		}
	}
	return score
}

// CommunitiesByID indexes communities by id.
func CommunitiesByID(cs []models.Community) map[string]models.Community {
	m := make(map[string]models.Community, len(cs))
	for _, c := range cs {
		m[c.ID] = c
	}
	return m
}
