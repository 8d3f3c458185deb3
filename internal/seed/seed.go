package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

type demoUser struct {
	uid       string
	name      string
	email     string
	college   string
	year      string
	interests string
	skills    []string
	quote     string
}

var demoUsers = []demoUser{
	{"demo-priya", "Priya Raman", "priya@campus.edu", "MIT", "3", "robotics, embedded systems",
		[]string{"C", "ROS", "PCB design"},
		"I found a study partner for control theory within a day."},
	{"demo-marco", "Marco Silva", "marco@campus.edu", "Stanford", "2", "machine learning, chess",
		[]string{"Python", "PyTorch"},
		"Hosting a weekly ML reading group here has been effortless."},
	{"demo-lena", "Lena Fischer", "lena@campus.edu", "MIT", "1", "design, photography",
		[]string{"Figma", "Illustration"},
		"The design community helped me put together my first portfolio."},
	{"demo-omar", "Omar Haddad", "omar@campus.edu", "Berkeley", "4", "distributed systems, running",
		[]string{"Go", "Kubernetes"},
		"Teaching a Go workshop to thirty students from three colleges was a blast."},
}

// CreateDefaultData writes demo profiles and their testimonials. Existing
// documents are left untouched so repeated starts are harmless.
func CreateDefaultData(ctx context.Context, store docstore.Store, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (profiles/testimonials)...")
	var finalErr error
	created := 0

	for _, u := range demoUsers {
		path := repositories.UserPath(u.uid)
		_, err := store.Get(ctx, path)
		if err == nil {
			continue
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			finalErr = errors.Join(finalErr, fmt.Errorf("read %s: %w", path, err))
			continue
		}

		skills := make([]any, len(u.skills))
		for i, s := range u.skills {
			skills[i] = s
		}
		err = store.Batch().
			Set(path, map[string]any{
				"name":                     u.name,
				"email":                    u.email,
				"college":                  u.college,
				"year":                     u.year,
				"interests":                u.interests,
				"skills":                   skills,
				"followingCommunities":     []any{},
				"blockedUsers":             []any{},
				"lastCheckedNotifications": docstore.ServerTimestamp(),
			}, false).
			Set(docstore.Join(repositories.TestimonialsCollection(), u.uid), map[string]any{
				"userId":      u.uid,
				"userName":    u.name,
				"userCollege": u.college,
				"quote":       u.quote,
				"createdAt":   docstore.ServerTimestamp(),
			}, false).
			Commit(ctx)
		if err != nil {
			lgr.Error().Err(err).Str("uid", u.uid).Msg("Error creating demo profile")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++
	}

	lgr.Info().Int("created", created).Msg("Default data check complete")
	return finalErr
}
