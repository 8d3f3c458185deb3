package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repos := repositories.NewRepositories(store)

	require.NoError(t, CreateDefaultData(ctx, store, zerolog.Nop()))

	users, err := repos.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(demoUsers))

	require.NoError(t, store.Update(ctx, repositories.UserPath("demo-priya"), map[string]any{"year": "4"}))
	require.NoError(t, CreateDefaultData(ctx, store, zerolog.Nop()))

	priya, err := repos.Users.GetByID(ctx, "demo-priya")
	require.NoError(t, err)
	assert.Equal(t, "4", priya.Year)

	testimonials, err := docstore.Fetch(ctx, store, repos.Users.TestimonialsQuery(10))
	require.NoError(t, err)
	assert.Len(t, testimonials, len(demoUsers))
}
