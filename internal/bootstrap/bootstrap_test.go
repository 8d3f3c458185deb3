package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/internal/config"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Setenv("STORE_DRIVER", config.StoreDriverMemory)
	t.Setenv("STORE_SEED", "true")
	t.Setenv("IDENTITY_SECRET", "test-secret")
	cfg, err := config.LoadConfig("does-not-exist.yaml")
	require.NoError(t, err)
	return cfg
}

func TestSetupStorageMemorySeeds(t *testing.T) {
	cfg := memoryConfig(t)

	storage, err := SetupStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer storage.Close(zerolog.Nop())

	_, ok := storage.Store.(*docstore.MemoryStore)
	assert.True(t, ok)
	assert.Nil(t, storage.Database)

	docs, err := docstore.Fetch(context.Background(), storage.Store, docstore.Collection("testimonials"))
	require.NoError(t, err)
	assert.NotEmpty(t, docs)
}

func TestBuildDependenciesAndRouter(t *testing.T) {
	cfg := memoryConfig(t)
	storage, err := SetupStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	deps := BuildDependencies(cfg, storage, zerolog.Nop())
	defer deps.Close()

	assert.NotNil(t, deps.Services.Profiles)
	assert.NotNil(t, deps.WSHandler)

	router := SetupRouter(cfg, deps, zerolog.Nop())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := deps.JWTService.Issue("demo-priya", "priya@campus.edu")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/skills/suggest", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewSuggesterDisabledWithoutKey(t *testing.T) {
	cfg := memoryConfig(t)
	assert.Nil(t, newSuggester(cfg, zerolog.Nop()))

	cfg.Suggest.APIKey = "key"
	assert.NotNil(t, newSuggester(cfg, zerolog.Nop()))
}
