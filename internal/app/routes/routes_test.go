package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/internal/app/controllers"
	"github.com/campusconnect/campusconnect/internal/app/coordinator"
	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/app/routes"
	"github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/middleware"
	"github.com/campusconnect/campusconnect/internal/pkg/auth"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/richtext"
	"github.com/campusconnect/campusconnect/internal/pkg/videoroom"
	"github.com/campusconnect/campusconnect/internal/pkg/websocket"
)

type api struct {
	t      *testing.T
	router *gin.Engine
	jwt    *auth.JWTService
	repos  *repositories.Repositories
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    dto.ErrorCode `json:"code"`
		Message string        `json:"message"`
		Field   string        `json:"field"`
	} `json:"error"`
}

func newAPI(t *testing.T) *api {
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemoryStore()
	repos := repositories.NewRepositories(store)
	svc := services.NewServices(repos, nil, nil,
		videoroom.NewBuilder("https://meet.example.org", "campus"), zerolog.Nop())
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret"})
	hub := websocket.NewHub(zerolog.Nop())
	ws := websocket.NewHandler(hub, jwtService, coordinator.Deps{Repos: repos, Services: svc}, zerolog.Nop())

	router := gin.New()
	routes.SetupRouter(router,
		controllers.NewProfileController(svc.Profiles),
		controllers.NewSessionController(svc.Sessions),
		controllers.NewCommunityController(svc.Communities),
		controllers.NewChatController(svc.Chats),
		controllers.NewNotificationController(svc.Notifications),
		ws,
		middleware.NewAuthMiddleware(jwtService),
	)

	ctx := context.Background()
	for uid, name := range map[string]string{"host": "Hana", "ada": "Ada"} {
		require.NoError(t, store.Set(ctx, repositories.UserPath(uid), map[string]any{
			"name": name, "email": uid + "@campus.edu", "college": "MIT", "year": "2",
		}, false))
	}

	return &api{t: t, router: router, jwt: jwtService, repos: repos}
}

func (a *api) do(method, path, uid string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		token, err := a.jwt.Issue(uid, uid+"@campus.edu")
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *api) createCommunity() string {
	w, env := a.do(http.MethodPost, "/api/v1/communities", "host", dto.CreateCommunityRequest{Name: "Robotics", College: "MIT"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var id dto.IDResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &id))
	return id.ID
}

func TestPing(t *testing.T) {
	a := newAPI(t)
	w, _ := a.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t)
	w, _ := a.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequiresToken(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodPost, "/api/v1/notifications/read-all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeTokenNotFound, env.Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodPost, "/api/v1/sessions", "host", map[string]any{
		"sessionType":    "Lecture",
		"scheduledAt":    time.Now().Add(time.Hour),
		"targetColleges": []string{"All"},
		"targetYears":    []string{"All"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
	assert.Equal(t, "Topic", env.Error.Field)
}

func TestBlankFieldsAreRejected(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodPost, "/api/v1/communities", "host", dto.CreateCommunityRequest{Name: "   ", College: "MIT"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
	assert.Equal(t, "Name", env.Error.Field)

	w, env = a.do(http.MethodPut, "/api/v1/profile", "ada", dto.SaveProfileRequest{
		Name: "Ada", Mobile: "not a number", College: "MIT", Year: "1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Mobile", env.Error.Field)
}

func TestCommunityFlow(t *testing.T) {
	a := newAPI(t)
	communityID := a.createCommunity()

	w, env := a.do(http.MethodPost, "/api/v1/communities/"+communityID+"/follow", "ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var toggle dto.ToggleResponse
	require.NoError(t, json.Unmarshal(env.Data, &toggle))
	assert.True(t, toggle.Active)

	post := dto.PostRequest{Text: richtext.FromPlainText("Kickoff")}
	w, env = a.do(http.MethodPost, "/api/v1/communities/"+communityID+"/posts", "ada", post)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeForbidden, env.Error.Code)

	w, env = a.do(http.MethodPost, "/api/v1/communities/"+communityID+"/posts", "host", post)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.IDResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ = a.do(http.MethodPost, "/api/v1/communities/"+communityID+"/posts/"+created.ID+"/comments", "ada", dto.CommentRequest{Text: "nice"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = a.do(http.MethodDelete, "/api/v1/communities/"+communityID+"/admins/host", "host", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)

	w, env = a.do(http.MethodPost, "/api/v1/notifications/read-all", "ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var marked struct {
		Marked int `json:"marked"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &marked))
	assert.Equal(t, 1, marked.Marked)
}

func TestEmptyPostUsesServiceMessage(t *testing.T) {
	a := newAPI(t)
	communityID := a.createCommunity()

	w, env := a.do(http.MethodPost, "/api/v1/communities/"+communityID+"/posts", "host", dto.PostRequest{Text: richtext.FromPlainText("  ")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Post content cannot be empty", env.Error.Message)
}

func TestSessionErrors(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodPost, "/api/v1/sessions/missing/join", "ada", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, env.Error.Code)

	w, _ = a.do(http.MethodPost, "/api/v1/sessions", "host", dto.CreateSessionRequest{
		Topic:          "Intro to Go",
		SessionType:    "Lecture",
		ScheduledAt:    time.Now().Add(time.Hour),
		TargetColleges: []string{"All"},
		TargetYears:    []string{"All"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestChatRoutes(t *testing.T) {
	a := newAPI(t)

	w, _ := a.do(http.MethodPost, "/api/v1/chats", "ada", dto.OpenChatRequest{UID: "ada"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := a.do(http.MethodPost, "/api/v1/chats", "ada", dto.OpenChatRequest{UID: "host"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var chat dto.OpenChatResponse
	require.NoError(t, json.Unmarshal(env.Data, &chat))

	w, _ = a.do(http.MethodPost, "/api/v1/chats/"+chat.ChatID+"/messages", "ada", dto.SendMessageRequest{Text: "hi"})
	assert.Equal(t, http.StatusCreated, w.Code)

	conv, err := a.repos.Chats.GetByID(context.Background(), chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.Unread("host"))

	w, _ = a.do(http.MethodPost, "/api/v1/chats/"+chat.ChatID+"/read", "host", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSuggestSkillsUnavailable(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodPost, "/api/v1/profile/skills/suggest", "ada", dto.SuggestSkillsRequest{Interests: "robots"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeExternalServiceError, env.Error.Code)
}
