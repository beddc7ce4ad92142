package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/config"
	"github.com/d60-Lab/gymfeed/internal/api/handler"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/service"
	"github.com/d60-Lab/gymfeed/pkg/auth"
	"github.com/d60-Lab/gymfeed/pkg/cache"
	"github.com/d60-Lab/gymfeed/pkg/database"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	stores *service.Stores
}

func newTestServer(t *testing.T, checks ...handler.HealthCheck) *testServer {
	t.Helper()
	db, err := database.Open(config.Database{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	stores := service.NewStores(db)
	dir := service.NewDirectory(stores.Users, stores.Exercises, rdb, time.Minute, time.Hour)
	following := service.NewFollowingCache(stores.Follows, cache.New(rdb), time.Minute)
	authSvc := service.NewAuthService(stores, auth.NewJWTer("test-secret", "gymfeed", time.Hour))

	h := handler.New(handler.Services{
		Follows:   service.NewFollowService(stores, dir, following),
		Workouts:  service.NewWorkoutService(stores, dir),
		Likes:     service.NewEngagementService(stores, dir),
		Feed:      service.NewFeedService(stores, dir, following, 5, 50),
		Comments:  service.NewCommentService(stores, dir),
		Auth:      authSvc,
		Admin:     service.NewAdminService(stores, dir, following),
		Exercises: service.NewExerciseService(stores),
	}, handler.CookieConfig{MaxAge: time.Hour}, checks...)

	engine := NewRouter(h, authSvc, zap.NewNop(), Options{
		Mode:        gin.TestMode,
		ServiceName: "gymfeed-test",
		CORSOrigins: []string{"http://localhost:5173"},
	})
	return &testServer{t: t, engine: engine, stores: stores}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type session struct {
	ID    string
	Token string
}

func (s *testServer) signup(name string) session {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": "secret1",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	return session{ID: out.ID, Token: out.Token}
}

func (s *testServer) createWorkout(sess session, title string) service.WorkoutView {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/workout/save-workout", sess.Token, map[string]any{
		"title":     title,
		"startTime": "2024-03-01T07:00:00Z",
		"endTime":   "2024-03-01T07:50:30Z",
		"exercises": []map[string]any{{"exercise": "squat", "sets": []map[string]any{{"weight": 80, "reps": 5}}}},
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var v service.WorkoutView
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"username": "ann", "email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ann := s.signup("ann")
	w = s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"username": "ann", "email": "x@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/auth/check", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", message(t, w))

	w = s.do(http.MethodGet, "/api/auth/check", ann.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w = s.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", message(t, w))
}

func TestFollowEndpoints(t *testing.T) {
	s := newTestServer(t)
	ann, bob := s.signup("ann"), s.signup("bob")

	w := s.do(http.MethodPost, "/api/follow/follow/"+ann.ID, ann.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you cannot follow yourself", message(t, w))

	w = s.do(http.MethodPost, "/api/follow/follow/00000000-0000-0000-0000-000000000000", ann.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/follow/follow/"+bob.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/follow/follow/"+bob.ID, ann.Token, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/follow/follow/"+bob.ID, ann.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/follow/followers/"+bob.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var followers []service.UserSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &followers))
	require.Len(t, followers, 1)
	assert.Equal(t, "ann", followers[0].Username)

	w = s.do(http.MethodDelete, "/api/follow/unfollow/"+bob.ID, ann.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/api/follow/unfollow/"+bob.ID, ann.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/follow/following/"+ann.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestWorkoutFeedAndLikes(t *testing.T) {
	s := newTestServer(t)
	ann, bob := s.signup("ann"), s.signup("bob")

	w := s.do(http.MethodPost, "/api/workout/save-workout", ann.Token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing required fields", message(t, w))

	wb := s.createWorkout(bob, "bob legs")
	assert.Equal(t, 50, wb.Duration)
	assert.Equal(t, "bob", wb.User.Username)
	assert.NotNil(t, wb.Likes)

	w = s.do(http.MethodPost, "/api/follow/follow/"+bob.ID, ann.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	wa := s.createWorkout(ann, "ann arms")

	w = s.do(http.MethodGet, "/api/workout/feed?page=1", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.FeedPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Workouts, 2)
	assert.Equal(t, wa.ID, page.Workouts[0].ID)
	assert.Equal(t, wb.ID, page.Workouts[1].ID)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasMore)

	w = s.do(http.MethodPost, "/api/workout/like/"+wb.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var liked struct {
		Message string              `json:"message"`
		Liked   bool                `json:"liked"`
		Workout service.WorkoutView `json:"workout"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &liked))
	assert.True(t, liked.Liked)
	assert.Equal(t, []string{ann.ID}, liked.Workout.Likes)

	w = s.do(http.MethodPost, "/api/workout/like/not-an-id", ann.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/workout/"+wb.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/workout/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/workout/user/"+bob.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []service.WorkoutView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = s.do(http.MethodDelete, "/api/workout/"+wb.ID, ann.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, "/api/workout/"+wb.ID, bob.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/workout/"+wb.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentEndpointsAndAdmin(t *testing.T) {
	s := newTestServer(t)
	ann, bob, root := s.signup("ann"), s.signup("bob"), s.signup("root")
	require.NoError(t, s.stores.Users.Update(context.Background(), root.ID, map[string]any{"role": model.RoleAdmin}))
	wa := s.createWorkout(ann, "legs")

	w := s.do(http.MethodPost, "/api/comment/"+wa.ID, bob.Token, map[string]string{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/comment/"+wa.ID, bob.Token, map[string]string{"content": "nice"})
	require.Equal(t, http.StatusCreated, w.Code)
	var cv service.CommentView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cv))
	assert.Equal(t, "bob", cv.User.Username)

	w = s.do(http.MethodGet, "/api/comment/"+wa.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []service.CommentView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	assert.Len(t, comments, 1)

	w = s.do(http.MethodDelete, "/api/comment/"+cv.ID, ann.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, "/api/comment/"+cv.ID, root.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/admin/users", ann.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodGet, "/api/admin/users", root.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 3)

	w = s.do(http.MethodPut, "/api/admin/users/"+bob.ID, root.Token, map[string]string{"username": "ann"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(http.MethodDelete, "/api/admin/users/"+bob.ID, root.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/auth/check", bob.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndOps(t *testing.T) {
	s := newTestServer(t, handler.HealthCheck{Name: "db", Check: func(context.Context) error { return nil }})
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"db":"ok"}}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/exercise/all-exercises", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestServer(t, handler.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }})
	w = down.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewRouterWithoutCORSOrigins(t *testing.T) {
	s := newTestServer(t)
	authSvc := service.NewAuthService(s.stores, auth.NewJWTer("test-secret", "gymfeed", time.Hour))
	h := handler.New(handler.Services{Auth: authSvc}, handler.CookieConfig{})

	var engine *gin.Engine
	require.NotPanics(t, func() {
		engine = NewRouter(h, authSvc, zap.NewNop(), Options{Mode: gin.TestMode})
	})
	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
