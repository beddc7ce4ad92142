package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/service"
)

type stubAuth struct {
	users map[string]*model.User
}

func (s stubAuth) Signup(context.Context, service.SignupInput) (*model.User, string, error) {
	return nil, "", nil
}

func (s stubAuth) Login(context.Context, service.LoginInput) (*model.User, string, error) {
	return nil, "", nil
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, service.ErrUnauthenticated
}

func init() { gin.SetMode(gin.TestMode) }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/x", append(mw, func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})...)
	return r
}

func get(r http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthReadsBearerAndCookie(t *testing.T) {
	a := stubAuth{users: map[string]*model.User{
		"tok-ann":  {ID: "ann", Role: model.RoleUser},
		"tok-root": {ID: "root", Role: model.RoleAdmin},
	}}
	r := newEngine(Auth(a))

	w := get(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer tok-ann") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ann", w.Body.String())

	w = get(r, func(req *http.Request) { req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok-root"}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", w.Body.String())

	w = get(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"unauthorized"}`, w.Body.String())

	w = get(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := newEngine(Auth(a), RequireAdmin())
	assert.Equal(t, http.StatusForbidden, get(admin, func(req *http.Request) { req.Header.Set("Authorization", "Bearer tok-ann") }).Code)
	assert.Equal(t, http.StatusOK, get(admin, func(req *http.Request) { req.Header.Set("Authorization", "Bearer tok-root") }).Code)
	assert.Equal(t, http.StatusUnauthorized, get(newEngine(RequireAdmin()), nil).Code)
}

func TestRateLimitPerIP(t *testing.T) {
	r := newEngine(RateLimitPerIP(rate.Every(time.Hour), 2, time.Minute))
	from := func(ip string) func(*http.Request) {
		return func(req *http.Request) { req.RemoteAddr = ip + ":1234" }
	}
	assert.Equal(t, http.StatusOK, get(r, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, get(r, from("10.0.0.1")).Code)
	w := get(r, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"too many requests"}`, w.Body.String())
	assert.Equal(t, http.StatusOK, get(r, from("10.0.0.2")).Code)
}

func TestRequestIDPropagates(t *testing.T) {
	r := newEngine(RequestID())
	w := get(r, func(req *http.Request) { req.Header.Set(KeyRequestID, "abc") })
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))
	assert.NotEmpty(t, get(r, nil).Header().Get(KeyRequestID))
}
