package middleware

import (
	"strings"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/service"
	"github.com/d60-Lab/gymfeed/pkg/response"
)

const (
	KeyUser    = "currentUser"
	CookieName = "jwt"
)

// Auth 从 Bearer 头或 jwt cookie 取令牌，回查用户后放进上下文
func Auth(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := authSvc.Authenticate(c.Request.Context(), tokenFrom(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(KeyUser, u)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: u.ID, Username: u.Username})
		}
		c.Next()
	}
}

// RequireAdmin 必须挂在 Auth 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			response.Unauthorized(c, "unauthorized")
			return
		}
		if !u.IsAdmin() {
			response.Forbidden(c, "admin access required")
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// CurrentUserID returns "" for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}

func tokenFrom(c *gin.Context) string {
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	}
	if v, err := c.Cookie(CookieName); err == nil {
		return v
	}
	return ""
}
