package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gymfeed/internal/api/middleware"
	"github.com/d60-Lab/gymfeed/internal/service"
)

// Services 是路由层依赖的全部业务服务
type Services struct {
	Follows   service.FollowService
	Workouts  service.WorkoutService
	Likes     service.EngagementService
	Feed      service.FeedService
	Comments  service.CommentService
	Auth      service.AuthService
	Admin     service.AdminService
	Exercises service.ExerciseService
}

type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

type Handler struct {
	follows   service.FollowService
	workouts  service.WorkoutService
	likes     service.EngagementService
	feed      service.FeedService
	comments  service.CommentService
	auth      service.AuthService
	admin     service.AdminService
	exercises service.ExerciseService

	cookie CookieConfig
	checks []HealthCheck
}

func New(s Services, cookie CookieConfig, checks ...HealthCheck) *Handler {
	return &Handler{
		follows:   s.Follows,
		workouts:  s.Workouts,
		likes:     s.Likes,
		feed:      s.Feed,
		comments:  s.Comments,
		auth:      s.Auth,
		admin:     s.Admin,
		exercises: s.Exercises,
		cookie:    cookie,
		checks:    checks,
	}
}

func (h *Handler) setTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, token, int(maxAge/time.Second), "/", "", h.cookie.Secure, true)
}
