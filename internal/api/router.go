// Package api assembles the gin engine: middleware stack, routes and operational endpoints.
package api

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	_ "github.com/d60-Lab/gymfeed/docs"
	"github.com/d60-Lab/gymfeed/internal/api/handler"
	"github.com/d60-Lab/gymfeed/internal/api/middleware"
	"github.com/d60-Lab/gymfeed/internal/service"
)

type Options struct {
	Mode          string
	ServiceName   string
	CORSOrigins   []string
	RateLimitRPS  float64
	RateBurst     int
	SentryEnabled bool
	Swagger       bool
}

func NewRouter(h *handler.Handler, authSvc service.AuthService, l *zap.Logger, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		l.Warn("register validators", zap.Error(err))
	}
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(ginzap.GinzapWithConfig(l, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", c.GetString(middleware.KeyRequestID))}
		},
	}))
	r.Use(ginzap.RecoveryWithZap(l, true))
	if opts.SentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(otelgin.Middleware(opts.ServiceName))
	r.Use(middleware.Metrics())
	// 未配置来源时不挂 cors，gin-contrib/cors 对空白名单会 panic
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.KeyRequestID},
			ExposeHeaders:    []string{middleware.KeyRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	if opts.RateLimitRPS > 0 {
		api.Use(middleware.RateLimitPerIP(rate.Limit(opts.RateLimitRPS), opts.RateBurst, 10*time.Minute))
	}
	authed := middleware.Auth(authSvc)

	authG := api.Group("/auth")
	{
		authG.POST("/signup", h.Signup)
		authG.POST("/login", h.Login)
		authG.POST("/logout", h.Logout)
		authG.GET("/check", authed, h.CheckAuth)
	}

	api.GET("/exercise/all-exercises", h.ListExercises)

	follow := api.Group("/follow")
	{
		follow.POST("/follow/:targetId", authed, h.Follow)
		follow.DELETE("/unfollow/:targetId", authed, h.Unfollow)
		follow.GET("/following/:userId", h.ListFollowing)
		follow.GET("/followers/:userId", h.ListFollowers)
	}

	workout := api.Group("/workout")
	{
		workout.POST("/save-workout", authed, h.CreateWorkout)
		workout.GET("/feed", authed, h.Feed)
		workout.GET("/user/:userId", authed, h.ListUserWorkouts)
		workout.POST("/like/:workoutId", authed, h.ToggleLike)
		workout.GET("/:workoutId", h.GetWorkout)
		workout.DELETE("/:workoutId", authed, h.DeleteWorkout)
	}

	comment := api.Group("/comment", authed)
	{
		comment.POST("/:workoutId", h.AddComment)
		comment.GET("/:workoutId", h.ListComments)
		comment.DELETE("/:commentId", h.DeleteComment)
	}

	admin := api.Group("/admin", authed, middleware.RequireAdmin())
	{
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:userId", h.UpdateUser)
		admin.DELETE("/users/:userId", h.DeleteUser)
	}
	return r
}
