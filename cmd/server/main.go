// @title gymfeed API
// @version 1.0
// @description Social workout feed: follows, workouts, likes, comments.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/config"
	"github.com/d60-Lab/gymfeed/internal/api"
	"github.com/d60-Lab/gymfeed/internal/api/handler"
	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/service"
	"github.com/d60-Lab/gymfeed/pkg/auth"
	"github.com/d60-Lab/gymfeed/pkg/cache"
	"github.com/d60-Lab/gymfeed/pkg/database"
	"github.com/d60-Lab/gymfeed/pkg/logger"
	"github.com/d60-Lab/gymfeed/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	l := logger.Init(cfg.Log)
	defer logger.Sync()

	sentryOn := cfg.Sentry.DSN != ""
	if sentryOn {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
			sentryOn = false
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("tracing init", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(model.All()...); err != nil {
			logger.Fatal("auto migrate", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// redis 只是读缓存，不可用时直接回源数据库
			logger.Warn("redis unavailable, caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		}
	}

	var producer events.Writer = events.LogProducer{}
	if cfg.Kafka.Enabled {
		producer = events.NewKafkaProducer(cfg.Kafka.Brokers)
	}

	stores := service.NewStores(db)
	dir := service.NewDirectory(stores.Users, stores.Exercises, rdb, cfg.Feed.UserTTL, cfg.Feed.ExerciseTTL)
	following := service.NewFollowingCache(stores.Follows, cache.New(rdb), cfg.Feed.FollowingTTL)
	authSvc := service.NewAuthService(stores, auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL))

	relay := service.NewOutboxRelay(stores.Outbox, producer, cfg.Kafka.Topic, cfg.Outbox.Workers, cfg.Outbox.BatchSize, cfg.Outbox.PollInterval)
	stopRelay := relay.Start()

	checks := []handler.HealthCheck{{Name: "database", Check: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}}
	if rdb != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	h := handler.New(handler.Services{
		Follows:   service.NewFollowService(stores, dir, following),
		Workouts:  service.NewWorkoutService(stores, dir),
		Likes:     service.NewEngagementService(stores, dir),
		Feed:      service.NewFeedService(stores, dir, following, cfg.Feed.PageSize, cfg.Feed.MaxPageSize),
		Comments:  service.NewCommentService(stores, dir),
		Auth:      authSvc,
		Admin:     service.NewAdminService(stores, dir, following),
		Exercises: service.NewExerciseService(stores),
	}, handler.CookieConfig{MaxAge: cfg.JWT.TTL, Secure: cfg.Server.Mode == "release"}, checks...)

	router := api.NewRouter(h, authSvc, l, api.Options{
		Mode:          cfg.Server.Mode,
		ServiceName:   cfg.Tracing.ServiceName,
		CORSOrigins:   cfg.Server.CORSOrigins,
		RateLimitRPS:  cfg.Server.RateLimitRPS,
		RateBurst:     cfg.Server.RateBurst,
		SentryEnabled: sentryOn,
		Swagger:       cfg.Server.Mode != "release",
	})

	srv := &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go func() {
		logger.Info("http starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	// 先停 relay 再关 producer，避免关闭后仍在投递
	if err := stopRelay(shutdownCtx); err != nil {
		logger.Error("outbox relay stop", zap.Error(err))
	}
	if err := producer.Close(); err != nil {
		logger.Error("producer close", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
