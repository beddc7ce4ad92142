package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gymfeed/config"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/pkg/auth"
	"github.com/d60-Lab/gymfeed/pkg/cache"
	"github.com/d60-Lab/gymfeed/pkg/database"
)

type fixture struct {
	t   *testing.T
	ctx context.Context
	mr  *miniredis.Miniredis
	rdb *redis.Client

	stores    *Stores
	dir       *Directory
	following *FollowingCache

	follows   FollowService
	workouts  WorkoutService
	likes     EngagementService
	feed      FeedService
	comments  CommentService
	auth      AuthService
	admin     AdminService
	exercises ExerciseService

	mu    sync.Mutex
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(config.Database{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		mr:    mr,
		rdb:   rdb,
		clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	f.stores = NewStores(db)
	f.stores.Now = f.now
	f.dir = NewDirectory(f.stores.Users, f.stores.Exercises, rdb, time.Minute, time.Hour)
	f.following = NewFollowingCache(f.stores.Follows, cache.New(rdb), time.Minute)

	f.follows = NewFollowService(f.stores, f.dir, f.following)
	f.workouts = NewWorkoutService(f.stores, f.dir)
	f.likes = NewEngagementService(f.stores, f.dir)
	f.feed = NewFeedService(f.stores, f.dir, f.following, 5, 50)
	f.comments = NewCommentService(f.stores, f.dir)
	f.auth = NewAuthService(f.stores, auth.NewJWTer("test-secret", "gymfeed", time.Hour))
	f.admin = NewAdminService(f.stores, f.dir, f.following)
	f.exercises = NewExerciseService(f.stores)
	return f
}

// now 每次调用前进一秒，保证创建时间严格递增
func (f *fixture) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) user(name string) *model.User {
	return f.userWithRole(name, model.RoleUser)
}

func (f *fixture) userWithRole(name, role string) *model.User {
	f.t.Helper()
	now := f.now()
	u := &model.User{
		ID:         uuid.NewString(),
		Username:   name,
		Email:      name + "@example.com",
		Password:   "not-a-hash",
		Role:       role,
		ProfilePic: "https://img.example.com/" + name + ".png",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(f.t, f.stores.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) exercise(slug, title string) string {
	f.t.Helper()
	e := &model.Exercise{ID: uuid.NewString(), Slug: slug, Title: title, Type: "weight_reps"}
	require.NoError(f.t, f.exercises.Seed(f.ctx, []*model.Exercise{e}))
	return e.ID
}

func (f *fixture) workoutInput(title, exerciseID string) CreateWorkoutInput {
	start := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	return CreateWorkoutInput{
		Title:     title,
		StartTime: &start,
		EndTime:   &end,
		Exercises: []ExerciseInput{{Exercise: exerciseID, Sets: []SetInput{{Weight: 60, Reps: 5}}}},
	}
}

func (f *fixture) workout(ownerID, title string) *WorkoutView {
	f.t.Helper()
	w, err := f.workouts.Create(f.ctx, ownerID, f.workoutInput(title, "ex-unknown"))
	require.NoError(f.t, err)
	return w
}

func (f *fixture) follow(followerID, targetID string) {
	f.t.Helper()
	require.NoError(f.t, f.follows.Follow(f.ctx, followerID, targetID))
}

func (f *fixture) outboxCount(eventType string) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.stores.DB.Model(&model.Outbox{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}

func ids(views []WorkoutView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}
