package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/gymfeed/config"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/pkg/database"
)

func setupBenchDB(b *testing.B) *gorm.DB {
	db, err := database.Open(config.Database{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		b.Fatalf("migrate: %v", err)
	}
	return db
}

func seedBenchUsers(b *testing.B, db *gorm.DB, n int) []model.User {
	now := time.Now().UTC()
	users := make([]model.User, n)
	for i := range users {
		id := fmt.Sprintf("u%05d", i)
		users[i] = model.User{ID: id, Username: id, Email: id + "@example.com", Password: "p", Role: model.RoleUser, CreatedAt: now, UpdatedAt: now}
	}
	if err := db.CreateInBatches(&users, 500).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}
	return users
}

func BenchmarkFollowWrite(b *testing.B) {
	db := setupBenchDB(b)
	follows := NewFollowRepository(db)
	ctx := context.Background()
	users := seedBenchUsers(b, db, 1000)

	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rng.Intn(len(users))].ID
		to := users[rng.Intn(len(users))].ID
		if from == to {
			continue
		}
		// 重复边返回 ErrDuplicate，同样计入耗时
		_ = follows.Create(ctx, &model.Follow{ID: uuid.NewString(), FollowerID: from, FollowingID: to, CreatedAt: time.Now().UTC()})
	}
}

// 构造：viewer 关注 F 个人，每人 P 条训练，每条若干点赞
func BenchmarkFeedQueries(b *testing.B) {
	const (
		F = 200
		P = 20
	)
	db := setupBenchDB(b)
	follows := NewFollowRepository(db)
	workouts := NewWorkoutRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	users := seedBenchUsers(b, db, F+1)
	viewer := users[0].ID
	base := time.Now().UTC().Add(-time.Duration(F*P) * time.Minute)
	rows := make([]model.Workout, 0, F*P)
	for i, u := range users[1:] {
		if err := follows.Create(ctx, &model.Follow{ID: uuid.NewString(), FollowerID: viewer, FollowingID: u.ID, CreatedAt: base}); err != nil {
			b.Fatalf("follow: %v", err)
		}
		for j := 0; j < P; j++ {
			at := base.Add(time.Duration(i*P+j) * time.Minute)
			rows = append(rows, model.Workout{
				ID: uuid.NewString(), OwnerID: u.ID, Title: "w", StartTime: at, Duration: 45,
				Exercises: []model.ExerciseEntry{{ExerciseID: "squat", Sets: []model.WorkoutSet{{Weight: 100, Reps: 5}}}},
				CreatedAt: at, UpdatedAt: at,
			})
		}
	}
	if err := db.CreateInBatches(&rows, 500).Error; err != nil {
		b.Fatalf("seed workouts: %v", err)
	}
	for i := 0; i < len(rows); i += 7 {
		if _, err := likes.Toggle(ctx, rows[i].ID, users[1+i%F].ID); err != nil {
			b.Fatalf("like: %v", err)
		}
	}

	visible, err := follows.ListFollowingIDs(ctx, viewer)
	if err != nil {
		b.Fatalf("following: %v", err)
	}
	visible = append(visible, viewer)

	b.ResetTimer()
	b.Run("ListFollowingIDs", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = follows.ListFollowingIDs(ctx, viewer)
		}
	})

	b.Run("CountAndFirstPage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = workouts.CountByOwners(ctx, visible)
			_, _ = workouts.PageByOwners(ctx, visible, 0, 20)
		}
	})

	b.Run("DeepPage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = workouts.PageByOwners(ctx, visible, (F*P)/2, 20)
		}
	})

	b.Run("LikesForPage", func(b *testing.B) {
		page, _ := workouts.PageByOwners(ctx, visible, 0, 20)
		ids := make([]string, len(page))
		for i, w := range page {
			ids[i] = w.ID
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = likes.ListByWorkouts(ctx, ids)
		}
	})
}
