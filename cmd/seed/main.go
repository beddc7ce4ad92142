package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/config"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/service"
	"github.com/d60-Lab/gymfeed/pkg/auth"
	"github.com/d60-Lab/gymfeed/pkg/database"
	"github.com/d60-Lab/gymfeed/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

var catalog = []*model.Exercise{
	{Slug: "barbell-back-squat", Title: "Barbell Back Squat", Type: "weight_reps", PrimaryMuscle: "quadriceps", Difficulty: "intermediate", Equipment: []string{"barbell", "rack"}},
	{Slug: "bench-press", Title: "Bench Press", Type: "weight_reps", PrimaryMuscle: "chest", Difficulty: "intermediate", Equipment: []string{"barbell", "bench"}},
	{Slug: "deadlift", Title: "Deadlift", Type: "weight_reps", PrimaryMuscle: "hamstrings", Difficulty: "advanced", Equipment: []string{"barbell"}},
	{Slug: "overhead-press", Title: "Overhead Press", Type: "weight_reps", PrimaryMuscle: "shoulders", Difficulty: "intermediate", Equipment: []string{"barbell"}},
	{Slug: "pull-up", Title: "Pull-up", Type: "bodyweight", PrimaryMuscle: "lats", Difficulty: "intermediate", Equipment: []string{"pull-up bar"}},
	{Slug: "plank", Title: "Plank", Type: "time_based", PrimaryMuscle: "abs", Difficulty: "beginner"},
}

// seed 通过服务层写入演示数据：动作目录、用户、关注关系、训练、点赞与评论
func main() {
	cfg := must(config.Load())
	logger.Init(cfg.Log)
	defer logger.Sync()
	db := must(database.InitDB(cfg))
	if err := db.AutoMigrate(model.All()...); err != nil {
		panic(err)
	}

	ctx := context.Background()
	stores := service.NewStores(db)
	dir := service.NewDirectory(stores.Users, stores.Exercises, nil, 0, 0)
	following := service.NewFollowingCache(stores.Follows, nil, 0)
	authSvc := service.NewAuthService(stores, auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL))
	follows := service.NewFollowService(stores, dir, following)
	workouts := service.NewWorkoutService(stores, dir)
	likes := service.NewEngagementService(stores, dir)
	comments := service.NewCommentService(stores, dir)
	exercises := service.NewExerciseService(stores)

	USERS := envInt("USERS", 20)
	WORKOUTS := envInt("WORKOUTS", 5)
	FOLLOWS := envInt("FOLLOWS", 5)
	rng := rand.New(rand.NewSource(int64(envInt("SEED", 42))))

	for _, e := range catalog {
		e.ID = uuid.NewString()
	}
	if err := exercises.Seed(ctx, catalog); err != nil {
		panic(err)
	}
	// Seed 遇到已存在的 slug 不覆盖，重新读取拿到真实 id
	list := must(exercises.List(ctx))

	users := make([]*model.User, 0, USERS)
	for i := 0; i < USERS; i++ {
		name := fmt.Sprintf("lifter%03d", i)
		u, _, err := authSvc.Signup(ctx, service.SignupInput{Username: name, Email: name + "@example.com", Password: "password"})
		if errors.Is(err, service.ErrEmailTaken) || errors.Is(err, service.ErrUsernameTaken) {
			logger.Info("user exists, skipping", zap.String("username", name))
			continue
		}
		if err != nil {
			panic(err)
		}
		users = append(users, u)
	}

	edges := 0
	for _, u := range users {
		for _, j := range rng.Perm(len(users))[:min(FOLLOWS, len(users))] {
			if users[j].ID == u.ID {
				continue
			}
			if err := follows.Follow(ctx, u.ID, users[j].ID); err == nil {
				edges++
			}
		}
	}

	posted := make([]string, 0, len(users)*WORKOUTS)
	base := time.Now().UTC().Add(-time.Duration(WORKOUTS) * 24 * time.Hour)
	for _, u := range users {
		for k := 0; k < WORKOUTS; k++ {
			start := base.Add(time.Duration(k)*24*time.Hour + time.Duration(rng.Intn(12))*time.Hour)
			end := start.Add(time.Duration(30+rng.Intn(60)) * time.Minute)
			var ex []service.ExerciseInput
			for _, idx := range rng.Perm(len(list))[:min(3, len(list))] {
				sets := make([]service.SetInput, 3)
				for s := range sets {
					sets[s] = service.SetInput{Weight: float64(20 + rng.Intn(100)), Reps: 5 + rng.Intn(6)}
				}
				ex = append(ex, service.ExerciseInput{Exercise: list[idx].ID, Sets: sets})
			}
			w := must(workouts.Create(ctx, u.ID, service.CreateWorkoutInput{
				Title:     fmt.Sprintf("Session %d", k+1),
				StartTime: &start,
				EndTime:   &end,
				Exercises: ex,
			}))
			posted = append(posted, w.ID)
		}
	}

	reactions := 0
	for _, id := range posted {
		if len(users) == 0 {
			break
		}
		u := users[rng.Intn(len(users))]
		if _, _, err := likes.ToggleLike(ctx, id, u.ID); err == nil {
			reactions++
		}
		if rng.Intn(3) == 0 {
			if _, err := comments.AddComment(ctx, u.ID, id, "Solid session 💪"); err == nil {
				reactions++
			}
		}
	}

	logger.Info("seed done",
		zap.Int("exercises", len(list)),
		zap.Int("users", len(users)),
		zap.Int("follows", edges),
		zap.Int("workouts", len(posted)),
		zap.Int("reactions", reactions),
	)
}
