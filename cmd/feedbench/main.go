// feedbench 测量发布延迟、outbox 投递延迟，以及有无 redis 时的动态流读取延迟
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/d60-Lab/gymfeed/config"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/service"
	"github.com/d60-Lab/gymfeed/pkg/cache"
	"github.com/d60-Lab/gymfeed/pkg/database"
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

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	k = max(0, min(k, len(xs)-1))
	return xs[k]
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range vs {
		sum += d
	}
	return sum / time.Duration(len(vs))
}

// countingWriter 代替 kafka，只统计收到的消息数
type countingWriter struct{ n atomic.Int64 }

func (w *countingWriter) WriteMessages(_ context.Context, _ string, msgs ...kafka.Message) error {
	w.n.Add(int64(len(msgs)))
	return nil
}

func (w *countingWriter) Close() error { return nil }

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	if err := db.AutoMigrate(model.All()...); err != nil {
		panic(err)
	}

	N := envInt("N", 2000)        // followers of the author
	POSTS := envInt("POSTS", 200) // workouts published by the author
	READS := envInt("READS", 2000)
	WORKERS := envInt("WORKERS", 4)
	BATCH := envInt("BATCH", 200)

	// seed one author and N followers
	now := time.Now().UTC()
	author := model.User{ID: uuid.NewString(), Username: "author-" + uuid.NewString()[:8], Role: model.RoleUser, CreatedAt: now, UpdatedAt: now}
	author.Email = author.Username + "@bench.local"
	if err := db.Create(&author).Error; err != nil {
		panic(err)
	}
	users := make([]model.User, N)
	edges := make([]model.Follow, N)
	for i := range users {
		id := uuid.NewString()
		users[i] = model.User{ID: id, Username: "u" + id[:12], Email: id[:12] + "@bench.local", Role: model.RoleUser, CreatedAt: now, UpdatedAt: now}
		edges[i] = model.Follow{ID: uuid.NewString(), FollowerID: id, FollowingID: author.ID, CreatedAt: now}
	}
	if err := db.CreateInBatches(&users, 1000).Error; err != nil {
		panic(err)
	}
	if err := db.CreateInBatches(&edges, 1000).Error; err != nil {
		panic(err)
	}

	stores := service.NewStores(db)
	plainDir := service.NewDirectory(stores.Users, stores.Exercises, nil, 0, 0)
	workouts := service.NewWorkoutService(stores, plainDir)

	writer := &countingWriter{}
	relay := service.NewOutboxRelay(stores.Outbox, writer, "bench", WORKERS, BATCH, 10*time.Millisecond)
	stop := relay.Start()
	defer func() { _ = stop(context.Background()) }()

	// publish
	start := time.Now()
	pub := make([]time.Duration, 0, POSTS)
	for i := 0; i < POSTS; i++ {
		st := time.Now()
		begin := st.Add(-time.Hour)
		end := st.Add(-10 * time.Minute)
		must(workouts.Create(ctx, author.ID, service.CreateWorkoutInput{
			Title:     fmt.Sprintf("bench %d", i),
			StartTime: &begin,
			EndTime:   &end,
			Exercises: []service.ExerciseInput{{Exercise: "bench-press", Sets: []service.SetInput{{Weight: 100, Reps: 5}}}},
		}))
		pub = append(pub, time.Since(st))
	}

	// wait for outbox delivery
	deadline := time.After(2 * time.Minute)
	for writer.n.Load() < int64(POSTS) {
		select {
		case <-deadline:
			fmt.Printf("timeout waiting for outbox: delivered=%d want=%d\n", writer.n.Load(), POSTS)
			goto READS
		case <-time.After(5 * time.Millisecond):
		}
	}
	fmt.Printf("N=%d POSTS=%d WORKERS=%d BATCH=%d\n", N, POSTS, WORKERS, BATCH)
	fmt.Printf("Publish tx latency: avg=%v p95=%v p99=%v\n", avg(pub), pct(pub, 0.95), pct(pub, 0.99))
	fmt.Printf("Outbox drained in %v\n", time.Since(start))

READS:
	run := func(name string, rdb *redis.Client) {
		if rdb != nil {
			_ = rdb.FlushDB(ctx).Err()
		}
		dir := service.NewDirectory(stores.Users, stores.Exercises, rdb, time.Minute, time.Hour)
		feed := service.NewFeedService(stores, dir, service.NewFollowingCache(stores.Follows, cache.New(rdb), time.Minute), 20, 50)
		out := make([]time.Duration, 0, READS)
		for i := 0; i < READS; i++ {
			viewer := users[i%len(users)].ID
			st := time.Now()
			if _, err := feed.GetFeed(ctx, viewer, 1+i%3, 20); err != nil {
				panic(err)
			}
			out = append(out, time.Since(st))
		}
		userLoads, exLoads := dir.Counters()
		fmt.Printf("%-10s feed read: avg=%v p95=%v p99=%v db_user_loads=%d db_exercise_loads=%d\n",
			name, avg(out), pct(out, 0.95), pct(out, 0.99), userLoads, exLoads)
	}

	run("no-cache", nil)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" || cfg.Redis.Enabled {
		if addr == "" {
			addr = cfg.Redis.Addr
		}
		rdb := cache.NewClient(addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			fmt.Printf("redis %s unavailable: %v\n", addr, err)
			return
		}
		run("redis", rdb)
	}
}
