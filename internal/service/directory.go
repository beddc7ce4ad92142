package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/internal/repository"
	"github.com/d60-Lab/gymfeed/pkg/logger"
)

// UserSummary 是嵌入到训练、评论、关注列表里的作者快照
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
}

type exerciseSnapshot struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Directory 读时投影：批量解析用户快照与动作标题，redis MGET 命中优先，未命中回源数据库
type Directory struct {
	users       repository.UserRepository
	exercises   repository.ExerciseRepository
	cache       *redis.Client
	userTTL     time.Duration
	exerciseTTL time.Duration

	userLoads     atomic.Int64
	exerciseLoads atomic.Int64
}

func NewDirectory(users repository.UserRepository, exercises repository.ExerciseRepository, cache *redis.Client, userTTL, exerciseTTL time.Duration) *Directory {
	if userTTL <= 0 {
		userTTL = 30 * time.Second
	}
	if exerciseTTL <= 0 {
		exerciseTTL = time.Hour
	}
	return &Directory{users: users, exercises: exercises, cache: cache, userTTL: userTTL, exerciseTTL: exerciseTTL}
}

func userKey(id string) string     { return fmt.Sprintf("user:%s", id) }
func exerciseKey(id string) string { return fmt.Sprintf("exercise:%s", id) }

// Users 返回 id -> 快照；不存在的用户不出现在结果里
func (d *Directory) Users(ctx context.Context, ids []string) (map[string]UserSummary, error) {
	ids = dedupe(ids)
	out := make(map[string]UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	d.mget(ctx, ids, userKey, func(id string, raw []byte) {
		var snap UserSummary
		if json.Unmarshal(raw, &snap) == nil {
			out[id] = snap
		}
	})

	missing := missingKeys(ids, out)
	if len(missing) == 0 {
		return out, nil
	}
	d.userLoads.Add(1)
	directoryLoads.WithLabelValues("user").Inc()
	users, err := d.users.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	fresh := make(map[string]any, len(users))
	for _, u := range users {
		snap := UserSummary{ID: u.ID, Username: u.Username, ProfilePic: u.ProfilePic}
		out[u.ID] = snap
		fresh[userKey(u.ID)] = snap
	}
	d.store(ctx, fresh, d.userTTL)
	return out, nil
}

// ExerciseTitles 返回动作 id -> 标题
func (d *Directory) ExerciseTitles(ctx context.Context, ids []string) (map[string]string, error) {
	ids = dedupe(ids)
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	d.mget(ctx, ids, exerciseKey, func(id string, raw []byte) {
		var snap exerciseSnapshot
		if json.Unmarshal(raw, &snap) == nil {
			out[id] = snap.Title
		}
	})

	missing := missingKeys(ids, out)
	if len(missing) == 0 {
		return out, nil
	}
	d.exerciseLoads.Add(1)
	directoryLoads.WithLabelValues("exercise").Inc()
	items, err := d.exercises.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	fresh := make(map[string]any, len(items))
	for _, e := range items {
		out[e.ID] = e.Title
		fresh[exerciseKey(e.ID)] = exerciseSnapshot{ID: e.ID, Title: e.Title}
	}
	d.store(ctx, fresh, d.exerciseTTL)
	return out, nil
}

// InvalidateUser 用户名或头像变更后调用
func (d *Directory) InvalidateUser(ctx context.Context, ids ...string) {
	if d.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	if err := d.cache.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("directory invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Counters reports how many database fallbacks were executed.
func (d *Directory) Counters() (userLoads, exerciseLoads int64) {
	return d.userLoads.Load(), d.exerciseLoads.Load()
}

func (d *Directory) mget(ctx context.Context, ids []string, key func(string) string, fn func(id string, raw []byte)) {
	if d.cache == nil {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	vals, err := d.cache.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("directory mget failed", zap.Error(err))
		return
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			fn(ids[i], []byte(str))
		}
	}
}

func (d *Directory) store(ctx context.Context, items map[string]any, ttl time.Duration) {
	if d.cache == nil || len(items) == 0 {
		return
	}
	pipe := d.cache.Pipeline()
	for k, v := range items {
		payload, err := json.Marshal(v)
		if err != nil {
			continue
		}
		pipe.Set(ctx, k, payload, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("directory cache fill failed", zap.Error(err))
	}
}

func missingKeys[V any](ids []string, have map[string]V) []string {
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
