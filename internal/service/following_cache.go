package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/internal/repository"
	"github.com/d60-Lab/gymfeed/pkg/cache"
	"github.com/d60-Lab/gymfeed/pkg/logger"
)

// FollowingCache 缓存“我关注的人”id 列表，关注/取关后同步失效
type FollowingCache struct {
	follows repository.FollowRepository
	cache   *cache.Cache
	ttl     time.Duration
}

func NewFollowingCache(follows repository.FollowRepository, c *cache.Cache, ttl time.Duration) *FollowingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FollowingCache{follows: follows, cache: c, ttl: ttl}
}

func followingKey(userID string) string { return fmt.Sprintf("following:ids:%s", userID) }

func (f *FollowingCache) IDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := cache.GetOrLoadJSON(f.cache, ctx, followingKey(userID), f.ttl, func(ctx context.Context) ([]string, error) {
		return f.follows.ListFollowingIDs(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (f *FollowingCache) Invalidate(ctx context.Context, userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, followingKey(id))
	}
	if err := f.cache.Del(ctx, keys...); err != nil {
		logger.Warn("following cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
