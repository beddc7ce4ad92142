package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/repository"
)

// FollowService 关注关系：单向边，(follower, following) 唯一
type FollowService interface {
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	ListFollowing(ctx context.Context, userID string) ([]UserSummary, error)
	ListFollowers(ctx context.Context, userID string) ([]UserSummary, error)
}

type followService struct {
	stores    *Stores
	dir       *Directory
	following *FollowingCache
}

func NewFollowService(stores *Stores, dir *Directory, following *FollowingCache) FollowService {
	return &followService{stores: stores, dir: dir, following: following}
}

func (s *followService) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == "" {
		return ErrUnauthenticated
	}
	if followerID == targetID {
		return ErrSelfFollow
	}
	if !validID(targetID) {
		return ErrTargetNotFound
	}
	ok, err := s.stores.Users.Exists(ctx, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTargetNotFound
	}
	// 预检查只为给出更友好的提示，真正的唯一性由索引保证
	exists, err := s.stores.Follows.Exists(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFollowing
	}

	err = s.stores.Tx(ctx, func(tx *txStores) error {
		edge := &model.Follow{ID: uuid.NewString(), FollowerID: followerID, FollowingID: targetID, CreatedAt: tx.now}
		if err := tx.follows.Create(ctx, edge); err != nil {
			return err
		}
		return tx.emit(ctx, events.UserFollowed, followerID, events.FollowPayload{FollowerID: followerID, FollowingID: targetID})
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrAlreadyFollowing
	}
	if err != nil {
		return err
	}
	s.following.Invalidate(ctx, followerID)
	followChanges.WithLabelValues("follow").Inc()
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, targetID string) error {
	if followerID == "" {
		return ErrUnauthenticated
	}
	var removed bool
	err := s.stores.Tx(ctx, func(tx *txStores) error {
		ok, err := tx.follows.Delete(ctx, followerID, targetID)
		if err != nil || !ok {
			return err
		}
		removed = true
		return tx.emit(ctx, events.UserUnfollowed, followerID, events.FollowPayload{FollowerID: followerID, FollowingID: targetID})
	})
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFollowing
	}
	s.following.Invalidate(ctx, followerID)
	followChanges.WithLabelValues("unfollow").Inc()
	return nil
}

func (s *followService) ListFollowing(ctx context.Context, userID string) ([]UserSummary, error) {
	ids, err := s.stores.Follows.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.dir.summaries(ctx, ids)
}

func (s *followService) ListFollowers(ctx context.Context, userID string) ([]UserSummary, error) {
	ids, err := s.stores.Follows.ListFollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.dir.summaries(ctx, ids)
}
