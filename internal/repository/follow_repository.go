package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/gymfeed/internal/model"
)

type FollowRepository interface {
	WithTx(tx *gorm.DB) FollowRepository
	Create(ctx context.Context, f *model.Follow) error
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)
	ListFollowerIDs(ctx context.Context, followingID string) ([]string, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) WithTx(tx *gorm.DB) FollowRepository { return &followRepository{db: tx} }

// Create 依赖 (follower_id, following_id) 唯一索引，冲突返回 ErrDuplicate
func (r *followRepository) Create(ctx context.Context, f *model.Follow) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", followerID).
		Order("created_at, id").
		Pluck("following_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowerIDs(ctx context.Context, followingID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("following_id = ?", followingID).
		Order("created_at, id").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *followRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? OR following_id = ?", userID, userID).
		Delete(&model.Follow{}).Error
}
