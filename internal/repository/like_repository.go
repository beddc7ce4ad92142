package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gymfeed/internal/model"
)

type LikeRepository interface {
	WithTx(tx *gorm.DB) LikeRepository
	// Toggle 翻转 (workout, user) 成员关系，返回翻转后的状态
	Toggle(ctx context.Context, workoutID, userID string) (bool, error)
	ListUserIDs(ctx context.Context, workoutID string) ([]string, error)
	ListByWorkouts(ctx context.Context, workoutIDs []string) (map[string][]string, error)
	DeleteByWorkouts(ctx context.Context, workoutIDs []string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) WithTx(tx *gorm.DB) LikeRepository { return &likeRepository{db: tx} }

// Toggle 先删；没删到再插入。插入带 ON CONFLICT DO NOTHING，并发下不会报主键冲突
func (r *likeRepository) Toggle(ctx context.Context, workoutID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("workout_id = ? AND user_id = ?", workoutID, userID).
		Delete(&model.WorkoutLike{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	like := &model.WorkoutLike{WorkoutID: workoutID, UserID: userID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *likeRepository) ListUserIDs(ctx context.Context, workoutID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.WorkoutLike{}).
		Where("workout_id = ?", workoutID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *likeRepository) ListByWorkouts(ctx context.Context, workoutIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(workoutIDs))
	if len(workoutIDs) == 0 {
		return out, nil
	}
	var rows []model.WorkoutLike
	if err := r.db.WithContext(ctx).
		Where("workout_id IN ?", workoutIDs).
		Order("workout_id, user_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, l := range rows {
		out[l.WorkoutID] = append(out[l.WorkoutID], l.UserID)
	}
	return out, nil
}

func (r *likeRepository) DeleteByWorkouts(ctx context.Context, workoutIDs []string) error {
	if len(workoutIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("workout_id IN ?", workoutIDs).Delete(&model.WorkoutLike{}).Error
}

func (r *likeRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.WorkoutLike{}).Error
}
