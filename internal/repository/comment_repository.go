package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/gymfeed/internal/model"
)

type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByWorkout(ctx context.Context, workoutID string) ([]*model.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByWorkouts(ctx context.Context, workoutIDs []string) error
	DeleteByAuthor(ctx context.Context, authorID string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository { return &commentRepository{db: tx} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepository) ListByWorkout(ctx context.Context, workoutID string) ([]*model.Comment, error) {
	res := []*model.Comment{}
	err := r.db.WithContext(ctx).
		Where("workout_id = ?", workoutID).
		Order("created_at DESC, id DESC").
		Find(&res).Error
	return res, err
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) DeleteByWorkouts(ctx context.Context, workoutIDs []string) error {
	if len(workoutIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("workout_id IN ?", workoutIDs).Delete(&model.Comment{}).Error
}

func (r *commentRepository) DeleteByAuthor(ctx context.Context, authorID string) error {
	return r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&model.Comment{}).Error
}
