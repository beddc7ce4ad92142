package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gymfeed/internal/model"
)

type ExerciseRepository interface {
	List(ctx context.Context, includeCustom bool) ([]*model.Exercise, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Exercise, error)
	// Upsert 按 slug 幂等写入，已存在的不覆盖
	Upsert(ctx context.Context, items []*model.Exercise) error
}

type exerciseRepository struct {
	db *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) ExerciseRepository { return &exerciseRepository{db: db} }

func (r *exerciseRepository) List(ctx context.Context, includeCustom bool) ([]*model.Exercise, error) {
	res := []*model.Exercise{}
	q := r.db.WithContext(ctx).Order("title, id")
	if !includeCustom {
		q = q.Where("is_custom = ?", false)
	}
	err := q.Find(&res).Error
	return res, err
}

func (r *exerciseRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Exercise, error) {
	res := []*model.Exercise{}
	if len(ids) == 0 {
		return res, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *exerciseRepository) Upsert(ctx context.Context, items []*model.Exercise) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&items).Error
}
