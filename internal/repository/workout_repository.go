package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/pkg/database"
)

type WorkoutRepository interface {
	WithTx(tx *gorm.DB) WorkoutRepository
	Create(ctx context.Context, w *model.Workout) error
	GetByID(ctx context.Context, id string) (*model.Workout, error)
	// GetForUpdate 读取并锁定训练记录行（仅 PostgreSQL 加行锁）
	GetForUpdate(ctx context.Context, id string) (*model.Workout, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Workout, error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	CountByOwners(ctx context.Context, ownerIDs []string) (int64, error)
	PageByOwners(ctx context.Context, ownerIDs []string, offset, limit int) ([]*model.Workout, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type workoutRepository struct {
	db *gorm.DB
}

func NewWorkoutRepository(db *gorm.DB) WorkoutRepository { return &workoutRepository{db: db} }

func (r *workoutRepository) WithTx(tx *gorm.DB) WorkoutRepository { return &workoutRepository{db: tx} }

func (r *workoutRepository) Create(ctx context.Context, w *model.Workout) error {
	return translate(r.db.WithContext(ctx).Create(w).Error)
}

func (r *workoutRepository) GetByID(ctx context.Context, id string) (*model.Workout, error) {
	var w model.Workout
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *workoutRepository) GetForUpdate(ctx context.Context, id string) (*model.Workout, error) {
	q := r.db.WithContext(ctx)
	if database.IsPostgres(r.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var w model.Workout
	if err := q.Where("id = ?", id).First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *workoutRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Workout, error) {
	var res []*model.Workout
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&res).Error
	return res, err
}

func (r *workoutRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&model.Workout{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, err
}

func (r *workoutRepository) CountByOwners(ctx context.Context, ownerIDs []string) (int64, error) {
	if len(ownerIDs) == 0 {
		return 0, nil
	}
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Workout{}).Where("owner_id IN ?", ownerIDs).Count(&cnt).Error
	return cnt, err
}

// PageByOwners 按 created_at DESC, id DESC 分页，id 作为同一时间戳下的稳定次序
func (r *workoutRepository) PageByOwners(ctx context.Context, ownerIDs []string, offset, limit int) ([]*model.Workout, error) {
	res := []*model.Workout{}
	if len(ownerIDs) == 0 {
		return res, nil
	}
	err := r.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *workoutRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Workout{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workoutRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&model.Workout{}).Error
}
