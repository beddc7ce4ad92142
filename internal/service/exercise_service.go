package service

import (
	"context"

	"github.com/d60-Lab/gymfeed/internal/model"
)

type ExerciseService interface {
	List(ctx context.Context) ([]*model.Exercise, error)
	Seed(ctx context.Context, items []*model.Exercise) error
}

type exerciseService struct {
	stores *Stores
}

func NewExerciseService(stores *Stores) ExerciseService {
	return &exerciseService{stores: stores}
}

// List 只返回系统内置动作
func (s *exerciseService) List(ctx context.Context) ([]*model.Exercise, error) {
	return s.stores.Exercises.List(ctx, false)
}

func (s *exerciseService) Seed(ctx context.Context, items []*model.Exercise) error {
	return s.stores.Exercises.Upsert(ctx, items)
}
