package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/repository"
)

type SetInput struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

type ExerciseInput struct {
	Exercise string     `json:"exercise"`
	Sets     []SetInput `json:"sets"`
}

type CreateWorkoutInput struct {
	Title     string          `json:"title"`
	StartTime *time.Time      `json:"startTime"`
	EndTime   *time.Time      `json:"endTime"`
	Exercises []ExerciseInput `json:"exercises"`
}

type WorkoutService interface {
	Create(ctx context.Context, ownerID string, in CreateWorkoutInput) (*WorkoutView, error)
	GetByID(ctx context.Context, workoutID string) (*WorkoutView, error)
	ListByOwner(ctx context.Context, ownerID string) ([]WorkoutView, error)
	Delete(ctx context.Context, workoutID, requesterID string) error
}

type workoutService struct {
	stores *Stores
	dir    *Directory
}

func NewWorkoutService(stores *Stores, dir *Directory) WorkoutService {
	return &workoutService{stores: stores, dir: dir}
}

func (in CreateWorkoutInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || in.StartTime == nil || in.EndTime == nil || len(in.Exercises) == 0 {
		return ErrMissingFields
	}
	if in.EndTime.Before(*in.StartTime) {
		return Validation("endTime must not be before startTime")
	}
	for i, e := range in.Exercises {
		if strings.TrimSpace(e.Exercise) == "" {
			return Validation(fmt.Sprintf("exercise #%d: missing exercise reference", i+1))
		}
		for j, st := range e.Sets {
			if st.Weight < 0 {
				return Validation(fmt.Sprintf("exercise #%d set #%d: weight must be >= 0", i+1, j+1))
			}
			if st.Reps < 1 {
				return Validation(fmt.Sprintf("exercise #%d set #%d: reps must be >= 1", i+1, j+1))
			}
		}
	}
	return nil
}

func (s *workoutService) Create(ctx context.Context, ownerID string, in CreateWorkoutInput) (*WorkoutView, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	entries := make([]model.ExerciseEntry, len(in.Exercises))
	for i, e := range in.Exercises {
		sets := make([]model.WorkoutSet, len(e.Sets))
		for j, st := range e.Sets {
			sets[j] = model.WorkoutSet{Weight: st.Weight, Reps: st.Reps}
		}
		entries[i] = model.ExerciseEntry{ExerciseID: strings.TrimSpace(e.Exercise), Sets: sets}
	}

	var w *model.Workout
	err := s.stores.Tx(ctx, func(tx *txStores) error {
		w = &model.Workout{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			Title:     strings.TrimSpace(in.Title),
			StartTime: in.StartTime.UTC(),
			Duration:  int(in.EndTime.Sub(*in.StartTime) / time.Minute),
			Exercises: entries,
			CreatedAt: tx.now,
			UpdatedAt: tx.now,
		}
		if err := tx.workouts.Create(ctx, w); err != nil {
			return err
		}
		return tx.emit(ctx, events.WorkoutCreated, w.ID, events.WorkoutPayload{WorkoutID: w.ID, OwnerID: ownerID, Title: w.Title})
	})
	if err != nil {
		return nil, err
	}
	return s.dir.assembleWorkout(ctx, w, []string{})
}

func (s *workoutService) GetByID(ctx context.Context, workoutID string) (*WorkoutView, error) {
	if !validID(workoutID) {
		return nil, ErrInvalidID
	}
	w, err := s.stores.Workouts.GetByID(ctx, workoutID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	likes, err := s.stores.Likes.ListUserIDs(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return s.dir.assembleWorkout(ctx, w, likes)
}

func (s *workoutService) ListByOwner(ctx context.Context, ownerID string) ([]WorkoutView, error) {
	rows, err := s.stores.Workouts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, w := range rows {
		ids[i] = w.ID
	}
	likes, err := s.stores.Likes.ListByWorkouts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.dir.assembleWorkouts(ctx, rows, likes)
}

// Delete 只允许所有者删除（管理员也不行），评论与点赞同事务级联删除
func (s *workoutService) Delete(ctx context.Context, workoutID, requesterID string) error {
	if requesterID == "" {
		return ErrUnauthenticated
	}
	if !validID(workoutID) {
		return ErrInvalidID
	}
	w, err := s.stores.Workouts.GetByID(ctx, workoutID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	if err != nil {
		return err
	}
	if err := RequireOwnerOrRole(w.OwnerID, requesterID, ""); err != nil {
		return err
	}

	err = s.stores.Tx(ctx, func(tx *txStores) error {
		ids := []string{w.ID}
		if err := tx.comments.DeleteByWorkouts(ctx, ids); err != nil {
			return err
		}
		if err := tx.likes.DeleteByWorkouts(ctx, ids); err != nil {
			return err
		}
		if err := tx.workouts.Delete(ctx, w.ID); err != nil {
			return err
		}
		return tx.emit(ctx, events.WorkoutDeleted, w.ID, events.WorkoutPayload{WorkoutID: w.ID, OwnerID: w.OwnerID})
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	return err
}
