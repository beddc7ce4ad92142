package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/repository"
)

var tracer = otel.Tracer("github.com/d60-Lab/gymfeed/internal/service")

// EngagementService 点赞：纯翻转，没有单独的“点赞/取消”接口
type EngagementService interface {
	ToggleLike(ctx context.Context, workoutID, userID string) (*WorkoutView, bool, error)
}

type engagementService struct {
	stores *Stores
	dir    *Directory
}

func NewEngagementService(stores *Stores, dir *Directory) EngagementService {
	return &engagementService{stores: stores, dir: dir}
}

// ToggleLike 在事务内锁住训练记录行后对成员行 DELETE/INSERT，不做整对象读改写
func (s *engagementService) ToggleLike(ctx context.Context, workoutID, userID string) (view *WorkoutView, liked bool, err error) {
	ctx, span := tracer.Start(ctx, "engagement.ToggleLike",
		trace.WithAttributes(attribute.String("workout.id", workoutID), attribute.String("user.id", userID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if userID == "" {
		return nil, false, ErrUnauthenticated
	}
	if !validID(workoutID) {
		return nil, false, ErrInvalidID
	}

	var (
		w     *model.Workout
		likes []string
	)
	err = s.stores.Tx(ctx, func(tx *txStores) error {
		var err error
		if w, err = tx.workouts.GetForUpdate(ctx, workoutID); err != nil {
			return err
		}
		if liked, err = tx.likes.Toggle(ctx, workoutID, userID); err != nil {
			return err
		}
		if likes, err = tx.likes.ListUserIDs(ctx, workoutID); err != nil {
			return err
		}
		eventType := events.WorkoutUnliked
		if liked {
			eventType = events.WorkoutLiked
		}
		return tx.emit(ctx, eventType, workoutID, events.LikePayload{WorkoutID: workoutID, OwnerID: w.OwnerID, UserID: userID})
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, false, err
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	likeToggles.WithLabelValues(state).Inc()
	span.SetAttributes(attribute.Bool("like.liked", liked), attribute.Int("like.count", len(likes)))

	view, err = s.dir.assembleWorkout(ctx, w, likes)
	if err != nil {
		return nil, false, err
	}
	return view, liked, nil
}
