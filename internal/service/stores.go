package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/repository"
)

// Stores 聚合各仓储与时钟，在 cmd/server 里初始化一次后注入各服务
type Stores struct {
	DB        *gorm.DB
	Users     repository.UserRepository
	Follows   repository.FollowRepository
	Workouts  repository.WorkoutRepository
	Likes     repository.LikeRepository
	Comments  repository.CommentRepository
	Exercises repository.ExerciseRepository
	Outbox    repository.OutboxRepository
	Now       func() time.Time
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		DB:        db,
		Users:     repository.NewUserRepository(db),
		Follows:   repository.NewFollowRepository(db),
		Workouts:  repository.NewWorkoutRepository(db),
		Likes:     repository.NewLikeRepository(db),
		Comments:  repository.NewCommentRepository(db),
		Exercises: repository.NewExerciseRepository(db),
		Outbox:    repository.NewOutboxRepository(db),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// txStores 是绑定到同一事务的仓储集合
type txStores struct {
	users    repository.UserRepository
	follows  repository.FollowRepository
	workouts repository.WorkoutRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	outbox   repository.OutboxRepository
	now      time.Time
}

// emit 把事件写入同事务的 outbox
func (t *txStores) emit(ctx context.Context, eventType, aggregateID string, data any) error {
	o, err := events.NewOutbox(eventType, aggregateID, data, t.now)
	if err != nil {
		return err
	}
	return t.outbox.Add(ctx, o)
}

// Tx 在一个事务里执行 fn；fn 内只能使用 txStores 里的仓储
func (s *Stores) Tx(ctx context.Context, fn func(tx *txStores) error) error {
	now := s.Now()
	return s.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&txStores{
			users:    s.Users.WithTx(db),
			follows:  s.Follows.WithTx(db),
			workouts: s.Workouts.WithTx(db),
			likes:    s.Likes.WithTx(db),
			comments: s.Comments.WithTx(db),
			outbox:   s.Outbox.WithTx(db),
			now:      now,
		})
	})
}
