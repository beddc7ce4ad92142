package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/repository"
)

type CommentService interface {
	AddComment(ctx context.Context, authorID, workoutID, content string) (*CommentView, error)
	ListComments(ctx context.Context, workoutID string) ([]CommentView, error)
	DeleteComment(ctx context.Context, commentID, requesterID, requesterRole string) error
}

type commentService struct {
	stores *Stores
	dir    *Directory
}

func NewCommentService(stores *Stores, dir *Directory) CommentService {
	return &commentService{stores: stores, dir: dir}
}

func (s *commentService) AddComment(ctx context.Context, authorID, workoutID, content string) (*CommentView, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}
	if !validID(workoutID) {
		return nil, ErrInvalidID
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var c *model.Comment
	err := s.stores.Tx(ctx, func(tx *txStores) error {
		// 锁住训练记录，与删除互斥，避免留下孤儿评论
		if _, err := tx.workouts.GetForUpdate(ctx, workoutID); err != nil {
			return err
		}
		c = &model.Comment{ID: uuid.NewString(), WorkoutID: workoutID, AuthorID: authorID, Content: content, CreatedAt: tx.now}
		if err := tx.comments.Create(ctx, c); err != nil {
			return err
		}
		return tx.emit(ctx, events.CommentCreated, c.ID, events.CommentPayload{CommentID: c.ID, WorkoutID: workoutID, AuthorID: authorID})
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	commentChanges.WithLabelValues("add").Inc()

	views, err := s.dir.assembleComments(ctx, []*model.Comment{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *commentService) ListComments(ctx context.Context, workoutID string) ([]CommentView, error) {
	if !validID(workoutID) {
		return nil, ErrInvalidID
	}
	rows, err := s.stores.Comments.ListByWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return s.dir.assembleComments(ctx, rows)
}

// DeleteComment 作者本人或管理员可删
func (s *commentService) DeleteComment(ctx context.Context, commentID, requesterID, requesterRole string) error {
	if requesterID == "" {
		return ErrUnauthenticated
	}
	if !validID(commentID) {
		return ErrInvalidID
	}
	c, err := s.stores.Comments.GetByID(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if err := RequireOwnerOrRole(c.AuthorID, requesterID, requesterRole, model.RoleAdmin); err != nil {
		return err
	}
	err = s.stores.Tx(ctx, func(tx *txStores) error {
		if err := tx.comments.Delete(ctx, c.ID); err != nil {
			return err
		}
		return tx.emit(ctx, events.CommentDeleted, c.ID, events.CommentPayload{CommentID: c.ID, WorkoutID: c.WorkoutID, AuthorID: c.AuthorID})
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	commentChanges.WithLabelValues("delete").Inc()
	return nil
}
