package service

import (
	"context"
	"errors"
	"strings"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/repository"
)

type AdminUpdateInput struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
}

// AdminService 用户账号管理，调用方需已通过管理员校验
type AdminService interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, userID string, in AdminUpdateInput) (*model.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type adminService struct {
	stores    *Stores
	dir       *Directory
	following *FollowingCache
}

func NewAdminService(stores *Stores, dir *Directory, following *FollowingCache) AdminService {
	return &adminService{stores: stores, dir: dir, following: following}
}

func (s *adminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.stores.Users.List(ctx)
}

func (s *adminService) UpdateUser(ctx context.Context, userID string, in AdminUpdateInput) (*model.User, error) {
	if !validID(userID) {
		return nil, ErrInvalidID
	}
	fields := map[string]any{}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, Validation("username cannot be empty")
		}
		taken, err := s.stores.Users.UsernameTaken(ctx, name, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		fields["username"] = name
	}
	if in.Role != nil {
		if *in.Role != model.RoleUser && *in.Role != model.RoleAdmin {
			return nil, ErrInvalidRole
		}
		fields["role"] = *in.Role
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.stores.Now()
		err := s.stores.Users.Update(ctx, userID, fields)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUsernameTaken
		case err != nil:
			return nil, err
		}
		s.dir.InvalidateUser(ctx, userID)
	}

	u, err := s.stores.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// DeleteUser 删除账号及其关注边、训练、评论、点赞
func (s *adminService) DeleteUser(ctx context.Context, userID string) error {
	if !validID(userID) {
		return ErrInvalidID
	}
	followers, err := s.stores.Follows.ListFollowerIDs(ctx, userID)
	if err != nil {
		return err
	}
	err = s.stores.Tx(ctx, func(tx *txStores) error {
		if err := tx.users.Delete(ctx, userID); err != nil {
			return err
		}
		workoutIDs, err := tx.workouts.ListIDsByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.comments.DeleteByWorkouts(ctx, workoutIDs); err != nil {
			return err
		}
		if err := tx.likes.DeleteByWorkouts(ctx, workoutIDs); err != nil {
			return err
		}
		if err := tx.workouts.DeleteByOwner(ctx, userID); err != nil {
			return err
		}
		if err := tx.comments.DeleteByAuthor(ctx, userID); err != nil {
			return err
		}
		if err := tx.likes.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.follows.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.emit(ctx, events.UserDeleted, userID, events.UserPayload{UserID: userID})
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	s.dir.InvalidateUser(ctx, userID)
	s.following.Invalidate(ctx, append(followers, userID)...)
	return nil
}
