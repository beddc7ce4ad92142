package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/repository"
	"github.com/d60-Lab/gymfeed/pkg/auth"
)

type SignupInput struct {
	Username string `json:"username" binding:"required,notblank,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthService 身份协作方：注册、登录、令牌校验
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, string, error)
	Login(ctx context.Context, in LoginInput) (*model.User, string, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	stores *Stores
	jwt    *auth.JWTer
}

func NewAuthService(stores *Stores, jwt *auth.JWTer) AuthService {
	return &authService{stores: stores, jwt: jwt}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, "", ErrMissingFields
	}
	if len(in.Password) < 6 {
		return nil, "", ErrWeakPassword
	}
	taken, err := s.stores.Users.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", ErrEmailTaken
	}
	if taken, err = s.stores.Users.UsernameTaken(ctx, in.Username, ""); err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", ErrUsernameTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	var u *model.User
	err = s.stores.Tx(ctx, func(tx *txStores) error {
		u = &model.User{
			ID:        uuid.NewString(),
			Username:  in.Username,
			Email:     in.Email,
			Password:  hash,
			Role:      model.RoleUser,
			CreatedAt: tx.now,
			UpdatedAt: tx.now,
		}
		if err := tx.users.Create(ctx, u); err != nil {
			return err
		}
		return tx.emit(ctx, events.UserRegistered, u.ID, events.UserPayload{UserID: u.ID, Username: u.Username, Email: u.Email})
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// 并发注册时由唯一索引兜底
		return nil, "", ErrUsernameTaken
	}
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, "", ErrMissingFields
	}
	u, err := s.stores.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !auth.CheckPassword(in.Password, u.Password) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Authenticate 校验令牌并回查用户，角色以数据库为准
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.stores.Users.GetByID(ctx, claims.UID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
