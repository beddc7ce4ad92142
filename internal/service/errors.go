package service

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindConflict
	KindDuplicate
)

// Error 携带分类的业务错误，HTTP 层只按 Kind 映射状态码
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Err: errors.New(msg)} }

// Validation wraps a caller input problem.
func Validation(msg string) error { return newErr(KindValidation, msg) }

var (
	ErrSelfFollow       = newErr(KindValidation, "you cannot follow yourself")
	ErrTargetNotFound   = newErr(KindNotFound, "user to follow not found")
	ErrAlreadyFollowing = newErr(KindConflict, "you are already following this user")
	ErrNotFollowing     = newErr(KindConflict, "you are not following this user")

	ErrMissingFields   = newErr(KindValidation, "missing required fields")
	ErrInvalidID       = newErr(KindValidation, "invalid id")
	ErrWorkoutNotFound = newErr(KindNotFound, "workout not found")
	ErrForbidden       = newErr(KindForbidden, "not authorized to perform this action")
	ErrUnauthenticated = newErr(KindUnauthenticated, "unauthorized")

	ErrEmptyContent    = newErr(KindValidation, "comment content cannot be empty")
	ErrCommentNotFound = newErr(KindNotFound, "comment not found")

	ErrUserNotFound       = newErr(KindNotFound, "user not found")
	ErrInvalidCredentials = newErr(KindValidation, "invalid credentials")
	ErrEmailTaken         = newErr(KindDuplicate, "email already in use")
	ErrUsernameTaken      = newErr(KindDuplicate, "username already in use")
	ErrWeakPassword       = newErr(KindValidation, "password must be at least 6 characters")
	ErrInvalidRole        = newErr(KindValidation, "role must be user or admin")
)

// KindOf 返回错误分类，非 *Error 视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
