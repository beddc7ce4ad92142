package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/gymfeed/pkg/database"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate 把驱动层错误收敛为仓储层哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case database.IsUniqueViolation(err):
		return ErrDuplicate
	default:
		return err
	}
}
