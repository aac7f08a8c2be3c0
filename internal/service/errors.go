package service

import (
	"errors"
	"fmt"

	"github.com/d60-Lab/journaly/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("permission denied")
	ErrValidation      = errors.New("invalid input")
	ErrConflict        = errors.New("already exists")
)

// notFound 将仓储层的 ErrNotFound 转换为带上下文的服务错误，其它错误原样返回
func notFound(err error, what string, id int) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return err
}
