package service

import (
	"fmt"

	"github.com/d60-Lab/journaly/internal/model"
)

// Authored 有作者的资源（评论、整篇评论、日记）
type Authored interface {
	OwnerID() int
}

// HasPostPermissions 只有资源作者本人可以修改或删除
func HasPostPermissions(resource Authored, user *model.User) error {
	if resource == nil || user == nil {
		return fmt.Errorf("%w: missing resource or user", ErrForbidden)
	}
	if user.ID != resource.OwnerID() {
		return fmt.Errorf("%w: user %d is not the author", ErrForbidden, user.ID)
	}
	return nil
}
