package service

import (
	"gorm.io/gorm"

	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/pkg/jwt"
)

// Services 传输层（GraphQL、REST）依赖的全部服务
type Services struct {
	Users    UserService
	Posts    PostService
	Threads  ThreadService
	Comments CommentService
}

// Deps 装配 Services 所需的外部依赖
type Deps struct {
	Notifier   *Notifier
	Tokens     *jwt.Manager
	PostIndex  PostIndex // 可为 nil
	BcryptCost int
}

// NewServices 基于同一个数据库句柄创建全部仓储与服务
func NewServices(db *gorm.DB, deps Deps) Services {
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	threads := repository.NewThreadRepository(db)
	comments := repository.NewCommentRepository(db)
	postComments := repository.NewPostCommentRepository(db)

	return Services{
		Users:    NewUserService(users, deps.Tokens, deps.BcryptCost),
		Posts:    NewPostService(users, posts, deps.PostIndex),
		Threads:  NewThreadService(posts, threads),
		Comments: NewCommentService(users, posts, threads, comments, postComments, deps.Notifier),
	}
}
