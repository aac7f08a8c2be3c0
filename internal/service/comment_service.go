package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/pkg/logger"
)

// CommentService 评论串评论与整篇评论
type CommentService interface {
	// CreateComment 写入评论并订阅评论者，然后通知其余订阅者
	CreateComment(ctx context.Context, actor Actor, threadID int, body string) (*model.Comment, DispatchResult, error)
	UpdateComment(ctx context.Context, actor Actor, commentID int, body string) (*model.Comment, error)
	// DeleteComment 返回被删除评论的最后状态
	DeleteComment(ctx context.Context, actor Actor, commentID int) (*model.Comment, error)

	CreatePostComment(ctx context.Context, actor Actor, postID int, body string) (*model.PostComment, DispatchResult, error)
	UpdatePostComment(ctx context.Context, actor Actor, commentID int, body string) (*model.PostComment, error)
	DeletePostComment(ctx context.Context, actor Actor, commentID int) (*model.PostComment, error)
}

type commentService struct {
	users        repository.UserRepository
	posts        repository.PostRepository
	threads      repository.ThreadRepository
	comments     repository.CommentRepository
	postComments repository.PostCommentRepository
	notifier     *Notifier
}

func NewCommentService(
	users repository.UserRepository,
	posts repository.PostRepository,
	threads repository.ThreadRepository,
	comments repository.CommentRepository,
	postComments repository.PostCommentRepository,
	notifier *Notifier,
) CommentService {
	return &commentService{
		users:        users,
		posts:        posts,
		threads:      threads,
		comments:     comments,
		postComments: postComments,
		notifier:     notifier,
	}
}

// requester 加载调用者本人
func (s *commentService) requester(ctx context.Context, actor Actor) (*model.User, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, "user", actor.UserID)
	}
	return user, nil
}

func (s *commentService) CreateComment(ctx context.Context, actor Actor, threadID int, body string) (*model.Comment, DispatchResult, error) {
	if err := actor.require(); err != nil {
		return nil, DispatchResult{}, err
	}
	if err := validateBody(body); err != nil {
		return nil, DispatchResult{}, err
	}
	commenter, err := s.requester(ctx, actor)
	if err != nil {
		return nil, DispatchResult{}, err
	}

	// 订阅者在写入前加载，新评论者不在本次收件人里
	thread, err := s.threads.GetForNotification(ctx, threadID)
	if err != nil {
		return nil, DispatchResult{}, notFound(err, "thread", threadID)
	}

	comment := &model.Comment{ThreadID: thread.ID, AuthorID: commenter.ID, Body: body}
	if err := s.comments.CreateWithSubscription(ctx, comment); err != nil {
		return nil, DispatchResult{}, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = commenter

	res := s.notifier.NotifySubscribers(ctx, thread, comment, commenter, commenter.ID)
	logger.Info("comment created",
		zap.Int("comment_id", comment.ID),
		zap.Int("thread_id", thread.ID),
		zap.Int("notified", res.Attempted-res.Failed),
		zap.Int("failed", res.Failed))
	return comment, res, nil
}

// ownComment 加载评论并校验调用者是作者
func (s *commentService) ownComment(ctx context.Context, actor Actor, commentID int) (*model.Comment, error) {
	user, err := s.requester(ctx, actor)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err, "comment", commentID)
	}
	if err := HasPostPermissions(comment, user); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) UpdateComment(ctx context.Context, actor Actor, commentID int, body string) (*model.Comment, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	if err := validateBody(body); err != nil {
		return nil, err
	}
	comment, err := s.ownComment(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.comments.UpdateBody(ctx, comment.ID, body); err != nil {
		return nil, notFound(err, "comment", commentID)
	}
	// 重新读取，带回数据库写入的 updated_at
	updated, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, notFound(err, "comment", commentID)
	}
	return updated, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor Actor, commentID int) (*model.Comment, error) {
	comment, err := s.ownComment(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return nil, notFound(err, "comment", commentID)
	}
	return comment, nil
}

func (s *commentService) CreatePostComment(ctx context.Context, actor Actor, postID int, body string) (*model.PostComment, DispatchResult, error) {
	if err := actor.require(); err != nil {
		return nil, DispatchResult{}, err
	}
	if err := validateBody(body); err != nil {
		return nil, DispatchResult{}, err
	}
	commenter, err := s.requester(ctx, actor)
	if err != nil {
		return nil, DispatchResult{}, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, DispatchResult{}, notFound(err, "post", postID)
	}

	comment := &model.PostComment{PostID: post.ID, AuthorID: commenter.ID, Body: body}
	if err := s.postComments.Create(ctx, comment); err != nil {
		return nil, DispatchResult{}, fmt.Errorf("create post comment: %w", err)
	}
	comment.Author = commenter

	res := s.notifier.NotifyPostAuthor(ctx, post, comment, commenter)
	return comment, res, nil
}

func (s *commentService) ownPostComment(ctx context.Context, actor Actor, commentID int) (*model.PostComment, error) {
	user, err := s.requester(ctx, actor)
	if err != nil {
		return nil, err
	}
	comment, err := s.postComments.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err, "post comment", commentID)
	}
	if err := HasPostPermissions(comment, user); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) UpdatePostComment(ctx context.Context, actor Actor, commentID int, body string) (*model.PostComment, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	if err := validateBody(body); err != nil {
		return nil, err
	}
	comment, err := s.ownPostComment(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.postComments.UpdateBody(ctx, comment.ID, body); err != nil {
		return nil, notFound(err, "post comment", commentID)
	}
	updated, err := s.postComments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, notFound(err, "post comment", commentID)
	}
	return updated, nil
}

func (s *commentService) DeletePostComment(ctx context.Context, actor Actor, commentID int) (*model.PostComment, error) {
	comment, err := s.ownPostComment(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.postComments.Delete(ctx, comment.ID); err != nil {
		return nil, notFound(err, "post comment", commentID)
	}
	return comment, nil
}
