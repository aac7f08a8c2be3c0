package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/internal/cache"
	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/pkg/logger"
)

const (
	DefaultProfilePageSize = 5
	MaxProfilePageSize     = 50
)

// PostIndex 作者日记 id 索引缓存，cache.PostIndex 实现
type PostIndex interface {
	Get(ctx context.Context, authorID int) ([]int, bool, error)
	Set(ctx context.Context, authorID int, ids []int) error
	Invalidate(ctx context.Context, authorID int) error
}

type CreatePostInput struct {
	Title string `json:"title" validate:"notblank,max=255"`
	Body  string `json:"body" validate:"notblank"`
}

// PostService 日记服务
type PostService interface {
	CreatePost(ctx context.Context, actor Actor, in CreatePostInput) (*model.Post, error)
	// PostByID 返回日记及其评论串、评论与整篇评论
	PostByID(ctx context.Context, id int) (*model.Post, error)
	// ProfilePosts 按 id 倒序分页，cursor 为上一页最后一个 id
	ProfilePosts(ctx context.Context, userID, cursor, limit int) ([]*model.Post, error)
}

type postService struct {
	users repository.UserRepository
	posts repository.PostRepository
	index PostIndex // 可为 nil
}

func NewPostService(users repository.UserRepository, posts repository.PostRepository, index PostIndex) PostService {
	return &postService{users: users, posts: posts, index: index}
}

func (s *postService) CreatePost(ctx context.Context, actor Actor, in CreatePostInput) (*model.Post, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, "user", actor.UserID)
	}

	post := &model.Post{Title: in.Title, Body: in.Body, AuthorID: author.ID}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Author = author

	if s.index != nil {
		if err := s.index.Invalidate(ctx, author.ID); err != nil {
			logger.Warn("invalidate post index failed", zap.Int("author_id", author.ID), zap.Error(err))
		}
	}
	return post, nil
}

func (s *postService) PostByID(ctx context.Context, id int) (*model.Post, error) {
	post, err := s.posts.GetWithDiscussion(ctx, id)
	if err != nil {
		return nil, notFound(err, "post", id)
	}
	return post, nil
}

func (s *postService) ProfilePosts(ctx context.Context, userID, cursor, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = DefaultProfilePageSize
	}
	if limit > MaxProfilePageSize {
		limit = MaxProfilePageSize
	}
	if cursor < 0 {
		return nil, fmt.Errorf("%w: cursor must not be negative", ErrValidation)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, notFound(err, "user", userID)
	}

	if s.index == nil {
		return s.posts.ListByAuthor(ctx, userID, cursor, limit)
	}

	ids, ok, err := s.index.Get(ctx, userID)
	if err != nil {
		// 缓存不可用时退回数据库
		logger.Warn("read post index failed", zap.Int("author_id", userID), zap.Error(err))
		return s.posts.ListByAuthor(ctx, userID, cursor, limit)
	}
	if !ok {
		ids, err = s.posts.ListIDsByAuthor(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.index.Set(ctx, userID, ids); err != nil {
			logger.Warn("write post index failed", zap.Int("author_id", userID), zap.Error(err))
		}
	}
	return s.posts.GetByIDs(ctx, cache.PageAfter(ids, cursor, limit))
}
