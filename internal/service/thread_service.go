package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/pkg/logger"
)

// CreateThreadInput 高亮区间 [StartIndex, EndIndex)，按字符计
type CreateThreadInput struct {
	PostID             int    `json:"post_id"`
	StartIndex         int    `json:"start_index" validate:"min=0"`
	EndIndex           int    `json:"end_index" validate:"gtefield=StartIndex"`
	HighlightedContent string `json:"highlighted_content" validate:"notblank"`
}

// ThreadService 评论串服务
type ThreadService interface {
	CreateThread(ctx context.Context, actor Actor, in CreateThreadInput) (*model.Thread, error)
	GetThread(ctx context.Context, id int) (*model.Thread, error)
}

type threadService struct {
	posts   repository.PostRepository
	threads repository.ThreadRepository
}

func NewThreadService(posts repository.PostRepository, threads repository.ThreadRepository) ThreadService {
	return &threadService{posts: posts, threads: threads}
}

// CreateThread 写入评论串，并在同一事务内为日记作者创建订阅
func (s *threadService) CreateThread(ctx context.Context, actor Actor, in CreateThreadInput) (*model.Thread, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, notFound(err, "post", in.PostID)
	}
	if n := utf8.RuneCountInString(post.Body); in.EndIndex > n {
		return nil, fmt.Errorf("%w: end index %d beyond post length %d", ErrValidation, in.EndIndex, n)
	}

	thread := &model.Thread{
		PostID:             post.ID,
		StartIndex:         in.StartIndex,
		EndIndex:           in.EndIndex,
		HighlightedContent: in.HighlightedContent,
	}
	if err := s.threads.CreateWithSubscription(ctx, thread, post.AuthorID); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	logger.Debug("thread created",
		zap.Int("thread_id", thread.ID),
		zap.Int("post_id", post.ID),
		zap.Int("requester_id", actor.UserID))
	return thread, nil
}

func (s *threadService) GetThread(ctx context.Context, id int) (*model.Thread, error) {
	thread, err := s.threads.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "thread", id)
	}
	return thread, nil
}
