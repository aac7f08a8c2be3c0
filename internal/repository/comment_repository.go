package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/journaly/internal/model"
)

type CommentRepository interface {
	// CreateWithSubscription 在一个事务内写入评论并订阅评论者
	CreateWithSubscription(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int) (*model.Comment, error)
	UpdateBody(ctx context.Context, id int, body string) error
	Delete(ctx context.Context, id int) error
	// ListSince 查询若干评论串在 (since, until] 内、非 excludeAuthorID 所写的评论，按时间升序（摘要邮件用）
	ListSince(ctx context.Context, threadIDs []int, since, until time.Time, excludeAuthorID int, limit int) ([]*model.Comment, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) CreateWithSubscription(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return err
		}
		return subscribe(tx, comment.AuthorID, comment.ThreadID)
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id int) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepository) UpdateBody(ctx context.Context, id int, body string) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("body", body)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) ListSince(ctx context.Context, threadIDs []int, since, until time.Time, excludeAuthorID int, limit int) ([]*model.Comment, error) {
	if len(threadIDs) == 0 {
		return nil, nil
	}
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Thread").
		Preload("Thread.Post").
		Where("thread_id IN ? AND created_at > ? AND created_at <= ? AND author_id <> ?", threadIDs, since, until, excludeAuthorID).
		Order("created_at, id").
		Limit(limit).
		Find(&res).Error
	return res, err
}
