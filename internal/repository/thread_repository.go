package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/journaly/internal/model"
)

type ThreadRepository interface {
	// CreateWithSubscription 在一个事务内写入评论串与作者订阅
	CreateWithSubscription(ctx context.Context, thread *model.Thread, subscriberID int) error
	GetByID(ctx context.Context, id int) (*model.Thread, error)
	// GetForNotification 预加载订阅者（含用户）与所属日记（含作者）
	GetForNotification(ctx context.Context, id int) (*model.Thread, error)
}

type threadRepository struct{ db *gorm.DB }

func NewThreadRepository(db *gorm.DB) ThreadRepository { return &threadRepository{db: db} }

func (r *threadRepository) CreateWithSubscription(ctx context.Context, thread *model.Thread, subscriberID int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(thread).Error; err != nil {
			return err
		}
		return subscribe(tx, subscriberID, thread.ID)
	})
}

func (r *threadRepository) GetByID(ctx context.Context, id int) (*model.Thread, error) {
	var t model.Thread
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Comments.Author").
		First(&t, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *threadRepository) GetForNotification(ctx context.Context, id int) (*model.Thread, error) {
	var t model.Thread
	err := r.db.WithContext(ctx).
		Preload("Subscriptions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Subscriptions.User").
		Preload("Post").
		Preload("Post.Author").
		First(&t, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}
