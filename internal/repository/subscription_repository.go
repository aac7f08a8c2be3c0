package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/journaly/internal/model"
)

type SubscriptionRepository interface {
	Subscribe(ctx context.Context, userID, threadID int) error
	ListSubscribers(ctx context.Context, threadID int) ([]*model.ThreadSubscription, error)
	ListThreadIDs(ctx context.Context, userID int) ([]int, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// subscribe 在给定连接（可为事务）上写入订阅
func subscribe(tx *gorm.DB, userID, threadID int) error {
	s := &model.ThreadSubscription{UserID: userID, ThreadID: threadID}
	// 幂等：重复订阅不报错
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
}

func (r *subscriptionRepository) Subscribe(ctx context.Context, userID, threadID int) error {
	return subscribe(r.db.WithContext(ctx), userID, threadID)
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context, threadID int) ([]*model.ThreadSubscription, error) {
	var res []*model.ThreadSubscription
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("thread_id = ?", threadID).
		Order("id").
		Find(&res).Error
	return res, err
}

func (r *subscriptionRepository) ListThreadIDs(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&model.ThreadSubscription{}).
		Where("user_id = ?", userID).
		Pluck("thread_id", &ids).Error
	return ids, err
}
