package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/journaly/internal/model"
)

// DeliveryRepository 记录通知邮件投递结果
type DeliveryRepository interface {
	CreateBatch(ctx context.Context, rows []*model.EmailDelivery) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type deliveryRepository struct{ db *gorm.DB }

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository { return &deliveryRepository{db: db} }

func (r *deliveryRepository) CreateBatch(ctx context.Context, rows []*model.EmailDelivery) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 500).Error
}

func (r *deliveryRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.EmailDelivery{}).Where("status = ?", status).Count(&cnt).Error
	return cnt, err
}
