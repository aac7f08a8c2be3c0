package model

import "time"

// 邮件类型
const (
	EmailKindThreadComment = "thread_comment"
	EmailKindPostComment   = "post_comment"
	EmailKindDigest        = "digest"
)

// 投递状态
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// EmailDelivery 每封通知邮件的投递结果
type EmailDelivery struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Kind        string    `json:"kind" gorm:"type:varchar(32);index"`
	RecipientID int       `json:"recipient_id" gorm:"index:idx_delivery_recipient"`
	Recipient   string    `json:"recipient" gorm:"type:varchar(255)"`
	Subject     string    `json:"subject" gorm:"type:varchar(255)"`
	Status      string    `json:"status" gorm:"type:varchar(16);index"` // sent, failed
	Attempts    int       `json:"attempts"`
	LastError   string    `json:"last_error,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (EmailDelivery) TableName() string { return "email_deliveries" }
