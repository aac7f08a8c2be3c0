package model

import "time"

// ThreadSubscription 用户订阅评论串（有新评论时邮件通知）。
// ux_sub_user_thread = (user_id, thread_id)，重复订阅为空操作
type ThreadSubscription struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" gorm:"not null;index:idx_sub_user;uniqueIndex:ux_sub_user_thread"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	ThreadID  int       `json:"thread_id" gorm:"not null;uniqueIndex:ux_sub_user_thread"`
	CreatedAt time.Time `json:"created_at"`
}

func (ThreadSubscription) TableName() string { return "thread_subscriptions" }
