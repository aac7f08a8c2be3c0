package model

import "time"

// Thread 锚定在日记高亮区间 [StartIndex, EndIndex) 上的评论串
type Thread struct {
	ID                 int                   `json:"id" gorm:"primaryKey"`
	PostID             int                   `json:"post_id" gorm:"index:idx_thread_post;not null"`
	Post               *Post                 `json:"-" gorm:"foreignKey:PostID"`
	StartIndex         int                   `json:"start_index" gorm:"not null"`
	EndIndex           int                   `json:"end_index" gorm:"not null"`
	HighlightedContent string                `json:"highlighted_content" gorm:"type:text;not null"`
	Comments           []*Comment            `json:"comments,omitempty" gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
	Subscriptions      []*ThreadSubscription `json:"-" gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time             `json:"created_at"`
}

func (Thread) TableName() string { return "threads" }
