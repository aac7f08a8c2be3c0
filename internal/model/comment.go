package model

import "time"

// Comment 评论串中的一条评论
type Comment struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	ThreadID  int       `json:"thread_id" gorm:"index:idx_comment_thread_created;not null"`
	Thread    *Thread   `json:"-" gorm:"foreignKey:ThreadID"`
	AuthorID  int       `json:"author_id" gorm:"index;not null"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comment_thread_created"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) OwnerID() int { return c.AuthorID }

// PostComment 针对整篇日记的评论
type PostComment struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	PostID    int       `json:"post_id" gorm:"index;not null"`
	AuthorID  int       `json:"author_id" gorm:"index;not null"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostComment) TableName() string { return "post_comments" }

func (c *PostComment) OwnerID() int { return c.AuthorID }
