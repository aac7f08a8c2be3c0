package model

import "time"

// Post 日记
type Post struct {
	ID           int            `json:"id" gorm:"primaryKey"`
	Title        string         `json:"title" gorm:"type:varchar(255);not null"`
	Body         string         `json:"body" gorm:"type:text;not null"`
	AuthorID     int            `json:"author_id" gorm:"index:idx_post_author;not null"`
	Author       *User          `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Threads      []*Thread      `json:"threads,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	PostComments []*PostComment `json:"post_comments,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) OwnerID() int { return p.AuthorID }
