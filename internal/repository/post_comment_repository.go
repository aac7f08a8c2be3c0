package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/journaly/internal/model"
)

type PostCommentRepository interface {
	Create(ctx context.Context, c *model.PostComment) error
	GetByID(ctx context.Context, id int) (*model.PostComment, error)
	UpdateBody(ctx context.Context, id int, body string) error
	Delete(ctx context.Context, id int) error
}

type postCommentRepository struct{ db *gorm.DB }

func NewPostCommentRepository(db *gorm.DB) PostCommentRepository {
	return &postCommentRepository{db: db}
}

func (r *postCommentRepository) Create(ctx context.Context, c *model.PostComment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *postCommentRepository) GetByID(ctx context.Context, id int) (*model.PostComment, error) {
	var c model.PostComment
	if err := r.db.WithContext(ctx).Preload("Author").First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *postCommentRepository) UpdateBody(ctx context.Context, id int, body string) error {
	res := r.db.WithContext(ctx).Model(&model.PostComment{}).Where("id = ?", id).Update("body", body)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postCommentRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&model.PostComment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
