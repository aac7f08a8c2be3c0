package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/journaly/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id int) (*model.Post, error)
	// GetWithDiscussion 预加载作者、评论串（含评论与评论作者）与整篇评论
	GetWithDiscussion(ctx context.Context, id int) (*model.Post, error)
	// ListByAuthor 按 id 倒序的游标分页，cursor 为上一页最后一个 id，0 表示从头开始
	ListByAuthor(ctx context.Context, authorID, cursor, limit int) ([]*model.Post, error)
	ListIDsByAuthor(ctx context.Context, authorID int) ([]int, error)
	// GetByIDs 按传入顺序返回，缺失的 id 被跳过
	GetByIDs(ctx context.Context, ids []int) ([]*model.Post, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *postRepository) GetByID(ctx context.Context, id int) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepository) GetWithDiscussion(ctx context.Context, id int) (*model.Post, error) {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id") }
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Threads", byID).
		Preload("Threads.Comments", byID).
		Preload("Threads.Comments.Author").
		Preload("PostComments", byID).
		Preload("PostComments.Author").
		First(&p, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID, cursor, limit int) ([]*model.Post, error) {
	q := r.db.WithContext(ctx).Preload("Author").Where("author_id = ?", authorID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var res []*model.Post
	err := q.Order("id DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *postRepository) ListIDsByAuthor(ctx context.Context, authorID int) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("author_id = ?", authorID).
		Order("id DESC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []int) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	var rows []*model.Post
	if err := r.db.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[int]*model.Post, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	res := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			res = append(res, p)
		}
	}
	return res, nil
}
