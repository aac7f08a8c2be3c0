package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/journaly/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int) (*model.User, error)
	// GetByLogin 按邮箱或 handle 查找
	GetByLogin(ctx context.Context, identifier string) (*model.User, error)
	SearchByHandle(ctx context.Context, prefix string, limit int) ([]*model.User, error)
	UpdateDigestConfig(ctx context.Context, id int, cfg model.DigestEmailConfig) error
	// ListDigestDue 返回 cfg 频率下 lastDigestAt 早于 before（或为空）且 id > afterID 的用户，按 id 升序
	ListDigestDue(ctx context.Context, cfg model.DigestEmailConfig, before time.Time, afterID, limit int) ([]*model.User, error)
	TouchDigest(ctx context.Context, id int, at time.Time) error
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, identifier string) (*model.User, error) {
	var u model.User
	ident := strings.ToLower(strings.TrimSpace(identifier))
	err := r.db.WithContext(ctx).
		Where("email = ? OR handle = ?", ident, ident).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) SearchByHandle(ctx context.Context, prefix string, limit int) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Where(`handle LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(prefix))+"%").
		Order("handle").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *userRepository) UpdateDigestConfig(ctx context.Context, id int, cfg model.DigestEmailConfig) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("digest_email_config", cfg)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) ListDigestDue(ctx context.Context, cfg model.DigestEmailConfig, before time.Time, afterID, limit int) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Where("digest_email_config = ? AND (last_digest_at IS NULL OR last_digest_at <= ?)", cfg, before).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *userRepository) TouchDigest(ctx context.Context, id int, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_digest_at", at).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
