package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/pkg/jwt"
)

const maxSearchResults = 10

type SignupInput struct {
	Email    string `json:"email" binding:"required" validate:"required,email,max=255"`
	Handle   string `json:"handle" binding:"required" validate:"required,min=2,max=64,handle"`
	Name     string `json:"name" validate:"max=128"`
	Password string `json:"password" binding:"required" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthResult 注册或登录成功后返回
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// UserService 用户服务
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	// CurrentUser 匿名时返回 nil, nil
	CurrentUser(ctx context.Context, actor Actor) (*model.User, error)
	UserByID(ctx context.Context, id int) (*model.User, error)
	SearchUsers(ctx context.Context, prefix string) ([]*model.User, error)
	UpdateDigestEmailConfig(ctx context.Context, actor Actor, cfg model.DigestEmailConfig) (*model.User, error)
}

type userService struct {
	users      repository.UserRepository
	tokens     *jwt.Manager
	bcryptCost int
}

// NewUserService cost <= 0 时使用 bcrypt.DefaultCost
func NewUserService(users repository.UserRepository, tokens *jwt.Manager, cost int) UserService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &userService{users: users, tokens: tokens, bcryptCost: cost}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Handle = strings.ToLower(strings.TrimSpace(in.Handle))
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	for _, ident := range []string{in.Email, in.Handle} {
		_, err := s.users.GetByLogin(ctx, ident)
		if err == nil {
			return nil, fmt.Errorf("%w: %s is taken", ErrConflict, ident)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Email:             in.Email,
		Handle:            in.Handle,
		Name:              in.Name,
		Password:          string(hash),
		DigestEmailConfig: model.DigestOff,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(user)
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByLogin(ctx, in.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	return s.issue(user)
}

func (s *userService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *userService) CurrentUser(ctx context.Context, actor Actor) (*model.User, error) {
	if !actor.Authenticated() {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func (s *userService) UserByID(ctx context.Context, id int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

func (s *userService) SearchUsers(ctx context.Context, prefix string) ([]*model.User, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []*model.User{}, nil
	}
	return s.users.SearchByHandle(ctx, prefix, maxSearchResults)
}

func (s *userService) UpdateDigestEmailConfig(ctx context.Context, actor Actor, cfg model.DigestEmailConfig) (*model.User, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	if !cfg.Valid() {
		return nil, fmt.Errorf("%w: unknown digest setting %q", ErrValidation, cfg)
	}
	if err := s.users.UpdateDigestConfig(ctx, actor.UserID, cfg); err != nil {
		return nil, notFound(err, "user", actor.UserID)
	}
	return s.UserByID(ctx, actor.UserID)
}
