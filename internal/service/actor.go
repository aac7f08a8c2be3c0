package service

import (
	"context"
	"fmt"
)

// Actor 发起请求的用户，UserID 为 0 表示匿名
type Actor struct {
	UserID int
}

// Anonymous 未登录的调用者
var Anonymous = Actor{}

func (a Actor) Authenticated() bool { return a.UserID > 0 }

func (a Actor) require() error {
	if !a.Authenticated() {
		return fmt.Errorf("%w: sign in to continue", ErrUnauthenticated)
	}
	return nil
}

type actorKey struct{}

// WithActor 把调用者放进请求上下文，供中间件与传输层使用
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom 从上下文取出调用者，缺失时返回 Anonymous
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Anonymous
}
