package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/jwt"
)

const actorKey = "actor_id"

// Auth 解析 Bearer token 并把调用者写入请求上下文。
// 缺失或无效的 token 按匿名处理，由具体操作决定是否需要登录。
func Auth(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.Next()
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			c.Next()
			return
		}
		c.Set(actorKey, claims.UserID)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), service.Actor{UserID: claims.UserID}))
		c.Next()
	}
}

// ActorID 当前请求的用户 ID，匿名为 0
func ActorID(c *gin.Context) int {
	return c.GetInt(actorKey)
}

// Actor 当前请求的调用者
func Actor(c *gin.Context) service.Actor {
	return service.Actor{UserID: ActorID(c)}
}
