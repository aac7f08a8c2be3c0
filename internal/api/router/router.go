package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/d60-Lab/journaly/config"
	_ "github.com/d60-Lab/journaly/docs"
	"github.com/d60-Lab/journaly/internal/api/handler"
	"github.com/d60-Lab/journaly/internal/api/middleware"
	"github.com/d60-Lab/journaly/internal/graph"
	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/jwt"
)

// Deps 路由依赖
type Deps struct {
	Services service.Services
	Tokens   *jwt.Manager
	DB       *gorm.DB
	Redis    *redis.Client // 可为 nil
}

// Setup 注册中间件与全部路由
func Setup(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logger())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	}
	r.Use(middleware.Auth(deps.Tokens))

	r.GET("/health", health(deps))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/graphql", gin.WrapH(graph.NewHandler(deps.Services)))

	h := handler.NewHandler(deps.Services)
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)

		users := v1.Group("/users")
		users.GET("", h.SearchUsers)
		users.GET("/me", h.CurrentUser)
		users.PUT("/me/digest", h.UpdateDigestEmailConfig)
		users.GET("/:id", h.GetUser)
		users.GET("/:id/posts", h.ProfilePosts)

		posts := v1.Group("/posts")
		posts.POST("", h.CreatePost)
		posts.GET("/:id", h.GetPost)
		posts.POST("/:id/threads", h.CreateThread)
		posts.POST("/:id/comments", h.CreatePostComment)

		v1.GET("/threads/:id", h.GetThread)
		v1.POST("/threads/:id/comments", h.CreateComment)

		v1.PUT("/comments/:id", h.UpdateComment)
		v1.DELETE("/comments/:id", h.DeleteComment)

		v1.PUT("/post-comments/:id", h.UpdatePostComment)
		v1.DELETE("/post-comments/:id", h.DeletePostComment)
	}
	return r
}

// health 检查数据库与 Redis 连接
func health(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok"}
		healthy := true
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			healthy = false
		}
		if deps.Redis != nil {
			status["redis"] = "ok"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				status["redis"] = "unavailable"
				healthy = false
			}
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": status})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": status})
	}
}
