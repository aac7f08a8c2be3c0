package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/journaly/internal/api/middleware"
	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/monitor"
	"github.com/d60-Lab/journaly/pkg/response"
)

// Handler REST 处理器，所有路由共享
type Handler struct {
	svc service.Services
}

func NewHandler(svc service.Services) *Handler {
	return &Handler{svc: svc}
}

// fail 将服务层错误映射为 HTTP 状态码
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		monitor.CaptureError(err, map[string]string{
			"transport":  "rest",
			"route":      c.FullPath(),
			"request_id": middleware.GetRequestID(c),
		})
		response.InternalError(c, err)
	}
}

// actor 写操作先校验登录，再解析参数
func (h *Handler) actor(c *gin.Context) (service.Actor, bool) {
	a := middleware.Actor(c)
	if !a.Authenticated() {
		response.Unauthorized(c, service.ErrUnauthenticated.Error())
		return a, false
	}
	return a, true
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

type bodyRequest struct {
	Body string `json:"body" binding:"required"`
}

// userView 邮箱只对本人可见
type userView struct {
	ID                int                     `json:"id"`
	Handle            string                  `json:"handle"`
	Name              string                  `json:"name,omitempty"`
	Email             string                  `json:"email,omitempty"`
	DigestEmailConfig model.DigestEmailConfig `json:"digest_email_config"`
	CreatedAt         time.Time               `json:"created_at"`
}

func viewUser(u *model.User, viewerID int) *userView {
	if u == nil {
		return nil
	}
	v := &userView{
		ID:                u.ID,
		Handle:            u.Handle,
		Name:              u.Name,
		DigestEmailConfig: u.DigestEmailConfig,
		CreatedAt:         u.CreatedAt,
	}
	if u.ID == viewerID {
		v.Email = u.Email
	}
	return v
}

func viewUsers(users []*model.User, viewerID int) []*userView {
	out := make([]*userView, len(users))
	for i, u := range users {
		out[i] = viewUser(u, viewerID)
	}
	return out
}
