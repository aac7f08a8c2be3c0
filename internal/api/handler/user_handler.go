package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/journaly/internal/api/middleware"
	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/pkg/response"
)

type digestRequest struct {
	DigestEmailConfig model.DigestEmailConfig `json:"digest_email_config" binding:"required"`
}

// CurrentUser 当前登录用户
// @Summary 当前用户（匿名时 data 为空）
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=userView}
// @Router /api/v1/users/me [get]
func (h *Handler) CurrentUser(c *gin.Context) {
	actor := middleware.Actor(c)
	u, err := h.svc.Users.CurrentUser(c.Request.Context(), actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, viewUser(u, actor.UserID))
}

// GetUser 查询用户
// @Summary 按 ID 查询用户
// @Tags 用户
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=userView}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.svc.Users.UserByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, viewUser(u, middleware.ActorID(c)))
}

// SearchUsers 按 handle 前缀搜索
// @Summary 按 handle 前缀搜索用户（最多 10 个）
// @Tags 用户
// @Produce json
// @Param search query string true "handle 前缀"
// @Success 200 {object} response.Response{data=[]userView}
// @Router /api/v1/users [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.svc.Users.SearchUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, viewUsers(users, middleware.ActorID(c)))
}

// UpdateDigestEmailConfig 修改摘要邮件频率
// @Summary 设置摘要邮件频率 DAILY / WEEKLY / OFF
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body digestRequest true "频率"
// @Success 200 {object} response.Response{data=userView}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/users/me/digest [put]
func (h *Handler) UpdateDigestEmailConfig(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req digestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Users.UpdateDigestEmailConfig(c.Request.Context(), actor, req.DigestEmailConfig)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, viewUser(u, actor.UserID))
}
