package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/response"
)

type authResponse struct {
	Token string    `json:"token"`
	User  *userView `json:"user"`
}

// Signup 注册
// @Summary 注册并返回 token
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "注册信息"
// @Success 201 {object} response.Response{data=authResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.Users.Signup(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, authResponse{Token: res.Token, User: viewUser(res.User, res.User.ID)})
}

// Login 登录
// @Summary 使用邮箱或 handle 登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "登录信息"
// @Success 200 {object} response.Response{data=authResponse}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.Users.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, authResponse{Token: res.Token, User: viewUser(res.User, res.User.ID)})
}
