package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/response"
)

// CreatePost 发布日记
// @Summary 发布日记
// @Tags 日记
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "标题与正文"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req service.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.svc.Posts.CreatePost(c.Request.Context(), actor, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, post)
}

// GetPost 查询日记及讨论
// @Summary 查询日记（含评论串、评论与整篇评论）
// @Tags 日记
// @Produce json
// @Param id path int true "日记ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.svc.Posts.PostByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, post)
}

// ProfilePosts 用户主页日记
// @Summary 用户日记游标分页（按 id 倒序）
// @Tags 日记
// @Produce json
// @Param id path int true "用户ID"
// @Param cursor query int false "上一页最后一个 id" default(0)
// @Param limit query int false "每页数量，最大 50" default(5)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id}/posts [get]
func (h *Handler) ProfilePosts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cursor, _ := strconv.Atoi(c.DefaultQuery("cursor", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultProfilePageSize)))
	posts, err := h.svc.Posts.ProfilePosts(c.Request.Context(), id, cursor, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	next := 0
	if len(posts) > 0 {
		next = posts[len(posts)-1].ID
	}
	response.Success(c, gin.H{"list": posts, "next_cursor": next})
}

// CreatePostComment 整篇评论
// @Summary 评论整篇日记（通知作者）
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "日记ID"
// @Param request body bodyRequest true "评论内容"
// @Success 201 {object} response.Response{data=model.PostComment}
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreatePostComment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req bodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, _, err := h.svc.Comments.CreatePostComment(c.Request.Context(), actor, id, req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, comment)
}
