package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/journaly/pkg/response"
)

// UpdateComment 修改评论
// @Summary 修改评论（仅作者）
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Param request body bodyRequest true "新内容"
// @Success 200 {object} response.Response{data=model.Comment}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{id} [put]
func (h *Handler) UpdateComment(c *gin.Context) {
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
	comment, err := h.svc.Comments.UpdateComment(c.Request.Context(), actor, id, req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除评论
// @Summary 删除评论（仅作者），返回删除前的内容
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=model.Comment}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	comment, err := h.svc.Comments.DeleteComment(c.Request.Context(), actor, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, comment)
}

// UpdatePostComment 修改整篇评论
// @Summary 修改整篇评论（仅作者）
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "整篇评论ID"
// @Param request body bodyRequest true "新内容"
// @Success 200 {object} response.Response{data=model.PostComment}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/post-comments/{id} [put]
func (h *Handler) UpdatePostComment(c *gin.Context) {
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
	comment, err := h.svc.Comments.UpdatePostComment(c.Request.Context(), actor, id, req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, comment)
}

// DeletePostComment 删除整篇评论
// @Summary 删除整篇评论（仅作者）
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "整篇评论ID"
// @Success 200 {object} response.Response{data=model.PostComment}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/post-comments/{id} [delete]
func (h *Handler) DeletePostComment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	comment, err := h.svc.Comments.DeletePostComment(c.Request.Context(), actor, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, comment)
}
