package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/response"
)

type createThreadRequest struct {
	StartIndex         int    `json:"start_index"`
	EndIndex           int    `json:"end_index"`
	HighlightedContent string `json:"highlighted_content"`
}

// CreateThread 创建评论串
// @Summary 在日记高亮区间上创建评论串（订阅日记作者）
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "日记ID"
// @Param request body createThreadRequest true "高亮区间 [start_index, end_index)"
// @Success 201 {object} response.Response{data=model.Thread}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/threads [post]
func (h *Handler) CreateThread(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	thread, err := h.svc.Threads.CreateThread(c.Request.Context(), actor, service.CreateThreadInput{
		PostID:             postID,
		StartIndex:         req.StartIndex,
		EndIndex:           req.EndIndex,
		HighlightedContent: req.HighlightedContent,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, thread)
}

// GetThread 查询评论串
// @Summary 查询评论串及其评论
// @Tags 评论
// @Produce json
// @Param id path int true "评论串ID"
// @Success 200 {object} response.Response{data=model.Thread}
// @Failure 404 {object} response.Response
// @Router /api/v1/threads/{id} [get]
func (h *Handler) GetThread(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	thread, err := h.svc.Threads.GetThread(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, thread)
}

// CreateComment 评论
// @Summary 在评论串下评论（订阅评论者并通知其他订阅者）
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论串ID"
// @Param request body bodyRequest true "评论内容"
// @Success 201 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/threads/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	threadID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req bodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, res, err := h.svc.Comments.CreateComment(c.Request.Context(), actor, threadID, req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, gin.H{
		"comment": comment,
		"notifications": gin.H{
			"attempted": res.Attempted,
			"failed":    res.Failed,
		},
	})
}
