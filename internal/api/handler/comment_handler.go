package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gymfeed/internal/api/middleware"
	"github.com/d60-Lab/gymfeed/pkg/response"
)

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment 发表评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Param workoutId path string true "训练ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} service.CommentView
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/comment/{workoutId} [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cv, err := h.comments.AddComment(c.Request.Context(), middleware.CurrentUserID(c), c.Param("workoutId"), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cv)
}

// ListComments 新评论在前
// @Summary 评论列表
// @Tags 评论
// @Produce json
// @Param workoutId path string true "训练ID"
// @Success 200 {array} service.CommentView
// @Failure 400 {object} response.Response
// @Router /api/comment/{workoutId} [get]
func (h *Handler) ListComments(c *gin.Context) {
	list, err := h.comments.ListComments(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// DeleteComment 作者或管理员可删
// @Summary 删除评论
// @Tags 评论
// @Produce json
// @Param commentId path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/comment/{commentId} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	if err := h.comments.DeleteComment(c.Request.Context(), c.Param("commentId"), u.ID, u.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Comment deleted successfully")
}
