package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gymfeed/internal/api/middleware"
	"github.com/d60-Lab/gymfeed/pkg/response"
)

// Follow 关注用户
// @Summary 关注用户
// @Tags 关注
// @Produce json
// @Param targetId path string true "被关注用户ID"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/follow/follow/{targetId} [post]
func (h *Handler) Follow(c *gin.Context) {
	if err := h.follows.Follow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("targetId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "User followed successfully.")
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关注
// @Produce json
// @Param targetId path string true "被取消关注用户ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/follow/unfollow/{targetId} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.follows.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("targetId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "User unfollowed successfully.")
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关注
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {array} service.UserSummary
// @Router /api/follow/following/{userId} [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	list, err := h.follows.ListFollowing(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关注
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {array} service.UserSummary
// @Router /api/follow/followers/{userId} [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	list, err := h.follows.ListFollowers(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
