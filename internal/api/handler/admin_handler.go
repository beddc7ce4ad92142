package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gymfeed/internal/service"
	"github.com/d60-Lab/gymfeed/pkg/response"
)

// ListUsers
// @Summary 用户列表（管理员）
// @Tags 管理
// @Produce json
// @Success 200 {array} model.User
// @Failure 403 {object} response.Response
// @Router /api/admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// UpdateUser 修改用户名或角色
// @Summary 修改用户（管理员）
// @Tags 管理
// @Accept json
// @Produce json
// @Param userId path string true "用户ID"
// @Param request body service.AdminUpdateInput true "修改内容"
// @Success 200 {object} model.User
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/admin/users/{userId} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	var req service.AdminUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.admin.UpdateUser(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

// DeleteUser 删除账号及其全部数据
// @Summary 删除用户（管理员）
// @Tags 管理
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/admin/users/{userId} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "User deleted successfully")
}
