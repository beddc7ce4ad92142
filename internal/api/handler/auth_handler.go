package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gymfeed/internal/api/middleware"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/service"
	"github.com/d60-Lab/gymfeed/pkg/response"
)

type authResponse struct {
	*model.User
	Token string `json:"token"`
}

// Signup 注册并登录
// @Summary 注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "注册信息"
// @Success 201 {object} authResponse
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, token, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.setTokenCookie(c, token, h.cookie.MaxAge)
	response.Created(c, authResponse{User: u, Token: token})
}

// Login 登录，令牌同时写入 cookie
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "登录信息"
// @Success 200 {object} authResponse
// @Failure 400 {object} response.Response
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, token, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.setTokenCookie(c, token, h.cookie.MaxAge)
	response.Success(c, authResponse{User: u, Token: token})
}

// Logout 清除 cookie
// @Summary 退出登录
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// CheckAuth 返回当前登录用户
// @Summary 当前用户
// @Tags 认证
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} response.Response
// @Router /api/auth/check [get]
func (h *Handler) CheckAuth(c *gin.Context) {
	response.Success(c, middleware.CurrentUser(c))
}
