package response

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/pkg/logger"
)

// Response 统一的消息体，失败时只有 message
type Response struct {
	Message string `json:"message"`
}

// StatusError is implemented by errors that know their HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Message: msg})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Response{Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{Message: msg})
}

func Conflict(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusConflict, Response{Message: msg})
}

// InternalError 记录日志并上报 sentry，对外只返回通用信息
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Message: "internal server error"})
}

// Error 根据错误携带的状态码输出；未知错误按 500 处理
func Error(c *gin.Context, err error) {
	var se StatusError
	if errors.As(err, &se) {
		status := se.HTTPStatus()
		if status >= http.StatusInternalServerError {
			InternalError(c, err)
			return
		}
		c.AbortWithStatusJSON(status, Response{Message: se.Error()})
		return
	}
	InternalError(c, err)
}
