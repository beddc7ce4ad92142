package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gymfeed/pkg/response"
)

// ListExercises 内置动作目录
// @Summary 动作列表
// @Tags 动作
// @Produce json
// @Success 200 {array} model.Exercise
// @Router /api/exercise/all-exercises [get]
func (h *Handler) ListExercises(c *gin.Context) {
	list, err := h.exercises.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
