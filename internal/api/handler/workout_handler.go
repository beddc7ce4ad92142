package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gymfeed/internal/api/middleware"
	"github.com/d60-Lab/gymfeed/internal/service"
	"github.com/d60-Lab/gymfeed/pkg/response"
)

type likeResponse struct {
	Message string               `json:"message"`
	Liked   bool                 `json:"liked"`
	Workout *service.WorkoutView `json:"workout"`
}

// CreateWorkout 保存一次训练
// @Summary 保存训练记录
// @Tags 训练
// @Accept json
// @Produce json
// @Param request body service.CreateWorkoutInput true "训练内容"
// @Success 201 {object} service.WorkoutView
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/workout/save-workout [post]
func (h *Handler) CreateWorkout(c *gin.Context) {
	var req service.CreateWorkoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	w, err := h.workouts.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, w)
}

// GetWorkout 查询单条训练
// @Summary 查询训练详情
// @Tags 训练
// @Produce json
// @Param workoutId path string true "训练ID"
// @Success 200 {object} service.WorkoutView
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/workout/{workoutId} [get]
func (h *Handler) GetWorkout(c *gin.Context) {
	w, err := h.workouts.GetByID(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, w)
}

// ListUserWorkouts 某用户的全部训练，新的在前
// @Summary 用户训练列表
// @Tags 训练
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {array} service.WorkoutView
// @Failure 401 {object} response.Response
// @Router /api/workout/user/{userId} [get]
func (h *Handler) ListUserWorkouts(c *gin.Context) {
	list, err := h.workouts.ListByOwner(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// DeleteWorkout 只有所有者能删
// @Summary 删除训练
// @Tags 训练
// @Produce json
// @Param workoutId path string true "训练ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/workout/{workoutId} [delete]
func (h *Handler) DeleteWorkout(c *gin.Context) {
	if err := h.workouts.Delete(c.Request.Context(), c.Param("workoutId"), middleware.CurrentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Workout deleted successfully")
}

// ToggleLike 点赞/取消点赞
// @Summary 翻转点赞状态
// @Tags 训练
// @Produce json
// @Param workoutId path string true "训练ID"
// @Success 200 {object} likeResponse
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/workout/like/{workoutId} [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	w, liked, err := h.likes.ToggleLike(c.Request.Context(), c.Param("workoutId"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	msg := "Workout unliked"
	if liked {
		msg = "Workout liked"
	}
	response.Success(c, likeResponse{Message: msg, Liked: liked, Workout: w})
}

// Feed 自己和关注的人的训练，按时间倒序分页
// @Summary 训练动态
// @Tags 训练
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(5)
// @Success 200 {object} service.FeedPage
// @Failure 401 {object} response.Response
// @Router /api/workout/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	fp, err := h.feed.GetFeed(c.Request.Context(), middleware.CurrentUserID(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, fp)
}
