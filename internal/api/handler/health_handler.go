package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/pkg/logger"
)

type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Health 依次探测依赖；任何一项失败返回 503
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, hc := range h.checks {
		if err := hc.Check(ctx); err != nil {
			logger.Warn("health check failed", zap.String("check", hc.Name), zap.Error(err))
			results[hc.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		results[hc.Name] = "ok"
	}
	c.JSON(code, gin.H{"status": status, "checks": results})
}
