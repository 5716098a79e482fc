package handler

import (
	"net/http"
	"time"

	"med-assist-go/internal/service"

	"github.com/gin-gonic/gin"
)

// MetricsHandler 负责处理仪表盘健康指标的请求。
type MetricsHandler struct {
	metricsService service.MetricsService
}

// NewMetricsHandler 创建一个新的 MetricsHandler。
func NewMetricsHandler(metricsService service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService}
}

// Dashboard 返回当前用户今日的仪表盘指标。
// 指标由用户 ID 和日期派生，同一天内刷新保持稳定。
func (h *MetricsHandler) Dashboard(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	metrics := h.metricsService.GetDailyMetrics(user.ID, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    metrics,
	})
}
