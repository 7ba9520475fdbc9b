package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type settlementRequest struct {
	Month string `json:"month"`
}

// HealthCheck 提供容器编排与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	if err := a.tracker.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "store unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"store":  "up",
	})
}

// SettleMonth 手动触发月度结算，month 为空时结算上个月。
func (a *API) SettleMonth(c *gin.Context) {
	var payload settlementRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &payload, "请填写结算月份") {
		return
	}

	month := payload.Month
	if month == "" {
		month = a.tracker.PreviousMonth()
	}

	monthly, granted, err := a.tracker.SettleMonth(c.Request.Context(), month)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"monthly": monthly,
		"granted": granted,
	})
}
