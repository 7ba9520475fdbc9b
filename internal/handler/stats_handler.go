package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitquest/internal/locale"
)

type distributionItem struct {
	ActivityType string `json:"activityType"`
	Label        string `json:"label"`
	Count        int    `json:"count"`
}

// GetStats 返回统计、类型分布和当年每月时长
func (a *API) GetStats(c *gin.Context) {
	lang := requestLanguage(c)
	report := a.tracker.Stats(recordFilterFromQuery(c))

	distribution := make([]distributionItem, 0, len(report.Distribution))
	for _, item := range report.Distribution {
		distribution = append(distribution, distributionItem{
			ActivityType: item.ActivityType,
			Label:        locale.ActivityLabel(lang, item.ActivityType),
			Count:        item.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        report.Statistics,
		"distribution": distribution,
		"trend": gin.H{
			"year":    report.Year,
			"minutes": report.Trend,
		},
	})
}

// GetOverview 返回本周与本月概览
func (a *API) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, a.tracker.Overview())
}
