package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/service"
)

type recordRequest struct {
	Date         string `json:"date"`
	ActivityType string `json:"activityType"`
	Type         string `json:"type"`
	Duration     any    `json:"duration"`
	SportsTime   any    `json:"sportsTime"`
	Distance     any    `json:"distance"`
	Note         string `json:"note"`
}

func (r recordRequest) toInput() service.RecordInput {
	activityType := r.ActivityType
	if activityType == "" {
		activityType = r.Type
	}
	duration := r.Duration
	if duration == nil {
		duration = r.SportsTime
	}
	return service.RecordInput{
		Date:         r.Date,
		ActivityType: activityType,
		Duration:     duration,
		Distance:     r.Distance,
		Note:         r.Note,
	}
}

// ListRecords 返回过滤后的记录及其统计
func (a *API) ListRecords(c *gin.Context) {
	filter := recordFilterFromQuery(c)
	records := a.tracker.Records(filter)

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"stats":   fitness.Aggregate(records),
	})
}

// CreateRecord 新增或替换当天记录
func (a *API) CreateRecord(c *gin.Context) {
	var payload recordRequest
	if !bindJSON(c, &payload, "请填写完整的运动记录") {
		return
	}

	result, err := a.tracker.AddRecord(c.Request.Context(), payload.toInput())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// DeleteRecord 按日期删除记录
func (a *API) DeleteRecord(c *gin.Context) {
	if err := a.tracker.DeleteRecord(c.Request.Context(), c.Param("date")); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
