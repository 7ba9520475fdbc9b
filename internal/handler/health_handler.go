package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/locale"
	"github.com/fitquest/internal/service"
)

type healthRoleRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type healthRecordRequest struct {
	Date       string  `json:"date"`
	Weight     float64 `json:"weight"`
	SleepHours float64 `json:"sleepHours"`
	Steps      int     `json:"steps"`
	HeartRate  int     `json:"heartRate"`
	Mood       string  `json:"mood"`
	Note       string  `json:"note"`
}

type healthRecordPatchRequest struct {
	Date       *string  `json:"date"`
	Weight     *float64 `json:"weight"`
	SleepHours *float64 `json:"sleepHours"`
	Steps      *int     `json:"steps"`
	HeartRate  *int     `json:"heartRate"`
	Mood       *string  `json:"mood"`
	Note       *string  `json:"note"`
}

// ListHealthRoles 返回所有角色
func (a *API) ListHealthRoles(c *gin.Context) {
	roles, err := a.health.ListRoles(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

// CreateHealthRole 新建角色
func (a *API) CreateHealthRole(c *gin.Context) {
	var payload healthRoleRequest
	if !bindJSON(c, &payload, "请填写角色名称") {
		return
	}

	role, err := a.health.CreateRole(c.Request.Context(), service.HealthRoleInput{
		Name:  payload.Name,
		Color: payload.Color,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// ListRoleHealthRecords 返回角色的记录，最新的在前；带 date 时只返回当天那条
func (a *API) ListRoleHealthRecords(c *gin.Context) {
	roleID, ok := healthIDParam(c)
	if !ok {
		return
	}

	if date := strings.TrimSpace(c.Query("date")); date != "" {
		record, err := a.health.RecordByDate(c.Request.Context(), roleID, date)
		if err != nil {
			a.respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
		return
	}

	records, err := a.health.RoleRecords(c.Request.Context(), roleID)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// CreateHealthRecord 为角色新增一天的记录
func (a *API) CreateHealthRecord(c *gin.Context) {
	roleID, ok := healthIDParam(c)
	if !ok {
		return
	}

	var payload healthRecordRequest
	if !bindJSON(c, &payload, "请填写完整的健康记录") {
		return
	}

	record, err := a.health.AddRecord(c.Request.Context(), roleID, service.HealthRecordInput{
		Date: payload.Date,
		HealthMetrics: fitness.HealthMetrics{
			Weight:     payload.Weight,
			SleepHours: payload.SleepHours,
			Steps:      payload.Steps,
			HeartRate:  payload.HeartRate,
			Mood:       payload.Mood,
			Note:       payload.Note,
		},
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListAllHealthRecords 返回全部角色的记录，按日期升序
func (a *API) ListAllHealthRecords(c *gin.Context) {
	records, err := a.health.AllRecords(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// UpdateHealthRecord 按 ID 修改记录，未提交的字段保持不变
func (a *API) UpdateHealthRecord(c *gin.Context) {
	id, ok := healthIDParam(c)
	if !ok {
		return
	}

	var payload healthRecordPatchRequest
	if !bindJSON(c, &payload, "健康记录格式不正确") {
		return
	}

	record, err := a.health.UpdateRecord(c.Request.Context(), id, service.HealthRecordPatch(payload))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteHealthRecord 按 ID 删除记录
func (a *API) DeleteHealthRecord(c *gin.Context) {
	id, ok := healthIDParam(c)
	if !ok {
		return
	}

	if err := a.health.DeleteRecord(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func healthIDParam(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, locale.Pick(requestLanguage(c), "invalid id", "ID 不正确"))
		return 0, false
	}
	return id, true
}
