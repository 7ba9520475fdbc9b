package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/locale"
	"github.com/fitquest/internal/logging"
	"github.com/fitquest/internal/service"
	"github.com/fitquest/internal/store"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(value), nil
}

// requestLanguage 优先读取 lang 参数，其次 Accept-Language
func requestLanguage(c *gin.Context) string {
	return locale.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
}

func recordFilterFromQuery(c *gin.Context) fitness.RecordFilter {
	return fitness.RecordFilter{
		TimeRange:    strings.TrimSpace(c.DefaultQuery("range", fitness.RangeAll)),
		ActivityType: strings.TrimSpace(c.Query("type")),
		Search:       strings.TrimSpace(c.Query("search")),
	}
}

// respondServiceError 把领域错误映射为状态码与提示语
func (a *API) respondServiceError(c *gin.Context, err error) {
	lang := requestLanguage(c)

	switch {
	case errors.Is(err, fitness.ErrInvalidDate):
		respondError(c, http.StatusBadRequest, locale.Pick(lang, "invalid date, expected YYYY-MM-DD", "日期格式不正确，应为 YYYY-MM-DD"))
	case errors.Is(err, service.ErrInvalidRecord):
		respondError(c, http.StatusBadRequest, locale.Pick(lang, "activity type is required", "请填写运动类型"))
	case errors.Is(err, service.ErrInvalidMonth):
		respondError(c, http.StatusBadRequest, locale.Pick(lang, "invalid month, expected YYYY-MM", "月份格式不正确，应为 YYYY-MM"))
	case errors.Is(err, fitness.ErrInvalidState):
		respondError(c, http.StatusBadRequest, locale.Pick(lang, "invalid data file: ", "数据格式不正确：")+err.Error())
	case errors.Is(err, service.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, locale.Pick(lang, "record not found", "记录不存在"))
	case errors.Is(err, fitness.ErrUnsupportedExchange):
		respondError(c, http.StatusBadRequest, locale.Pick(lang, "only 3 small rewards can be exchanged for 1 medium reward", "仅支持用3个小奖励兑换1个中级奖励"))
	case errors.Is(err, fitness.ErrInsufficientRewards):
		respondError(c, http.StatusConflict, locale.Pick(lang, "not enough small rewards", "小奖励数量不足"))
	case errors.Is(err, fitness.ErrTierUnavailable):
		respondError(c, http.StatusConflict, locale.Pick(lang, "not enough unredeemed records for this gift box", "未兑换的打卡次数不足，无法兑换该礼盒"))
	case errors.Is(err, service.ErrHealthRoleNotFound):
		respondError(c, http.StatusNotFound, locale.Pick(lang, "health role not found", "角色不存在"))
	case errors.Is(err, service.ErrHealthRoleInvalid):
		respondError(c, http.StatusBadRequest, locale.Pick(lang, "role name is required and must be unique", "角色名称不能为空且不能重复"))
	case errors.Is(err, service.ErrHealthRecordNotFound):
		respondError(c, http.StatusNotFound, locale.Pick(lang, "health record not found", "健康记录不存在"))
	case errors.Is(err, service.ErrHealthRecordExists):
		respondError(c, http.StatusConflict, locale.Pick(lang, "this role already has a record for that date", "该角色当天已有记录，请直接修改"))
	case errors.Is(err, fitness.ErrInvalidHealthRecord):
		respondError(c, http.StatusBadRequest, locale.Pick(lang, "health values out of range", "健康数据超出合理范围"))
	case errors.Is(err, store.ErrWatermarkConflict):
		respondError(c, http.StatusConflict, locale.Pick(lang, "redemption state changed, please refresh and retry", "兑换状态已变化，请刷新后重试"))
	default:
		a.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", logging.RequestIDFrom(c)),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, locale.Pick(lang, "internal server error", "服务器内部错误"))
	}
}
