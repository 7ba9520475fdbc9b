package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitquest/internal/fitness"
)

type redeemRequest struct {
	Tier string `json:"tier"`
}

// GetRedemption 返回未兑换次数与当前可兑换档位
func (a *API) GetRedemption(c *gin.Context) {
	status, err := a.tracker.RedemptionStatus(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Redeem 兑换礼盒，一次消耗全部未兑换记录
func (a *API) Redeem(c *gin.Context) {
	var payload redeemRequest
	if !bindJSON(c, &payload, "请选择要兑换的礼盒") {
		return
	}

	result, err := a.tracker.Redeem(c.Request.Context(), fitness.ParseTier(payload.Tier))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
