package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/locale"
)

type exchangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GetRewards 返回奖励余额、流水和各档位的展示名
func (a *API) GetRewards(c *gin.Context) {
	lang := requestLanguage(c)
	view := a.tracker.Rewards()

	labels := make(map[fitness.Tier]string, 3)
	for _, tier := range []fitness.Tier{fitness.TierSmall, fitness.TierMedium, fitness.TierLarge} {
		labels[tier] = locale.TierLabel(lang, string(tier))
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": view.Balance,
		"history": view.History,
		"labels":  labels,
	})
}

// GetMonthlyReward 计算指定月份的奖励
func (a *API) GetMonthlyReward(c *gin.Context) {
	monthly, err := a.tracker.Monthly(c.Query("month"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, monthly)
}

// ExchangeRewards 用小奖励兑换中级奖励
func (a *API) ExchangeRewards(c *gin.Context) {
	var payload exchangeRequest
	if !bindJSON(c, &payload, "请选择兑换类型") {
		return
	}

	entry, balance, err := a.tracker.Exchange(c.Request.Context(), fitness.ParseTier(payload.From), fitness.ParseTier(payload.To))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry":   entry,
		"balance": balance,
	})
}
