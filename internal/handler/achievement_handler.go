package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitquest/internal/locale"
)

type achievementPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Unlocked    bool   `json:"unlocked"`
}

// ListAchievements 返回完整成就目录及解锁状态
func (a *API) ListAchievements(c *gin.Context) {
	lang := requestLanguage(c)
	statuses := a.tracker.Achievements()

	items := make([]achievementPayload, 0, len(statuses))
	unlocked := 0
	for _, status := range statuses {
		if status.Unlocked {
			unlocked++
		}
		items = append(items, achievementPayload{
			ID:          status.ID,
			Name:        locale.Pick(lang, status.NameEN, status.Name),
			Description: locale.Pick(lang, status.DescriptionEN, status.Description),
			Icon:        status.Icon,
			Category:    status.Category,
			Unlocked:    status.Unlocked,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"achievements": items,
		"unlocked":     unlocked,
		"total":        len(items),
	})
}
