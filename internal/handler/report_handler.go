package handler

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fitquest/internal/locale"
)

// GetMonthlyReport 返回月度报告，format 可选 html 或 markdown，默认 JSON
func (a *API) GetMonthlyReport(c *gin.Context) {
	lang := requestLanguage(c)
	report, err := a.tracker.Report(c.Param("month"), lang)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	switch strings.ToLower(strings.TrimSpace(c.Query("format"))) {
	case "html":
		pref := locale.PreferenceForLanguage(lang)
		page := fmt.Sprintf("<!DOCTYPE html>\n<html lang=%q>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s</body>\n</html>\n",
			pref.HTMLLang, html.EscapeString(report.Month), report.HTML)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown))
	default:
		c.JSON(http.StatusOK, report)
	}
}
