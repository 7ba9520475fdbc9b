package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxImportBytes = 10 << 20

// ExportState 以附件形式下载完整数据
func (a *API) ExportState(c *gin.Context) {
	data, filename, err := a.tracker.Export()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ImportState 校验上传的数据并整体替换
func (a *API) ImportState(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		respondError(c, http.StatusRequestEntityTooLarge, "导入文件过大")
		return
	}

	state, err := a.tracker.Import(c.Request.Context(), body)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records":       len(state.Records),
		"rewards":       state.Rewards,
		"rewardHistory": len(state.RewardHistory),
	})
}
