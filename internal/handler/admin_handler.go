package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recount 从明细表重算全部计数字段。
func (h *AdminHandler) Recount(c *gin.Context) {
	if err := h.counters.RecountAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "计数校准失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "计数校准完成"})
}
