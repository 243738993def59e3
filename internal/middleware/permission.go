package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequirePermission 要求请求者持有指定权限。
func RequirePermission(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRequester(c).HasPermission(name) {
			c.JSON(http.StatusForbidden, gin.H{"error": "无权限"})
			c.Abort()
			return
		}
		c.Next()
	}
}
